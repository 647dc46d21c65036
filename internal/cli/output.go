package cli

import (
	"fmt"
	"io"
)

// Status line styles.
const (
	symbolSucceed = "✔"
	symbolFail    = "✖"
	symbolInfo    = "ℹ"
	symbolWarn    = "⚠"
)

func succeed(w io.Writer, format string, a ...any) { status(w, symbolSucceed, format, a...) }
func fail(w io.Writer, format string, a ...any)    { status(w, symbolFail, format, a...) }
func info(w io.Writer, format string, a ...any)    { status(w, symbolInfo, format, a...) }
func warn(w io.Writer, format string, a ...any)    { status(w, symbolWarn, format, a...) }

func status(w io.Writer, symbol, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", symbol, fmt.Sprintf(format, a...))
}
