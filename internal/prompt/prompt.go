// Package prompt asks interactive questions on a line-oriented reader: free
// text with validation, yes/no confirmations and numbered menus.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrAborted is returned when input ends before a question is answered.
var ErrAborted = errors.New("prompt aborted")

// Choice is one entry of a Select menu.
type Choice struct {
	Label string
	Value string
}

// Prompter reads answers from r and writes questions to w.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// New returns a Prompter reading from r and writing to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// readLine returns the next trimmed line. A final line without a newline is
// returned as is; end of input with nothing read yields ErrAborted.
func (p *Prompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Input asks for free text. An empty answer selects def. When validate is
// non-nil the question is repeated until it returns nil; its error message is
// shown to the user.
func (p *Prompter) Input(msg, def string, validate func(string) error) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.w, "? %s (%s) ", msg, def)
		} else {
			fmt.Fprintf(p.w, "? %s ", msg)
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if validate == nil {
			return answer, nil
		}
		if err := validate(answer); err != nil {
			fmt.Fprintf(p.w, ">> %s\n", err)
			continue
		}
		return answer, nil
	}
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(msg string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.w, "? %s (%s) ", msg, hint)

		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.w, ">> Please answer yes or no")
	}
}

// Select presents choices as a numbered menu and returns the chosen Value.
// An empty answer selects the choice whose Value is def, if any.
func (p *Prompter) Select(msg string, choices []Choice, def string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("%s: no choices available", msg)
	}

	defIdx := -1
	fmt.Fprintf(p.w, "? %s\n", msg)
	for i, c := range choices {
		marker := " "
		if c.Value == def {
			marker = ">"
			defIdx = i
		}
		fmt.Fprintf(p.w, "%s %d) %s\n", marker, i+1, c.Label)
	}

	for {
		if defIdx >= 0 {
			fmt.Fprintf(p.w, "Enter number [1-%d] (%d): ", len(choices), defIdx+1)
		} else {
			fmt.Fprintf(p.w, "Enter number [1-%d]: ", len(choices))
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" && defIdx >= 0 {
			return choices[defIdx].Value, nil
		}

		num, err := strconv.Atoi(answer)
		if err != nil || num < 1 || num > len(choices) {
			fmt.Fprintf(p.w, ">> Invalid selection %q: choose 1-%d\n", answer, len(choices))
			continue
		}
		return choices[num-1].Value, nil
	}
}
