package scaffold

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/grantchatterton/do-functions-cli/internal/platform"
)

// ErrNotObject is returned when package.json does not hold a JSON object.
var ErrNotObject = errors.New("package.json must contain a JSON object")

// SetPackageName sets the top-level "name" of the package.json at path. An
// existing value is replaced in place and a missing key is added after the
// others; the rest of the file is left byte for byte.
func SetPackageName(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("parsing %s: invalid JSON", path)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("parsing %s: %w", path, ErrNotObject)
	}

	out, err := sjson.SetBytes(data, "name", name)
	if err != nil {
		return fmt.Errorf("setting name in %s: %w", path, err)
	}
	if err := platform.WriteFileAtomic(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
