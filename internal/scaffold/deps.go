package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/grantchatterton/do-functions-cli/internal/ctxlog"
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// InstallDependencies runs npm install in dir when it holds a package.json.
// npm output goes to out. When Node.js or npm is not on PATH a warning is
// returned instead of an error.
func InstallDependencies(ctx context.Context, dir string, out io.Writer) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(filepath.Join(dir, "package.json")); err != nil {
		logger.Debug("no package.json, skipping npm install", "dir", dir)
		return "", nil
	}

	if _, err := lookPath("node"); err != nil {
		return "Node.js not found, skipping dependency installation", nil
	}
	npmPath, err := lookPath("npm")
	if err != nil {
		return "npm not found, skipping dependency installation", nil
	}

	if out == nil {
		out = io.Discard
	}
	cmd := exec.CommandContext(ctx, npmPath, "install")
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	logger.Debug("running npm install", "dir", dir, "npm", npmPath)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("npm install in %s: %w", dir, err)
	}
	return "", nil
}
