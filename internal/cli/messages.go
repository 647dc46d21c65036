package cli

import (
	"fmt"

	"github.com/grantchatterton/do-functions-cli/internal/project"
)

// outcomeMessage returns the line printed for a registration outcome.
// file is the project config name, funcPath the "package/name" identifier.
func outcomeMessage(s project.Status, file, pkg, funcPath string) string {
	switch s {
	case project.StatusCreatedNewConfig:
		return fmt.Sprintf("Created %s with package %q and function %q", file, pkg, funcPath)
	case project.StatusAddedPackage:
		return fmt.Sprintf("Added new package %q with function %q to %s", pkg, funcPath, file)
	case project.StatusAddedFunction:
		return fmt.Sprintf("Added function %q to existing package %q in %s", funcPath, pkg, file)
	case project.StatusFunctionExists:
		return fmt.Sprintf("Function %q already exists in package %q. Skipping update.", funcPath, pkg)
	default:
		return fmt.Sprintf("Failed to update %s configuration", file)
	}
}
