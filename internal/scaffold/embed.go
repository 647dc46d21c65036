package scaffold

import "embed"

// functionsFS holds the built-in template trees, one directory per template
// identifier.
//
//go:embed all:functions
var functionsFS embed.FS

const functionsDir = "functions"
