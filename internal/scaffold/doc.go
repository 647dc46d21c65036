// Package scaffold creates a function directory from a template tree. It
// powers the "create" command: the target directory is emptied, the
// template's files are copied in (rendering *.tmpl files with text/template),
// the package.json name is set to "@package/function", and npm dependencies
// can then be installed in the new directory.
package scaffold
