// Package platform provides cross-platform filesystem helpers. Files are
// replaced atomically by writing a sibling temp file and renaming it over the
// destination, and permission changes are skipped on Windows where Unix mode
// bits do not apply.
package platform
