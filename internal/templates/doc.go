// Package templates holds the catalog of function templates the CLI can
// scaffold from. A Registry is built once at startup with the built-in
// JavaScript and TypeScript templates, optionally extended with templates
// declared in the user config, and then passed to the scaffolder and the
// project.yml merger.
package templates
