// Package cli defines the Cobra command tree for do-functions-cli. Each file
// registers one top-level command (create, register, templates, config,
// version) with the root command. Commands only handle flags, prompts and
// output; scaffolding and project.yml updates live in internal packages.
package cli
