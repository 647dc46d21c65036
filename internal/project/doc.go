// Package project reads, validates and updates a DigitalOcean Functions
// project.yml. Documents are decoded into typed Document, Package and
// Function values that remember their source mapping, so unrecognised keys,
// key order and comments survive a load-modify-save cycle. The Merger
// registers a single function in a project.yml and reports which of the
// possible changes it made.
package project
