// Package config manages user-level settings stored at
// ~/.do-functions-cli/config.yaml: the default packages directory, the
// project file name and additional function templates. Every key can be
// overridden by a DOFN_-prefixed environment variable.
package config
