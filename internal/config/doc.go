// Package config loads treehash configuration from a root-local and a global
// YAML file. The CLI applies precedence: flags, then the local file, then
// the global one.
package config
