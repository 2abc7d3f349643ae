// Package buildinfo carries version metadata stamped at link time.
package buildinfo

// Version is overridden via -ldflags "-X mcpdev/internal/buildinfo.Version=...".
var Version = "0.1.0-dev"
