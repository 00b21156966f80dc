// Package version exposes the build version injected at link time.
package version

// value is overridden via -ldflags at release build time.
var value = "v0.1.0-dev"

// Value returns the current build version.
func Value() string {
	return value
}
