// Package pkg holds project metadata shared by the command line and the
// libraries.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

const (
	// Name is the command name. It also names the configuration and cache
	// directories and prefixes environment variables.
	Name = "haparanda"

	// Description is the one-line summary shown in help output.
	Description = "Render Handlebars templates"
)

// Version returns the release version.
func Version() string { return strings.TrimSpace(version) }
