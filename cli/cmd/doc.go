// Package cmd implements the haparanda subcommands: render, fmt, init and
// repl.
//
// Commands read templates, data and helper files from paths given on the
// command line, where "-" names standard input. Data files are YAML or
// JSON; mapping keys keep their document order.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"

	// PartialsEnv is the name of the environment variable holding a list of
	// partial directories, separated like PATH.
	PartialsEnv = "PARTIALS"
)
