// Package cli contains the command line interface for haparanda.
//
// # Usage
//
//	haparanda [flags] TEMPLATE             # render (default command)
//	haparanda render -d data.yaml -H helpers.yaml -P partials page.hbs
//	haparanda fmt json page.hbs
//	haparanda init
//	haparanda repl -d data.yaml
//
// # Configuration
//
// Flag defaults are read from the YAML file "config" in the user
// configuration directory (see [pkg.ConfigDir]), and from "config.json"
// beside it. Keys name flags with hyphens or underscores:
//
//	log-level: debug
//	log_pretty: false
//
// "haparanda init" writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, "" to omit, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag
// ("go build -tags pprof ."), which adds these flags:
//
//   - --pprof-mode: profile to record (cpu, mem, ...)
//   - --pprof-dir: profile output directory (default: <cache>/pprof)
package cli
