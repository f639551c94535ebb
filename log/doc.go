// Package log wraps [log/slog] with a fixed set of levels, functional
// options and a colorized handler for terminals.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("rendered", slog.String("template", name))
//
// Levels run from [LevelTrace], used for evaluator internals, through
// [LevelError]. The zero [Logger] discards everything, which lets library
// packages accept a Logger option without requiring one.
//
// The package-level functions ([Info], [Warn] and so on) write through a
// default logger on standard error that [Config] reconfigures. Calls that
// take no context use [DefaultContextProvider].
package log
