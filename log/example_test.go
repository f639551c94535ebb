package log_test

import (
	"log/slog"
	"os"

	"github.com/mvz/haparanda/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger.Info("partial loaded", slog.String("name", "header"))
	logger.Debug("not shown")

	// Output: level=INFO msg="partial loaded" name=header
}
