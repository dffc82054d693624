package main

import (
	"os"

	"github.com/example/rpnd/internal/cli"
	"github.com/example/rpnd/internal/logging"
)

func main() {
	// Errors surfacing before config is loaded still honour NO_COLOR.
	logger := logging.NewLoggerWithOptions(os.Stderr, logging.Options{
		Level:   logging.LevelInfo,
		NoColor: os.Getenv("NO_COLOR") != "",
	})
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("rpnd failed", "args", os.Args[1:], "error", err)
		os.Exit(1)
	}
}
