package main

import (
	"context"
	"os"

	"github.com/Clark-Hu/cineadmin/internal/catalog"
	"github.com/Clark-Hu/cineadmin/internal/logging"
)

func main() {
	logger := logging.New(os.Stderr, "warn", "text")
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		logger.Error(catalog.UserMessage(err), "err", err)
		os.Exit(1)
	}
}
