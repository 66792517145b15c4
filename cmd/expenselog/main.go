package main

import (
	"os"

	"expenselog/internal/cli"
	"expenselog/internal/console"
	"expenselog/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger())

	logger, closeLog, err := cli.SetupLogger(cfg, os.Stderr)
	if err != nil {
		cli.BootstrapLogger().Error("Failed to set up logging", log.FieldError, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	l, cleanup, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		os.Exit(1)
	}
	defer cleanup()

	menu := console.New(cli.NewFormHandler(l, cfg, logger), os.Stdin, os.Stdout, logger)
	if err := menu.Run(ctx); err != nil {
		logger.Error("Console stopped", log.FieldError, err)
	}
}
