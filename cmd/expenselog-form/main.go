package main

import (
	"fmt"
	"io"
	"os"

	"expenselog/internal/cli"
	"expenselog/internal/log"
	"expenselog/internal/tui"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.BootstrapLogger())

	// The form owns the terminal; logs only go somewhere when LOG_FILE is set.
	logger, closeLog, err := cli.SetupLogger(cfg, io.Discard)
	if err != nil {
		cli.BootstrapLogger().Error("Failed to set up logging", log.FieldError, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	l, cleanup, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to open ledger:", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := tui.Run(ctx, cli.NewFormHandler(l, cfg, logger)); err != nil {
		logger.Error("Form stopped", log.FieldError, err)
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}
