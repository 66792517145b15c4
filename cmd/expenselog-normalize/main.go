package main

import (
	"flag"
	"fmt"
	"os"

	"expenselog/internal/cli"
	"expenselog/internal/ledger"
	"expenselog/internal/log"
)

func main() {
	atomic := flag.Bool("atomic", false, "apply all renames in a single transaction")
	dryRun := flag.Bool("dry-run", false, "print the renames without applying them")
	flag.Parse()

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

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		os.Exit(1)
	}
	defer res.Close()

	if err := res.Repository.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to initialize schema", log.FieldError, err)
		os.Exit(1)
	}

	report, err := ledger.NormalizeCategories(ctx, res.Repository, ledger.NormalizeOptions{
		Atomic: *atomic,
		DryRun: *dryRun,
		Logger: logger,
	})
	for _, rn := range report.Renames {
		fmt.Printf("Updating: '%s' → '%s'\n", rn.From, rn.To)
	}
	for _, c := range report.Blank {
		fmt.Printf("Skipping blank category: '%s'\n", c)
	}
	if err != nil {
		logger.Error("Normalization failed", log.FieldError, err)
		fmt.Fprintln(os.Stderr, "Normalization stopped; run again to finish.")
		os.Exit(1)
	}

	switch {
	case *dryRun:
		fmt.Printf("%d categories would be normalized.\n", len(report.Renames))
	default:
		fmt.Println("Categories normalized.")
	}
}
