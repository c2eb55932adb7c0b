package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/sheets"
	"github.com/amishk599/hiringintel/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch once, print postings, exit",
	Long:  "Dry run: runs one search against an in-memory store and prints what would be retained. Nothing is saved or synced.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be saved or synced")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sheet settings from config are honoured so the log shows what would be sent.
	b, err := openBoard(ctx, cfg, store.NewMemoryStore(), newFetcher(cfg, logger), sheets.NewLogSyncer(logger), logger)
	if err != nil {
		return err
	}
	res, err := b.Scan(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %s", describeError(err))
	}

	printPostings(os.Stdout, b.Snapshot().Postings)
	logger.Info("check complete", "fetched", res.Fetched, "retained", res.Retained)
	return nil
}
