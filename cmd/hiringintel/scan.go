package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/board"
	"github.com/amishk599/hiringintel/internal/browse"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan now",
	Long:  "Fetches postings once, merges them into the retained list and, when the sheet is configured, syncs the top 50.",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	// Without --debug a spinner owns the terminal, so component logs are dropped.
	logger := silentLogger()
	if debug {
		logger = setupLogger(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setupApp(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.close()

	var res board.ScanResult
	scan := func(ctx context.Context) error {
		var err error
		res, err = a.board.Scan(ctx)
		return err
	}

	if debug {
		err = scan(ctx)
	} else {
		err = browse.RunWithSpinner(ctx, "Scanning for new postings", scan)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %s", describeError(err))
	}

	fmt.Printf("Fetched %d postings, %d new, %d retained.\n", res.Fetched, res.Added, res.Retained)
	if res.Sync != nil {
		fmt.Println(res.Sync.Message())
	}
	return nil
}
