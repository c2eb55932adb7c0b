package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/board"
)

var syncLimit int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the retained postings to the sheet",
	Long:  "Sends the top postings (100 by default) to the configured Google Apps Script webhook.",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().IntVarP(&syncLimit, "limit", "n", board.ManualSyncLimit, "number of top postings to send")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	ctx := context.Background()

	a, err := setupApp(ctx, logger)
	if err != nil {
		logger.Error("failed to open board", "error", err)
		os.Exit(1)
	}
	defer a.close()

	out, err := a.board.Sync(ctx, syncLimit)
	if err != nil {
		return errors.New(describeError(err))
	}
	fmt.Println(out.Message())
	if !out.OK() {
		return errors.New("sync did not succeed")
	}
	return nil
}
