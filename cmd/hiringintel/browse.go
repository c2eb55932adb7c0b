package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse postings interactively (TUI)",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Any log output corrupts the alt screen.
	a, err := setupApp(context.Background(), silentLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open board: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	sched := newScheduler(a.cfg, a.board, a.logger)
	return browse.Run(a.board, sched.Trigger)
}
