package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <id>",
	Short: "Toggle the saved flag on a posting",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmark,
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
}

func runBookmark(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := setupApp(context.Background(), logger)
	if err != nil {
		logger.Error("failed to open board", "error", err)
		os.Exit(1)
	}
	defer a.close()

	saved, err := a.board.ToggleBookmark(context.Background(), args[0])
	if err != nil {
		return err
	}
	if saved {
		fmt.Printf("Saved %s\n", args[0])
	} else {
		fmt.Printf("Removed %s from saved\n", args[0])
	}
	return nil
}
