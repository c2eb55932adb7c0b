package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/export"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the retained postings to a JSON backup",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "directory to write the backup into")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := setupApp(context.Background(), logger)
	if err != nil {
		logger.Error("failed to open board", "error", err)
		os.Exit(1)
	}
	defer a.close()

	path, err := export.WriteFile(exportDir, a.board.Snapshot().Postings, time.Now())
	if err != nil {
		return errors.New(describeError(err))
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
