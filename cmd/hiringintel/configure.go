package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configureURL     string
	configureSheetID string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the sheet webhook and sheet ID",
	Long: "Stores the Google Apps Script web app URL and the target sheet ID.\n" +
		"Without flags, prints the current settings.",
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&configureURL, "webhook-url", "", "Apps Script web app URL (must end in /exec)")
	configureCmd.Flags().StringVar(&configureSheetID, "sheet-id", "", "Google Sheet ID")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	ctx := context.Background()

	a, err := setupApp(ctx, logger)
	if err != nil {
		logger.Error("failed to open board", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if configureURL == "" && configureSheetID == "" {
		st := a.board.Snapshot()
		if !st.Target().Configured() {
			fmt.Println("Sheet sync is not configured.")
			return nil
		}
		fmt.Printf("Webhook URL: %s\nSheet ID:    %s\n", st.WebhookURL, st.SheetID)
		return nil
	}

	if configureURL == "" || configureSheetID == "" {
		return errors.New("--webhook-url and --sheet-id must be given together")
	}
	if err := a.board.Configure(ctx, configureURL, configureSheetID); err != nil {
		return err
	}
	fmt.Println("Sheet settings saved.")
	return nil
}
