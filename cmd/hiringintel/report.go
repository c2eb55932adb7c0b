package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/report"
)

var reportStats bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the daily digest",
	Long:  "Prints an email-style digest of the retained postings grouped by match band.",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportStats, "stats", false, "print only the summary counts")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := setupApp(context.Background(), logger)
	if err != nil {
		logger.Error("failed to open board", "error", err)
		os.Exit(1)
	}
	defer a.close()

	st := a.board.Snapshot()
	now := time.Now()

	if reportStats {
		s := report.ComputeStats(st.Postings, now)
		fmt.Printf("Total Jobs:       %d\n", s.Total)
		fmt.Printf("Jobs Found Today: %d\n", s.FoundToday)
		fmt.Printf("Strong Matches:   %d\n", s.Strong)
		fmt.Printf("Saved:            %d\n", s.Saved)
		if st.LastScan != nil {
			fmt.Printf("Last Scan:        %s\n", st.LastScan.Local().Format("2006-01-02 15:04"))
		}
		if st.LastSync != nil {
			fmt.Printf("Last Sync:        %s\n", st.LastSync.Local().Format("2006-01-02 15:04"))
		}
		return nil
	}

	fmt.Println(report.Daily(st.Postings, now))
	return nil
}
