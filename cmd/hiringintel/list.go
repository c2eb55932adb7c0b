package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/filter"
	"github.com/amishk599/hiringintel/internal/model"
)

var (
	listSaved    bool
	listMinScore float64
	listLabel    string
	listTitle    []string
	listLocation []string
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List retained postings",
	Long:  "Prints the retained postings, best match first.",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listSaved, "saved", false, "only bookmarked postings")
	listCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "only postings scoring at least this")
	listCmd.Flags().StringVar(&listLabel, "label", "", "only this match band (strong, medium, exploratory, weak)")
	listCmd.Flags().StringSliceVar(&listTitle, "title", nil, "only titles containing any of these keywords")
	listCmd.Flags().StringSliceVar(&listLocation, "location", nil, "only locations containing any of these keywords")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	a, err := setupApp(context.Background(), logger)
	if err != nil {
		logger.Error("failed to open board", "error", err)
		os.Exit(1)
	}
	defer a.close()

	var filters []model.PostingFilter
	if listSaved {
		filters = append(filters, filter.SavedOnly())
	}
	if listMinScore > 0 {
		filters = append(filters, filter.MinScore(listMinScore))
	}
	if listLabel != "" {
		filters = append(filters, filter.LabelIs(model.ParseLabel(listLabel)))
	}
	if len(listTitle) > 0 || len(listLocation) > 0 {
		filters = append(filters, filter.NewTitleAndLocationFilter(listTitle, listLocation))
	}
	ps := filter.Apply(a.board.Snapshot().Postings, filter.All(filters...))

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ps)
	}
	printPostings(os.Stdout, ps)
	return nil
}

func printPostings(w io.Writer, ps []model.Posting) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No postings.")
		return
	}

	fmt.Fprintf(w, "%-36s %-5s %-14s %-24s %s\n", "ID", "Score", "Match", "Company", "Title")
	fmt.Fprintln(w, strings.Repeat("─", 110))

	saved := 0
	for _, p := range ps {
		title := p.Title
		if p.Saved {
			title = "★ " + title
			saved++
		}
		fmt.Fprintf(w, "%-36s %-5.2f %-14s %-24s %s\n", p.ID, p.RelevanceScore, p.RelevanceLabel, truncate(p.Company, 24), title)
	}

	fmt.Fprintf(w, "\nTotal: %d postings (%d saved)\n", len(ps), saved)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
