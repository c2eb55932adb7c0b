package sheets

import (
	"context"
	"log/slog"

	"github.com/amishk599/hiringintel/internal/model"
)

// Ensure LogSyncer implements model.SheetSyncer.
var _ model.SheetSyncer = (*LogSyncer)(nil)

// LogSyncer writes the batch to the logger instead of a spreadsheet.
// Used by dry runs.
type LogSyncer struct {
	logger *slog.Logger
}

func NewLogSyncer(logger *slog.Logger) *LogSyncer {
	return &LogSyncer{logger: logger}
}

// Sync logs each posting and reports them all as added.
func (s *LogSyncer) Sync(_ context.Context, target model.SheetTarget, postings []model.Posting) (model.SyncResult, error) {
	for _, p := range postings {
		s.logger.Info("would sync posting",
			"sheet_id", target.SheetID,
			"company", p.Company,
			"title", p.Title,
			"score", p.RelevanceScore,
			"url", p.URL,
		)
	}
	return model.SyncResult{
		Success:      true,
		Message:      "dry run",
		NewJobsAdded: len(postings),
	}, nil
}
