// Package board owns the application state: the retained postings, the
// scan and sync timestamps and the sheet settings. Every change is written to
// the store before it becomes visible in memory.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/hiringintel/internal/metrics"
	"github.com/amishk599/hiringintel/internal/model"
	"github.com/amishk599/hiringintel/internal/reconcile"
	"github.com/amishk599/hiringintel/internal/sheets"
)

// Batch sizes for the two sync triggers.
const (
	AutoSyncLimit   = 50
	ManualSyncLimit = reconcile.MaxRetained
)

// State is a point-in-time copy of everything the board owns.
type State struct {
	Postings   []model.Posting
	LastScan   *time.Time
	LastSync   *time.Time
	WebhookURL string
	SheetID    string
}

// Target returns the sync destination from the settings.
func (s State) Target() model.SheetTarget {
	return model.SheetTarget{WebhookURL: s.WebhookURL, SheetID: s.SheetID}
}

// ScanResult summarises one fetch-and-reconcile cycle.
type ScanResult struct {
	Fetched  int
	Added    int
	Retained int
	Sync     *SyncOutcome // nil when no sync was attempted
}

// SyncOutcome is the tri-state result of a sync: success, explicit failure
// reported by the webhook, or a transport error.
type SyncOutcome struct {
	Result model.SyncResult
	Err    error
}

// OK reports whether the webhook accepted the batch.
func (o SyncOutcome) OK() bool {
	return o.Err == nil && o.Result.Success
}

// Message renders the outcome for a status line.
func (o SyncOutcome) Message() string {
	switch {
	case o.Err != nil:
		return "Sync Failed: Network error (" + o.Err.Error() + ")"
	case o.Result.Success:
		return fmt.Sprintf("Synced! %d new jobs added.", o.Result.NewJobsAdded)
	default:
		return "Sync Failed: " + o.Result.Message
	}
}

// Board is safe for concurrent use.
type Board struct {
	store   model.KVStore
	fetcher model.PostingFetcher
	syncer  model.SheetSyncer
	now     func() time.Time
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
}

// New creates an empty board. Call Load to read persisted state.
func New(store model.KVStore, fetcher model.PostingFetcher, syncer model.SheetSyncer, logger *slog.Logger) *Board {
	return &Board{
		store:   store,
		fetcher: fetcher,
		syncer:  syncer,
		now:     time.Now,
		logger:  logger,
	}
}

// Load reads every key once. Missing keys leave the field empty.
func (b *Board) Load(ctx context.Context) error {
	var st State

	if err := b.getJSON(ctx, KeyPostings, &st.Postings); err != nil {
		return err
	}
	if err := b.getJSON(ctx, KeyLastScan, &st.LastScan); err != nil {
		return err
	}
	if err := b.getJSON(ctx, KeyLastSync, &st.LastSync); err != nil {
		return err
	}
	var err error
	if st.WebhookURL, err = b.getString(ctx, KeyWebhookURL); err != nil {
		return err
	}
	if st.SheetID, err = b.getString(ctx, KeySheetID); err != nil {
		return err
	}

	b.mu.Lock()
	b.state = st
	b.mu.Unlock()

	metrics.RetainedPostings.Set(float64(len(st.Postings)))
	b.logger.Debug("board loaded",
		"postings", len(st.Postings),
		"sheet_configured", st.Target().Configured(),
	)
	return nil
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := b.state
	st.Postings = append([]model.Posting(nil), b.state.Postings...)
	return st
}

// Scan fetches candidates, merges them into the retained list and persists
// the result. When the sheet is configured the top AutoSyncLimit postings are
// synced afterwards; a failed sync is reported in the result but does not fail
// the scan. A failed fetch writes nothing.
func (b *Board) Scan(ctx context.Context) (ScanResult, error) {
	start := time.Now()

	fetched, err := b.fetcher.FetchPostings(ctx)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return ScanResult{}, fmt.Errorf("fetching postings: %w", err)
	}

	b.mu.Lock()
	current := b.state.Postings
	fresh := reconcile.Unseen(current, fetched)
	merged := reconcile.Merge(current, fetched)
	now := b.now()

	if err := b.setJSON(ctx, KeyPostings, merged); err != nil {
		b.mu.Unlock()
		metrics.ScansTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return ScanResult{}, err
	}
	if err := b.setJSON(ctx, KeyLastScan, now); err != nil {
		// Roll the stored list back so store and memory agree. If that fails
		// too, the merged list is what survives a restart, so keep it.
		if rbErr := b.setJSON(ctx, KeyPostings, current); rbErr != nil {
			b.logger.Error("rolling back postings failed", "error", rbErr)
			b.state.Postings = merged
		}
		b.mu.Unlock()
		metrics.ScansTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return ScanResult{}, err
	}
	b.state.Postings = merged
	b.state.LastScan = &now

	target := b.state.Target()
	batch := topN(merged, AutoSyncLimit)
	b.mu.Unlock()

	added := countRetained(fresh, merged)
	res := ScanResult{
		Fetched:  len(fetched),
		Added:    added,
		Retained: len(merged),
	}

	metrics.ScansTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	metrics.PostingsAddedTotal.Add(float64(added))
	metrics.RetainedPostings.Set(float64(len(merged)))

	b.logger.Info("scan complete",
		"fetched", res.Fetched,
		"new", res.Added,
		"retained", res.Retained,
	)

	if target.Configured() && len(batch) > 0 {
		out := b.dispatch(ctx, target, batch, "auto")
		res.Sync = &out
	}
	return res, nil
}

// Sync pushes the top limit postings to the sheet. It refuses before any
// network call when the sheet is not configured or nothing is retained.
// A non-positive limit means ManualSyncLimit.
func (b *Board) Sync(ctx context.Context, limit int) (SyncOutcome, error) {
	if limit <= 0 {
		limit = ManualSyncLimit
	}

	b.mu.RLock()
	target := b.state.Target()
	batch := topN(b.state.Postings, limit)
	b.mu.RUnlock()

	if !target.Configured() {
		return SyncOutcome{}, model.ErrSyncNotConfigured
	}
	if len(batch) == 0 {
		return SyncOutcome{}, model.ErrNothingToSync
	}
	return b.dispatch(ctx, target, batch, "manual"), nil
}

// dispatch sends one batch and records lastSync on success only.
func (b *Board) dispatch(ctx context.Context, target model.SheetTarget, batch []model.Posting, trigger string) SyncOutcome {
	result, err := b.syncer.Sync(ctx, target, batch)
	out := SyncOutcome{Result: result, Err: err}

	if !out.OK() {
		metrics.SyncsTotal.WithLabelValues(trigger, metrics.ResultFailure).Inc()
		b.logger.Warn("sheet sync failed",
			"trigger", trigger,
			"postings", len(batch),
			"message", out.Message(),
		)
		return out
	}

	now := b.now()
	b.mu.Lock()
	if perr := b.setJSON(ctx, KeyLastSync, now); perr != nil {
		b.logger.Error("persisting last sync time", "error", perr)
	} else {
		b.state.LastSync = &now
	}
	b.mu.Unlock()

	metrics.SyncsTotal.WithLabelValues(trigger, metrics.ResultSuccess).Inc()
	b.logger.Info("sheet sync complete",
		"trigger", trigger,
		"postings", len(batch),
		"new_jobs_added", result.NewJobsAdded,
	)
	return out
}

// ToggleBookmark flips the saved flag of the posting with the given id and
// returns the new value.
func (b *Board) ToggleBookmark(ctx context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, p := range b.state.Postings {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", model.ErrPostingNotFound, id)
	}

	next := append([]model.Posting(nil), b.state.Postings...)
	next[idx].Saved = !next[idx].Saved
	if err := b.setJSON(ctx, KeyPostings, next); err != nil {
		return false, err
	}
	b.state.Postings = next
	return next[idx].Saved, nil
}

// Configure validates and stores the sheet settings.
func (b *Board) Configure(ctx context.Context, webhookURL, sheetID string) error {
	u, err := sheets.ValidateWebhookURL(webhookURL)
	if err != nil {
		return err
	}
	id, err := sheets.ValidateSheetID(sheetID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setString(ctx, KeyWebhookURL, u); err != nil {
		return err
	}
	if err := b.setString(ctx, KeySheetID, id); err != nil {
		return err
	}
	b.state.WebhookURL = u
	b.state.SheetID = id

	b.logger.Info("sheet settings saved", "sheet_id", id)
	return nil
}

func topN(ps []model.Posting, n int) []model.Posting {
	if len(ps) > n {
		ps = ps[:n]
	}
	return append([]model.Posting(nil), ps...)
}

// countRetained counts how many fresh postings made it past the cut.
func countRetained(fresh, merged []model.Posting) int {
	if len(fresh) == 0 {
		return 0
	}
	ids := make(map[string]struct{}, len(fresh))
	for _, p := range fresh {
		ids[p.Identity()] = struct{}{}
	}
	n := 0
	for _, p := range merged {
		if _, ok := ids[p.Identity()]; ok {
			n++
		}
	}
	return n
}

func (b *Board) getJSON(ctx context.Context, key string, dst any) error {
	raw, err := b.store.Get(ctx, key)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (b *Board) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := b.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (b *Board) getString(ctx context.Context, key string) (string, error) {
	raw, err := b.store.Get(ctx, key)
	if errors.Is(err, model.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}
	return string(raw), nil
}

func (b *Board) setString(ctx context.Context, key, v string) error {
	if err := b.store.Set(ctx, key, []byte(v)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
