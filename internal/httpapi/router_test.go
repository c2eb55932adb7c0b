package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/hiringintel/internal/board"
	"github.com/amishk599/hiringintel/internal/model"
	"github.com/amishk599/hiringintel/internal/scheduler"
	"github.com/amishk599/hiringintel/internal/store"
)

// --- Fakes ---

type fakeFetcher struct {
	mu       sync.Mutex
	postings []model.Posting
	err      error
	block    chan struct{} // when non-nil, FetchPostings waits on it
}

func (f *fakeFetcher) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.postings, f.err
}

type fakeSyncer struct {
	result model.SyncResult
	err    error
	calls  int
}

func (s *fakeSyncer) Sync(_ context.Context, _ model.SheetTarget, ps []model.Posting) (model.SyncResult, error) {
	s.calls++
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const (
	validURL     = "https://script.google.com/macros/s/AKfycbx/exec"
	validSheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"
)

func samplePostings() []model.Posting {
	return []model.Posting{
		{ID: "a", Company: "Acme", Title: "Product Analyst", URL: "https://acme.example/1",
			RelevanceScore: 0.9, RelevanceLabel: model.LabelStrong, DateFound: fixedNow},
		{ID: "b", Company: "Globex", Title: "Growth Marketer", URL: "https://globex.example/2", Location: "Dhaka, Bangladesh",
			RelevanceScore: 0.5, RelevanceLabel: model.LabelMedium, DateFound: fixedNow},
		{ID: "c", Company: "Initech", Title: "Ops Associate", URL: "https://initech.example/3",
			RelevanceScore: 0.3, RelevanceLabel: model.LabelExploratory, DateFound: fixedNow},
	}
}

type testEnv struct {
	board   *board.Board
	sched   *scheduler.Scheduler
	fetcher *fakeFetcher
	syncer  *fakeSyncer
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fetcher := &fakeFetcher{postings: samplePostings()}
	syncer := &fakeSyncer{result: model.SyncResult{Success: true, NewJobsAdded: 2}}
	b := board.New(store.NewMemoryStore(), fetcher, syncer, discardLogger())

	sched := scheduler.New(func(ctx context.Context) error {
		_, err := b.Scan(ctx)
		return err
	}, time.Minute, 2*time.Hour, discardLogger())

	return &testEnv{
		board:   b,
		sched:   sched,
		fetcher: fetcher,
		syncer:  syncer,
		handler: NewRouter(Deps{
			Board:  b,
			Scans:  sched,
			Logger: discardLogger(),
			Now:    func() time.Time { return fixedNow },
		}),
	}
}

// seed runs one scan so the board holds samplePostings.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	if _, err := e.board.Scan(context.Background()); err != nil {
		t.Fatalf("seed scan: %v", err)
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[APIError](t, rec).Error.Code
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/healthz", "")
	rec := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hiringintel_http_requests_total") {
		t.Error("metrics output missing http request counter")
	}
}

func TestListPostings_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	if _, err := env.board.ToggleBookmark(context.Background(), "b"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b", "c"}},
		{"?saved=true", []string{"b"}},
		{"?saved=false", []string{"a", "b", "c"}},
		{"?min_score=0.5", []string{"a", "b"}},
		{"?label=strong", []string{"a"}},
		{"?label=medium&saved=true", []string{"b"}},
		{"?label=exploratory&min_score=0.8", nil},
		{"?title=analyst&title=marketer", []string{"a", "b"}},
		{"?location=dhaka", []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/postings"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			resp := decode[postingsResponse](t, rec)
			if resp.Total != len(tt.want) || len(resp.Postings) != len(tt.want) {
				t.Fatalf("got %d postings, want %v", resp.Total, tt.want)
			}
			for i, id := range tt.want {
				if resp.Postings[i].ID != id {
					t.Errorf("postings[%d] = %s, want %s", i, resp.Postings[i].ID, id)
				}
			}
		})
	}
}

func TestListPostings_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/postings", "")
	if !strings.Contains(rec.Body.String(), `"postings":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
}

func TestListPostings_BadQuery(t *testing.T) {
	env := newTestEnv(t)
	for _, q := range []string{"?saved=maybe", "?min_score=high"} {
		rec := env.do(t, http.MethodGet, "/api/postings"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestToggleBookmark(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rec := env.do(t, http.MethodPost, "/api/postings/a/bookmark", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode[bookmarkResponse](t, rec); !resp.Saved {
		t.Error("first toggle should save")
	}

	rec = env.do(t, http.MethodPost, "/api/postings/a/bookmark", "")
	if resp := decode[bookmarkResponse](t, rec); resp.Saved {
		t.Error("second toggle should unsave")
	}

	rec = env.do(t, http.MethodPost, "/api/postings/nope/bookmark", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestScan_Success(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/scan", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[scanResponse](t, rec)
	if resp.Retained != 3 || resp.LastScan == nil {
		t.Errorf("resp = %+v", resp)
	}
	if env.sched.LastScan() == nil {
		t.Error("scheduler lastScan not advanced by manual trigger")
	}
}

func TestScan_FetchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.err = errors.New("provider down")

	rec := env.do(t, http.MethodPost, "/api/scan", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if code := errorCode(t, rec); code != "scan_failed" {
		t.Errorf("code = %q", code)
	}
	if len(env.board.Snapshot().Postings) != 0 {
		t.Error("failed scan should not change postings")
	}
}

func TestScan_ConflictWhileInFlight(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.block = make(chan struct{})

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- env.do(t, http.MethodPost, "/api/scan", "") }()

	deadline := time.Now().Add(2 * time.Second)
	for !env.sched.InFlight() {
		if time.Now().After(deadline) {
			t.Fatal("first scan never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec := env.do(t, http.MethodPost, "/api/scan", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("second scan status = %d, want 409", rec.Code)
	}

	close(env.fetcher.block)
	if first := <-done; first.Code != http.StatusOK {
		t.Errorf("first scan status = %d", first.Code)
	}
}

func TestSync_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rec := env.do(t, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("status = %d, want 412", rec.Code)
	}
	if code := errorCode(t, rec); code != "sync_not_configured" {
		t.Errorf("code = %q", code)
	}
	if env.syncer.calls != 0 {
		t.Error("syncer should not be called")
	}
}

func TestSync_SuccessAndFailure(t *testing.T) {
	env := newTestEnv(t)
	if err := env.board.Configure(context.Background(), validURL, validSheetID); err != nil {
		t.Fatal(err)
	}
	env.seed(t)
	callsAfterSeed := env.syncer.calls

	rec := env.do(t, http.MethodPost, "/api/sync", `{"limit": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[syncResponse](t, rec)
	if !resp.Success || resp.Message != "Synced! 2 new jobs added." {
		t.Errorf("resp = %+v", resp)
	}
	if env.syncer.calls != callsAfterSeed+1 {
		t.Errorf("syncer calls = %d", env.syncer.calls)
	}

	env.syncer.result = model.SyncResult{Success: false, Message: "Sheet not found"}
	rec = env.do(t, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	resp = decode[syncResponse](t, rec)
	if resp.Success || resp.Message != "Sync Failed: Sheet not found" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSync_BadBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/sync", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/settings", "")
	if resp := decode[settingsResponse](t, rec); resp.Configured {
		t.Error("fresh board should not be configured")
	}

	body := `{"webhookUrl":"  ` + validURL + `  ","sheetId":"` + validSheetID + `"}`
	rec = env.do(t, http.MethodPut, "/api/settings", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[settingsResponse](t, rec)
	if !resp.Configured || resp.WebhookURL != validURL || resp.SheetID != validSheetID {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSettings_Invalid(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad url", `{"webhookUrl":"https://example.com/hook","sheetId":"` + validSheetID + `"}`, http.StatusBadRequest},
		{"bad id", `{"webhookUrl":"` + validURL + `","sheetId":"short"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/api/settings", tt.body)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}
	if env.board.Snapshot().Target().Configured() {
		t.Error("invalid settings must not be stored")
	}
}

func TestAutoScan(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/autoscan", `{"enabled": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.sched.Enabled() {
		t.Error("scheduler not enabled")
	}

	rec = env.do(t, http.MethodPut, "/api/autoscan", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing field status = %d, want 400", rec.Code)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rec := env.do(t, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"total":3`, `"strong":1`, `"foundToday":3`} {
		if !strings.Contains(body, want) {
			t.Errorf("stats %s missing %s", body, want)
		}
	}
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	rec := env.do(t, http.MethodGet, "/api/report", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2026-03-14") || !strings.HasSuffix(strings.TrimSpace(body), "--- End of Report ---") {
		t.Errorf("unexpected report:\n%s", body)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusPreconditionFailed {
		t.Errorf("empty export status = %d, want 412", rec.Code)
	}

	env.seed(t)
	rec = env.do(t, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `attachment; filename="hiring-intel-backup-2026-03-14.json"`
	if got := rec.Header().Get("Content-Disposition"); got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}
	var ps []model.Posting
	if err := json.NewDecoder(rec.Body).Decode(&ps); err != nil {
		t.Fatal(err)
	}
	if len(ps) != 3 {
		t.Errorf("exported %d postings, want 3", len(ps))
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/postings", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
