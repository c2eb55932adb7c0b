package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/hiringintel/internal/model"
)

// ScanFunc runs one fetch-and-reconcile cycle.
type ScanFunc func(ctx context.Context) error

// Default gating values.
const (
	DefaultTick      = time.Minute
	DefaultThreshold = 2 * time.Hour
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLastScan seeds the last successful scan time, e.g. from the store.
func WithLastScan(t *time.Time) Option {
	return func(s *Scheduler) {
		if t != nil {
			v := *t
			s.lastScan = &v
		}
	}
}

// WithEnabled sets the initial auto-scan flag.
func WithEnabled(enabled bool) Option {
	return func(s *Scheduler) { s.enabled = enabled }
}

// Scheduler gates automatic scans on elapsed time since the last successful
// scan and makes sure at most one scan runs at a time.
type Scheduler struct {
	scan      ScanFunc
	tick      time.Duration
	threshold time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	lastScan *time.Time
	enabled  bool
	inFlight bool

	wake chan struct{}
}

// New creates a scheduler. Zero tick or threshold fall back to the defaults.
func New(scan ScanFunc, tick, threshold time.Duration, logger *slog.Logger, opts ...Option) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	s := &Scheduler{
		scan:      scan,
		tick:      tick,
		threshold: threshold,
		now:       time.Now,
		logger:    logger,
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run evaluates the gate once immediately and then on every tick. It returns
// nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"tick", s.tick.String(),
		"threshold", s.threshold.String(),
		"enabled", s.Enabled(),
	)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.evaluateAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.evaluateAndLog(ctx)
		case <-s.wake:
			s.evaluateAndLog(ctx)
		}
	}
}

func (s *Scheduler) evaluateAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ran, err := s.Evaluate(ctx)
	if err != nil {
		s.logger.Error("scheduled scan failed", "error", err)
		return
	}
	if ran {
		s.logger.Info("scheduled scan complete")
	}
}

// Evaluate runs a scan if auto-scan is enabled, nothing is in flight and the
// threshold has elapsed since the last successful scan. It reports whether a
// scan was started along with the scan's error.
func (s *Scheduler) Evaluate(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.enabled || s.inFlight || !s.dueLocked() {
		s.mu.Unlock()
		return false, nil
	}
	s.inFlight = true
	s.mu.Unlock()

	return true, s.runScan(ctx)
}

// Trigger runs a scan right away regardless of the enabled flag and the
// threshold. It returns model.ErrScanInFlight if a scan is already running.
func (s *Scheduler) Trigger(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return model.ErrScanInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	return s.runScan(ctx)
}

// runScan expects inFlight to already be set by the caller.
func (s *Scheduler) runScan(ctx context.Context) error {
	err := s.scan(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err == nil {
		t := s.now()
		s.lastScan = &t
	}
	return err
}

func (s *Scheduler) dueLocked() bool {
	if s.lastScan == nil {
		return true
	}
	return s.now().Sub(*s.lastScan) >= s.threshold
}

// SetEnabled flips auto-scan. Turning it on wakes a running loop so the gate
// is checked without waiting for the next tick.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	was := s.enabled
	s.enabled = enabled
	s.mu.Unlock()

	if enabled && !was {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Enabled reports whether auto-scan is on.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// InFlight reports whether a scan is currently running.
func (s *Scheduler) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastScan returns the time of the last successful scan, or nil.
func (s *Scheduler) LastScan() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastScan == nil {
		return nil
	}
	t := *s.lastScan
	return &t
}
