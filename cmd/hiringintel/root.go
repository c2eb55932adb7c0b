package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/ai"
	"github.com/amishk599/hiringintel/internal/board"
	"github.com/amishk599/hiringintel/internal/config"
	"github.com/amishk599/hiringintel/internal/model"
	"github.com/amishk599/hiringintel/internal/scheduler"
	"github.com/amishk599/hiringintel/internal/secrets"
	"github.com/amishk599/hiringintel/internal/sheets"
	"github.com/amishk599/hiringintel/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "hiringintel",
	Short: "Personal job-lead tracker",
	Long: "hiringintel searches for job postings that fit your profile, keeps the best\n" +
		"100 locally and pushes them to a Google Sheet.",
	// Default to `start` so that `hiringintel` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: HIRINGINTEL_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > HIRINGINTEL_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("HIRINGINTEL_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// silentLogger is for TUI commands: any log output corrupts the display.
func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// kvStore is a model.KVStore that owns a connection.
type kvStore interface {
	model.KVStore
	Close() error
}

func openStore(ctx context.Context, cfg *config.Config) (kvStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addrs:    cfg.Store.Redis.Addrs,
			Username: cfg.Store.Redis.Username,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		return store.NewSQLiteStore(cfg.Store.SQLitePath)
	}
}

// lockDataDir makes sure only one process works on a data directory.
func lockDataDir(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, "hiringintel.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking data dir: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another hiringintel process is using %s", dir)
	}
	return lock, nil
}

func newFetcher(cfg *config.Config, logger *slog.Logger) model.PostingFetcher {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	llm := ai.NewOpenAIProvider(cfg.AI.BaseURL, secrets.ResolveAPIKey(cfg.AI.APIKey), httpClient)
	return ai.NewSearchProvider(llm, ai.SearchConfig{
		SearchModel:   cfg.AI.SearchModel,
		AnalysisModel: cfg.AI.AnalysisModel,
		MinScore:      cfg.AI.MinScore,
		Profile: ai.Profile{
			Background: cfg.Profile.Background,
			Skills:     cfg.Profile.Skills,
			Interests:  cfg.Profile.Interests,
			Intent:     cfg.Profile.Intent,
		},
		Query: ai.Query{
			Roles:     cfg.Search.Roles,
			Locations: cfg.Search.Locations,
			Companies: cfg.Search.Companies,
		},
	}, logger)
}

func newSyncer(cfg *config.Config, logger *slog.Logger) model.SheetSyncer {
	return sheets.NewWebhookSyncer(&http.Client{Timeout: cfg.Sheet.Timeout}, logger)
}

// openBoard loads persisted state and seeds the sheet settings from config
// when the store has none yet.
func openBoard(ctx context.Context, cfg *config.Config, kv model.KVStore, fetcher model.PostingFetcher, syncer model.SheetSyncer, logger *slog.Logger) (*board.Board, error) {
	b := board.New(kv, fetcher, syncer, logger)
	if err := b.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading board: %w", err)
	}

	if !b.Snapshot().Target().Configured() && cfg.Sheet.WebhookURL != "" {
		if err := b.Configure(ctx, cfg.Sheet.WebhookURL, cfg.Sheet.SheetID); err != nil {
			logger.Warn("ignoring sheet settings from config", "error", err)
		}
	}
	return b, nil
}

// newScheduler gates scans for b, seeded with its last successful scan.
func newScheduler(cfg *config.Config, b *board.Board, logger *slog.Logger) *scheduler.Scheduler {
	scan := func(ctx context.Context) error {
		_, err := b.Scan(ctx)
		return err
	}
	return scheduler.New(scan, cfg.Scan.Tick, cfg.Scan.Threshold, logger,
		scheduler.WithLastScan(b.Snapshot().LastScan),
		scheduler.WithEnabled(cfg.Scan.Auto),
	)
}

// app bundles what one-shot commands need. close releases the store and
// the data dir lock.
type app struct {
	cfg    *config.Config
	board  *board.Board
	logger *slog.Logger
	close  func()
}

func setupApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	lock, err := lockDataDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	kv, err := openStore(ctx, cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	b, err := openBoard(ctx, cfg, kv, newFetcher(cfg, logger), newSyncer(cfg, logger), logger)
	if err != nil {
		_ = kv.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		board:  b,
		logger: logger,
		close: func() {
			if err := kv.Close(); err != nil {
				logger.Warn("closing store", "error", err)
			}
			_ = lock.Unlock()
		},
	}, nil
}

// describeError turns the common sentinels into something a user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingCredential):
		return "no API key: set ai.api_key, run `hiringintel secret set`, or export " + secrets.APIKeyEnv
	case errors.Is(err, model.ErrSyncNotConfigured):
		return "sheet sync is not configured: run `hiringintel configure`"
	case errors.Is(err, model.ErrNothingToSync):
		return "nothing to sync yet: run `hiringintel scan` first"
	case errors.Is(err, model.ErrNothingToExport):
		return "nothing to export yet"
	default:
		return err.Error()
	}
}
