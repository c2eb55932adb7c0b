package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/hiringintel/internal/httpapi"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scan daemon",
	Long: "Start the auto-scan scheduler and, when server.listen is set, the local HTTP API.\n" +
		"Blocks until SIGINT/SIGTERM.",
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setupApp(ctx, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	cfg := a.cfg
	logger.Info("config loaded",
		"store", cfg.Store.Backend,
		"auto_scan", cfg.Scan.Auto,
		"tick", cfg.Scan.Tick.String(),
		"threshold", cfg.Scan.Threshold.String(),
		"roles", len(cfg.Search.Roles),
		"sheet_configured", a.board.Snapshot().Target().Configured(),
	)

	sched := newScheduler(cfg, a.board, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})

	if cfg.Server.Listen != "" {
		srv := &http.Server{
			Addr: cfg.Server.Listen,
			Handler: httpapi.NewRouter(httpapi.Deps{
				Board:  a.board,
				Scans:  sched,
				Logger: logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("starting http server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
