package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/config"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/server"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/session"
)

var serveFlagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.L()
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	var interval time.Duration
	if cfg.Server.BlockInterval != "" {
		d, err := time.ParseDuration(cfg.Server.BlockInterval)
		if err != nil || d <= 0 {
			return fmt.Errorf("server.block_interval %q: invalid duration", cfg.Server.BlockInterval)
		}
		interval = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := session.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	router := server.NewRouter(server.Backend{
		Engine: s.Engine,
		Ledger: s.Ledger,
		Stakes: s.Stakes,
		Clock:  s.Clock,
	}, server.Options{
		JWTSecret:    []byte(cfg.Server.JWTSecret),
		AllowOrigins: cfg.Server.AllowOrigins,
		Commit:       s.Commit,
	})

	addr := firstNonEmpty(serveFlagAddr, cfg.Server.Addr)
	httpSrv := &http.Server{Addr: addr, Handler: router}
	errc := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	log.Infow("VerifyR API listening", "addr", addr, "jwt", cfg.Server.JWTSecret != "", "block_interval", interval)

	if interval > 0 {
		go produceBlocks(ctx, s, interval)
	}

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Warnw("shutdown", "err", err)
	}
	return s.Commit(shutCtx)
}

// produceBlocks advances the clock by one block per tick.
func produceBlocks(ctx context.Context, s *session.Session, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h, err := s.Clock.Advance(1)
			if err != nil {
				logger.L().Errorw("block height exhausted", "height", h, "err", err)
				return
			}
			if err := s.Commit(ctx); err != nil {
				logger.L().Errorw("commit after block", "height", h, "err", err)
				continue
			}
			logger.L().Debugw("block produced", "height", h)
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "", "listen address (default server.addr)")
}
