package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spektr-org/solutions/metrics"
	"github.com/spektr-org/solutions/server"
)

// serveCmd runs the HTTP API over the configured source.
type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard reports over HTTP" }
func (*serveCmd) Usage() string {
	return `serve [-addr host:port]

  Serves /api/* reports, /healthz and /metrics. The dataset is reloaded when
  the source changes; a failed reload keeps the previous dataset.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (default from config)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	addr := a.cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	cache := a.cache(m)
	if _, err := cache.Get(ctx); err != nil {
		// Keep serving: /healthz reports 503 until a load succeeds.
		a.logger.Warn("initial dataset load failed", zap.Error(err))
	}

	handler := server.New(cache, a.cfg.Indicators, a.logger.Named("api"), m)
	srv := server.NewHTTPServer(addr, server.Router(handler, a.logger, m, prometheus.DefaultGatherer), a.cfg.Server.ReadHeaderTimeout)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", addr), zap.String("source", a.src.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fail(err)
		}
	case <-quit.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
