// Command sessionctl drives the session pipeline from a terminal.
//
// Each URL argument is fetched with GET through the authenticated client; the
// interceptor logs out, notifies or reports exactly as it would in the console.
// Every line read from stdin counts as one user activity tick for the token
// refresher. The process runs until SIGINT or SIGTERM.
//
//	API_BASE_URL=https://app.example.com SESSION_TOKEN=... ACCOUNT_ID=abc \
//		sessionctl https://app.example.com/ng/api/projects
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionguard/app"
	"github.com/dmitrymomot/sessionguard/core/config"
	"github.com/dmitrymomot/sessionguard/core/health"
	"github.com/dmitrymomot/sessionguard/core/logger"
)

type Config struct {
	App app.Config

	HealthAddr string `env:"HEALTH_ADDR"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "sessionctl:", err)
		os.Exit(1)
	}
}

func run(urls []string, stdin io.Reader) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	a, err := app.New(cfg.App)
	if err != nil {
		return err
	}
	log := a.Logger()
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Run(ctx) })

	g.Go(func() error {
		for _, u := range urls {
			if err := fetch(ctx, a, u); err != nil {
				log.ErrorContext(ctx, "request failed", logger.URL(u), logger.Error(err))
			}
		}
		return nil
	})

	go readActivity(ctx, a, stdin)

	if cfg.HealthAddr != "" {
		srv := healthServer(cfg.HealthAddr, log, a)
		g.Go(func() error {
			log.InfoContext(ctx, "health endpoint listening", slog.String("addr", cfg.HealthAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func fetch(ctx context.Context, a *app.App, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := a.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	a.Logger().InfoContext(ctx, "fetched",
		logger.URL(u),
		logger.StatusCode(resp.StatusCode),
		slog.Bool("logged_out", a.LoggedOut()))
	return nil
}

// readActivity returns at EOF or on the first line read after ctx is done.
func readActivity(ctx context.Context, a *app.App, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		a.Activity()
	}
}

func healthServer(addr string, log *slog.Logger, a *app.App) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", health.Liveness)
	mux.HandleFunc("GET /health/ready", health.Readiness(log, a.Ready))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
