package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/raidsplit/internal/auth"
	"github.com/mmynk/raidsplit/internal/catalog"
	"github.com/mmynk/raidsplit/internal/config"
	"github.com/mmynk/raidsplit/internal/metrics"
	"github.com/mmynk/raidsplit/internal/middleware"
	"github.com/mmynk/raidsplit/internal/resist"
	"github.com/mmynk/raidsplit/internal/service"
	"github.com/mmynk/raidsplit/internal/storage/sqlite"
	"github.com/mmynk/raidsplit/internal/warcraftlogs"
	"github.com/mmynk/raidsplit/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	catalogs, err := loadCatalogs(cfg.CatalogPath)
	if err != nil {
		return err
	}
	slog.Info("Catalog loaded", "raid_types", catalogs.RaidTypes(), "override", cfg.CatalogPath)

	table, err := loadResistTable(ctx, cfg.ItemDBPath, catalogs.SeedTable())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Callers may bring their own provider token; otherwise the server's
	// client credentials are used when configured.
	var fallback auth.TokenSource
	if cfg.HasClientCredentials() {
		fallback = auth.NewClientCredentials(cfg.WCLTokenURL, cfg.WCLClientID, cfg.WCLClientSecret, &http.Client{Timeout: cfg.WCLTimeout})
	} else {
		slog.Warn("No provider client credentials configured; requests must carry a bearer token")
	}
	client := warcraftlogs.NewClient(cfg.WCLAPIURL, auth.Forwarding{Fallback: fallback},
		warcraftlogs.WithHTTPClient(&http.Client{Timeout: cfg.WCLTimeout}),
		warcraftlogs.WithMetrics(m),
	)

	svc, err := service.NewPayoutService(warcraftlogs.NewFetcher(client), catalogs, table,
		service.WithMetrics(m),
		service.WithCacheSize(cfg.ReportCacheSize),
	)
	if err != nil {
		return err
	}

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
		middleware.ForwardBearer(!cfg.HasClientCredentials()),
	)

	mux := http.NewServeMux()
	path, handler := svc.Handler(interceptors)
	mux.Handle(path, handler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadCatalogs(path string) (*catalog.Set, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// loadResistTable layers the item database over the catalog's seed values.
// A missing or empty database leaves the seed table in use.
func loadResistTable(ctx context.Context, dbPath string, seed *resist.Table) (*resist.Table, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open item database: %w", err)
	}
	defer store.Close()

	stored, err := store.LoadResistTable(ctx)
	if err != nil {
		return nil, err
	}
	items, enchants := stored.Len()
	slog.Info("Item database loaded", "database", dbPath, "items", items, "enchants", enchants)
	return seed.Merge(stored), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
