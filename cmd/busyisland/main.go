package main

import (
	"context"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"busyisland/internal/config"
	"busyisland/internal/game"
	"busyisland/internal/handler"
	"busyisland/internal/ridership"
	"busyisland/internal/server"
	"busyisland/internal/session"
	"busyisland/internal/storage"
	"busyisland/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding weekday.csv and weekend.csv (default: embedded sample data)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path for the browse view")
	flag.BoolVar(&cfg.Warm, "warm", cfg.Warm, "Load and import datasets before serving pages")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database
	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loader := ridership.NewLoader(dataSource(cfg, logger), logger)
	importer := ridership.NewImporter(db, loader, logger)

	sessions := session.NewStore(cfg.SessionTTL, func() *game.Session {
		return game.NewSession(loader, game.NewGenerator(nil))
	})
	go sessions.Run(ctx, 5*time.Minute)

	static, err := fs.Sub(web.StaticFiles, "static")
	if err != nil {
		logger.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	h := handler.New(sessions, importer, db, static, logger)
	srv := server.New(cfg, h, static, logger)

	if cfg.Warm {
		go func() {
			for _, p := range ridership.Periods {
				if err := importer.Ensure(ctx, p); err != nil {
					logger.Error("warm-up failed", "period", p, "error", err)
				}
			}
			srv.SetReady()
		}()
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// dataSource picks where datasets come from: configured URLs first, then
// the data directory, then the embedded samples.
func dataSource(cfg *config.Config, logger *slog.Logger) ridership.Source {
	var next ridership.Source
	if cfg.DataDir != "" {
		next = ridership.NewFSSource(os.DirFS(cfg.DataDir))
	} else {
		data, err := fs.Sub(web.DataFiles, "data")
		if err != nil {
			logger.Error("failed to open embedded data", "error", err)
			os.Exit(1)
		}
		next = ridership.NewFSSource(data)
	}

	urls := make(map[ridership.Period]string)
	if cfg.WeekdayURL != "" {
		urls[ridership.Weekday] = cfg.WeekdayURL
	}
	if cfg.WeekendURL != "" {
		urls[ridership.Weekend] = cfg.WeekendURL
	}
	if len(urls) == 0 {
		return next
	}
	return ridership.Fallback{
		HTTP: ridership.NewHTTPSource(urls, cfg.FetchTimeout, logger),
		Next: next,
	}
}
