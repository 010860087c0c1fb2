package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/serve"
)

// serveCmd starts the HTTP session API.
func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.parley/config.yaml)")
	addr := fs.String("addr", "", "HTTP listen address (default from config, :3001)")
	dbPath := fs.String("db", "", "SQLite database path (default ~/.parley/parley.db)")
	watch := fs.Bool("watch", false, "Reload the script when it changes")

	fs.Usage = func() {
		fmt.Println(`Usage: parley serve <script> [options]

Start the HTTP session API. Set TELEGRAM_BOT_TOKEN to also serve a
Telegram bot, one session per chat.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  parley serve support.parley
  parley serve support.parley --addr :8080 --watch
  parley serve support.parley --db /tmp/parley.db`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Serve.DBPath = *dbPath
	}
	if *watch {
		cfg.Serve.Watch = true
	}

	loader := dsl.NewLoader(scriptPath(fs, cfg))
	prog, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", loader.Path(), err)
		os.Exit(1)
	}
	for _, w := range dsl.Lint(prog) {
		slog.Warn("script warning", "file", loader.Path(), "warning", w.String())
	}

	if cfg.Serve.DBPath == parley.DefaultDBPath() {
		if err := parley.EnsureHome(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loaded: %s (%d intents, %d rules)\n", loader.Path(), len(prog.Intents), prog.RuleCount())

	srv := serve.New(loader, newRouter(cfg), serve.Config{
		Addr:          cfg.Serve.Addr,
		DBPath:        cfg.Serve.DBPath,
		SessionTTL:    cfg.Serve.SessionTTL,
		ReapSchedule:  cfg.Serve.ReapSchedule,
		TelegramToken: cfg.Telegram.Token,
	}, serve.WithConversationOptions(conversationOptions(cfg)...))

	// Signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Serve.Watch {
		loader.OnReload = srv.NotifyReload
		go func() {
			if err := loader.WatchAndReload(ctx.Done()); err != nil {
				slog.Error("script watcher stopped", "error", err)
			}
		}()
	}

	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
