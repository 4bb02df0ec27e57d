package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/odvcencio/scribe/web"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	theme := flag.String("theme", "", "syntax highlight theme (overrides config)")
	configPath := flag.String("config", ".scribe.yaml", "config file path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Args(), *configPath, *addr, *theme); err != nil {
		fmt.Fprintf(os.Stderr, "scribe: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, configPath, addr, theme string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if theme != "" {
		cfg.Theme = theme
	}

	app := NewApp(cfg)
	if len(args) > 0 {
		if err := app.OpenDocument(args[0]); err != nil {
			return err
		}
	}

	srv := web.NewServer(app)
	app.SetBroadcaster(srv.Broadcast)

	server := &http.Server{Addr: cfg.Addr, Handler: srv}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	fmt.Printf("Scribe: http://localhost%s\n", cfg.Addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
