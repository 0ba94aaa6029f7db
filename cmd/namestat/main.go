package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/namestat/pkg/api"
	"github.com/hazyhaar/namestat/pkg/importer"
	"github.com/hazyhaar/namestat/pkg/names"
	"github.com/hazyhaar/namestat/pkg/pipeline"
	"github.com/hazyhaar/namestat/pkg/ssb"
	"github.com/hazyhaar/namestat/pkg/store"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "trending":
		cmdTrending(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: namestat <command> [flags]

Commands:
  serve      Start the HTTP server
  import     Fetch, classify and store names
  trending   Print the trend table and rankings as JSON
  mcp        Serve MCP tools over stdio
`)
}

// newPipeline builds the fetch/classify pipeline from cfg.
func newPipeline(cfg config, logger *slog.Logger) (*pipeline.Pipeline, *ssb.Client, error) {
	ref, err := names.LoadReference(cfg.ReferenceFile)
	if err != nil {
		return nil, nil, err
	}
	client := ssb.NewClient(cfg.ssbConfig(), nil)
	p := pipeline.New(client, ref, logger,
		pipeline.WithLayout(cfg.layout()),
		pipeline.WithTopN(cfg.Top),
		pipeline.WithSourceTimeout(cfg.Source.Timeout),
	)
	logger.Info("reference loaded", "version", ref.Version, "entries", len(ref.Entries))
	return p, client, nil
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, logger := loadConfig(*cfgPath)

	p, client, err := newPipeline(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	// SIGHUP: reload the reference dataset.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if cfg.Source.CheckInterval > 0 {
		go store.NewChecker(st, client.URL(), logger, cfg.Source.CheckInterval).Start(ctx)
	}

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading reference")
			ref, err := names.LoadReference(cfg.ReferenceFile)
			if err != nil {
				logger.Error("reload failed", "error", err)
				continue
			}
			p.SetReference(ref)
			logger.Info("reference reloaded", "version", ref.Version, "entries", len(ref.Entries))
		}
	}()

	router := api.NewRouter(api.Deps{
		Runner:   p,
		Importer: importer.New(p, st, logger),
		Health:   st,
		Years:    cfg.Source.Years,
		TopN:     cfg.Top,
	}, api.Options{Logger: logger})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("namestat listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Shutdown(context.Background())
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	// stdout carries the protocol; loadConfig logs to stderr.
	cfg, logger := loadConfig(*cfgPath)

	p, _, err := newPipeline(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	srv := server.NewMCPServer("namestat", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, api.Deps{Runner: p, Years: cfg.Source.Years, TopN: cfg.Top}, logger)

	if err := server.ServeStdio(srv); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
