// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command mpvtexd serves offscreen mpv players over a websocket method
// channel and an HTTP frame endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/mpvtex"
	"github.com/gogpu/mpvtex/config"
	"github.com/gogpu/mpvtex/dispatch"
	"github.com/gogpu/mpvtex/glctx"
	"github.com/gogpu/mpvtex/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		addr       = flag.String("addr", "", "listen address (overrides server.addr)")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error (overrides log.level)")
		libmpv     = flag.String("libmpv", "", "libmpv path (overrides player.library_path)")
		dumpConfig = flag.Bool("dump-config", false, "print the effective configuration and exit")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *libmpv != "" {
		cfg.Player.LibraryPath = *libmpv
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dumpConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Players are created and closed from handler goroutines; GLFW
	// window calls are served on the main thread.
	var err error
	glctx.Main(func() { err = run(cfg) })
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	var out io.Writer = os.Stderr
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger, err := cfg.Log.NewLogger(out)
	if err != nil {
		return err
	}
	mpvtex.SetLogger(logger)

	host := server.NewHost()
	disp := dispatch.New(dispatch.NewRegistry(), dispatch.PlayerFactory(host, cfg.Player.PlayerOptions()...))
	defer disp.Close()
	srv := server.New(cfg.Server, host, disp)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = srv.ListenAndServe(ctx)
	logger.Info("mpvtexd: shutting down", "sessions", disp.Registry().Len())
	return err
}
