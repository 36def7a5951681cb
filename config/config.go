// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the mpvtexd configuration file.
//
// The file is TOML. Every key is optional; missing keys keep their defaults.
//
//	[server]
//	addr = "127.0.0.1:8089"
//	allowed_origins = ["http://localhost:3000"]
//	event_rate = 60
//
//	[player]
//	library_path = "/opt/mpv/lib/libmpv.so.2"
//
//	[player.engine_options]
//	hwdec = "no"
//
//	[log]
//	level = "debug"
//	format = "json"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/mpvtex"
)

// Config is the daemon configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Player PlayerConfig `toml:"player"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP and websocket listener.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// AllowedOrigins lists CORS and websocket origins. Empty allows only
	// same-origin requests.
	AllowedOrigins []string `toml:"allowed_origins"`

	// EventRate caps frame-available events per second per client.
	EventRate float64 `toml:"event_rate"`

	// EventBurst is the number of events a client may receive back to back.
	EventBurst int `toml:"event_burst"`

	// MaxFrameWidth caps the width accepted by the frame endpoint.
	MaxFrameWidth int `toml:"max_frame_width"`
}

// PlayerConfig configures every player the daemon creates.
type PlayerConfig struct {
	LibraryPath    string            `toml:"library_path"`
	ContextBackend string            `toml:"context_backend"`
	FlipY          bool              `toml:"flip_y"`
	EngineOptions  map[string]string `toml:"engine_options"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`

	// File is the log file path. Empty logs to stderr.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          "127.0.0.1:8089",
			EventRate:     60,
			EventBurst:    4,
			MaxFrameWidth: mpvtex.MaxSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and validates the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML from r on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("server.addr must not be empty")
	case c.Server.EventRate <= 0:
		return fmt.Errorf("server.event_rate must be positive, got %v", c.Server.EventRate)
	case c.Server.EventBurst < 1:
		return fmt.Errorf("server.event_burst must be at least 1, got %d", c.Server.EventBurst)
	case c.Server.MaxFrameWidth < mpvtex.MinSize || c.Server.MaxFrameWidth > mpvtex.MaxSize:
		return fmt.Errorf("server.max_frame_width must be in [%d, %d], got %d",
			mpvtex.MinSize, mpvtex.MaxSize, c.Server.MaxFrameWidth)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to w according to l.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// PlayerOptions converts the player section into player options.
func (p PlayerConfig) PlayerOptions() []mpvtex.PlayerOption {
	opts := []mpvtex.PlayerOption{
		mpvtex.WithContextBackend(p.ContextBackend),
		mpvtex.WithFlipY(p.FlipY),
	}
	if p.LibraryPath != "" {
		opts = append(opts, mpvtex.WithLibraryPath(p.LibraryPath))
	}
	if len(p.EngineOptions) > 0 {
		opts = append(opts, mpvtex.WithEngineOptions(p.EngineOptions))
	}
	return opts
}
