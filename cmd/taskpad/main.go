// Package main is the entry point for the taskpad TUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskpad/internal/backend/supabase"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/logging"
	"taskpad/internal/service"
	"taskpad/internal/session"
	"taskpad/internal/ui"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("taskpad", flag.ContinueOnError)
	configDir := fs.String("config", "", "configuration directory")
	backendURL := fs.String("url", "", "backend project URL")
	debug := fs.Bool("debug", false, "write debug log to the config dir")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return exitcode.UserError
	}

	if *showVersion {
		fmt.Printf("taskpad %s\n", version)
		return exitcode.Success
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitcode.UserError
	}
	if *backendURL != "" {
		cfg.URL = *backendURL
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}

	logger, logCloser, err := logging.Open(cfg.LogPath(), cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open log file: %v\n", err)
		return exitcode.UserError
	}
	defer logCloser.Close()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// One backend client for the process lifetime, injected into the gate
	// and the UI rather than reached for as a global.
	var svc service.Service = supabase.New(cfg)
	gate := session.NewGate(svc)
	defer gate.Close()

	logger.Info("starting", "version", version, "url", cfg.URL)
	if err := ui.Run(ctx, gate, svc, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
