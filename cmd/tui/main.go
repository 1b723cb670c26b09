// Package main runs the estimate form in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"auction-advisor/internal/app"
	"auction-advisor/internal/config"
	"auction-advisor/internal/logging"
	"auction-advisor/internal/tui"
)

func main() {
	flags := flag.NewFlagSet("tui", flag.ExitOnError)
	logFile := flags.String("log-file", "", "Write logs to this file (logs are discarded when empty)")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// The terminal belongs to the form, so logs only go to a file.
	logger := zap.NewNop()
	if *logFile != "" {
		logger, err = logging.New(logging.Options{
			Level:       cfg.Log.Level,
			Development: cfg.Log.Development,
			OutputPaths: []string{*logFile},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adv, err := app.LoadAdvisor(ctx, cfg, "tui", logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading advisor: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.New(ctx, adv), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		logger.Error("tui exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
