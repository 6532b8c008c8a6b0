// Package main is the entry point for the block definition viewer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/config"
	"github.com/Faultbox/blockview/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Blockview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Data.RomDir == "" {
		dir, err := pickRomDir()
		if err != nil {
			logger.Error("no ROM directory", zap.Error(err))
			os.Exit(1)
		}
		cfg.Data.RomDir = dir
		if err := cfg.Save(); err != nil {
			logger.Warn("failed to remember ROM directory", zap.Error(err))
		}
	}

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// pickRomDir asks for the game's ROM directory with a native dialog.
func pickRomDir() (string, error) {
	dir, err := dialog.Directory().Title("Select the ROM directory").Browse()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", errors.New("directory selection cancelled, pass -rom instead")
	}
	return dir, err
}
