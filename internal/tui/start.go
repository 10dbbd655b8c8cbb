package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tatianab/toons/internal/config"
	"github.com/tatianab/toons/internal/desktop"
	"github.com/tatianab/toons/internal/penguins"
	"github.com/tatianab/toons/internal/scanner"
)

// EnvLog names a file that receives debug logs while the terminal is taken
// over by the front end.
const EnvLog = "TOONS_LOG"

// DefaultLayout is the desktop used when no layout file is configured.
func DefaultLayout() desktop.Layout {
	return desktop.Layout{
		Width:  640,
		Height: 480,
		Windows: []desktop.Window{
			{Title: "terminal", X: 40, Y: 300, W: 260, H: 120, Border: 2},
			{Title: "editor", X: 340, Y: 200, W: 240, H: 180, Border: 2},
			{Title: "clock", X: 480, Y: 60, W: 100, H: 60, Border: 1},
			{Title: "menu", X: 120, Y: 120, W: 90, H: 40, Popup: true},
		},
	}
}

// Start runs the terminal front end with the configuration from TOONS_CONFIG.
func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	var desk *desktop.Desktop
	if cfg.Layout != "" {
		desk, err = desktop.LoadLayout(cfg.Layout)
		if err != nil {
			return err
		}
	} else {
		desk, err = desktop.FromLayout(DefaultLayout())
		if err != nil {
			return err
		}
	}

	theme, err := cfg.LoadTheme(context.Background())
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	sc := scanner.New(desk, cfg.ScanOptions(), log)
	colony, err := penguins.New(sc, theme, cfg.ColonyOptions(), log)
	if err != nil {
		return err
	}
	return Run(colony, desk)
}

func openLog() (*slog.Logger, func(), error) {
	path := os.Getenv(EnvLog)
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, func() { f.Close() }, nil
}
