package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tatianab/toons/internal/config"
	"github.com/tatianab/toons/internal/penguins"
	"github.com/tatianab/toons/internal/scanner"
	"github.com/tatianab/toons/internal/x11"
)

const version = "1.2"

func main() {
	cfg := config.DefaultConfig()
	var (
		configPath  = flag.String("config", os.Getenv(config.EnvFile), "yaml config file")
		maxRelocate = flag.Int("max-relocate", cfg.MaxRelocate.Up, "pixels a window may move per tick and keep its riders")
		showVersion = flag.Bool("version", false, "print the version and exit")
	)
	flag.StringVar(&cfg.Display, "display", cfg.Display, "X display to send the penguins to")
	flag.IntVar(&cfg.Delay, "delay", cfg.Delay, "delay between frames in milliseconds")
	flag.IntVar(&cfg.Penguins, "penguins", cfg.Penguins, fmt.Sprintf("number of penguins (max %d)", penguins.MaxPenguins))
	flag.IntVar(&cfg.Penguins, "n", cfg.Penguins, "shorthand for -penguins")
	flag.StringVar(&cfg.EdgeBlock, "edge-block", cfg.EdgeBlock, "screen edges that stop penguins: none, both or side-bottom")
	flag.BoolVar(&cfg.SolidPopups, "solid-popups", cfg.SolidPopups, "penguins walk on popup windows")
	flag.BoolVar(&cfg.ShapedWindows, "shaped-windows", cfg.ShapedWindows, "respect window shapes instead of bounding boxes")
	flag.StringVar(&cfg.ScanMode, "scan-mode", cfg.ScanMode, "rescan windows every-tick or on-change")
	flag.StringVar(&cfg.Theme, "theme", cfg.Theme, "sprite theme name")
	flag.StringVar(&cfg.ThemeDir, "theme-dir", cfg.ThemeDir, "directory holding themes")
	flag.StringVar(&cfg.ThemeSource, "theme-source", cfg.ThemeSource, "go-getter address to download the theme from")
	flag.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "suppress messages on exit")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log every scan and relocation")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 uses the clock)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("toons %s\n", version)
		return
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["max-relocate"] {
		n := *maxRelocate
		cfg.MaxRelocate = config.Relocate{Up: n, Down: n, Left: n, Right: n}
	}
	if *configPath != "" {
		fromFile, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}

	level := slog.LevelInfo
	switch {
	case cfg.Debug:
		level = slog.LevelDebug
	case cfg.Quiet:
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("toons", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	theme, err := cfg.LoadTheme(ctx)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	disp, err := x11.Open(cfg.Display, log)
	if err != nil {
		return err
	}
	defer disp.Close()

	renderer, err := x11.NewRenderer(disp)
	if err != nil {
		return err
	}
	defer renderer.Close()

	sc := scanner.New(disp, cfg.ScanOptions(), log)
	colony, err := penguins.New(sc, theme, cfg.ColonyOptions(), log)
	if err != nil {
		return err
	}
	log.Info("penguins released", "count", colony.Engine().Len(), "theme", theme.Name)
	return colony.Run(ctx, renderer)
}
