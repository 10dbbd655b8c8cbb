package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/tatianab/toons/internal/config"
	"github.com/tatianab/toons/internal/desktop"
	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/penguins"
	"github.com/tatianab/toons/internal/scanner"
	"github.com/tatianab/toons/internal/tui"
)

// Plays a colony on a simulated desktop without a terminal and prints what
// happens: the editor window is dragged around, jerked too far once, and
// closed near the end.
func main() {
	ticks := flag.Int("ticks", 400, "number of ticks to simulate")
	count := flag.Int("n", 8, "number of penguins")
	seed := flag.Uint64("seed", 1, "random seed")
	layout := flag.String("layout", "", "yaml desktop layout")
	debug := flag.Bool("debug", false, "log scans and relocations to stderr")
	flag.Parse()

	out := io.Discard
	if *debug {
		out = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var desk *desktop.Desktop
	var err error
	if *layout != "" {
		desk, err = desktop.LoadLayout(*layout)
	} else {
		desk, err = desktop.FromLayout(tui.DefaultLayout())
	}
	if err != nil {
		log.Fatalf("Failed to build desktop: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Penguins = *count
	cfg.Seed = *seed
	opts := cfg.ColonyOptions()

	sc := scanner.New(desk, cfg.ScanOptions(), logger)
	colony, err := penguins.New(sc, models.DefaultTheme(), opts, logger)
	if err != nil {
		log.Fatalf("Failed to create colony: %v", err)
	}

	dragged := pick(desk, "editor")
	fmt.Printf("Desktop: %d windows, %d penguins, dragging window %#x\n\n", len(desk.Windows()), *count, dragged)

	for tick := 1; tick <= *ticks; tick++ {
		switch {
		case dragged == 0:
		case tick == *ticks*3/4:
			desk.Remove(dragged)
			fmt.Printf("--- Tick %d: window %#x closed ---\n", tick, dragged)
			dragged = 0
		case tick == *ticks/2:
			desk.MoveBy(dragged, 40, 0)
			fmt.Printf("--- Tick %d: window %#x jerked 40px right ---\n", tick, dragged)
		case tick%4 == 0:
			dx := 4
			if (tick/40)%2 == 1 {
				dx = -4
			}
			desk.MoveBy(dragged, dx, -1)
		}

		if err := colony.Step(); err != nil {
			log.Fatalf("Tick %d: %v", tick, err)
		}
		if tick%25 == 0 || tick == *ticks {
			report(tick, colony, dragged)
		}
	}
}

func pick(desk *desktop.Desktop, title string) models.WindowID {
	for _, w := range desk.Windows() {
		if w.Title == title {
			return w.ID
		}
	}
	return 0
}

func report(tick int, colony *penguins.Colony, dragged models.WindowID) {
	eng := colony.Engine()
	census := colony.Census()
	fmt.Printf("Tick %d:", tick)
	for i, c := range colony.Theme().Classes {
		if census[i] > 0 {
			fmt.Printf(" %s=%d", c.Name, census[i])
		}
	}
	fmt.Println()

	for h := range eng.Len() {
		t := eng.Toon(engine.Handle(h))
		if !t.Active || t.Assoc == models.Unassociated || t.Window == 0 {
			continue
		}
		mark := ""
		if t.Window == dragged {
			mark = " (dragged window)"
		}
		fmt.Printf("  toon %d %s at (%d,%d) riding %#x%s\n",
			h, eng.Class(t.Type).Name, t.X, t.Y, t.Window, mark)
	}
}
