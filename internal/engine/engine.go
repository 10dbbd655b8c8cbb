package engine

import (
	"fmt"
	"log/slog"

	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/region"
	"github.com/tatianab/toons/internal/scanner"
)

// EdgeMode says which screen edges stop toons.
type EdgeMode int

const (
	EdgeNone       EdgeMode = iota
	EdgeBoth                // all four edges
	EdgeSideBottom          // left, right and bottom; toons may leave through the top
)

func (m EdgeMode) String() string {
	switch m {
	case EdgeNone:
		return "none"
	case EdgeBoth:
		return "both"
	case EdgeSideBottom:
		return "side-bottom"
	}
	return fmt.Sprintf("edge(%d)", int(m))
}

// Relocate bounds how far a riding toon follows its window in one rescan.
type Relocate struct {
	Up, Down, Left, Right int
}

// DefaultMaxRelocate suits typical window drag speeds.
const DefaultMaxRelocate = 16

type Options struct {
	Edge        EdgeMode
	MaxRelocate Relocate
	// ScanEveryTick rescans on every tick instead of only when the backend
	// reports a window change.
	ScanEveryTick bool
}

// Handle is a stable index into the engine's toon pool.
type Handle int

// Engine owns the toon pool, the window table and the occlusion region.
// It is not safe for concurrent use; the tick loop drives it from one goroutine.
type Engine struct {
	opts    Options
	classes []models.SpriteClass
	toons   []models.Toon
	scanner *scanner.Scanner

	windows []models.WindowRecord
	region  *region.Region
	width   int
	height  int

	log *slog.Logger
}

// New creates an engine with a pool of capacity inactive toons and performs
// the first window scan.
func New(sc *scanner.Scanner, classes []models.SpriteClass, capacity int, opts Options, log *slog.Logger) (*Engine, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("engine: no sprite classes")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("engine: negative pool capacity %d", capacity)
	}
	e := &Engine{
		opts:    opts,
		classes: append([]models.SpriteClass(nil), classes...),
		toons:   make([]models.Toon, capacity),
		scanner: sc,
		region:  region.Empty,
		log:     log,
	}
	e.width, e.height = sc.Backend().DisplaySize()

	windows, reg, err := sc.Scan()
	if err != nil {
		return nil, err
	}
	e.windows, e.region = windows, reg
	return e, nil
}

// Options returns the current engine options.
func (e *Engine) Options() Options { return e.opts }

// Reconfigure replaces engine and scanner options. The new scanner options
// take effect on the next scan.
func (e *Engine) Reconfigure(opts Options, scan scanner.Options) {
	e.opts = opts
	e.scanner.SetOptions(scan)
}

// DisplaySize returns the display size captured at startup.
func (e *Engine) DisplaySize() (int, int) { return e.width, e.height }

// Class returns the sprite class with index i.
func (e *Engine) Class(i int) models.SpriteClass { return e.classes[i] }

// Len returns the pool capacity.
func (e *Engine) Len() int { return len(e.toons) }

// Toon returns the toon behind h. The pointer stays valid for the engine's
// lifetime; callers outside the behavior layer should treat it as read-only.
func (e *Engine) Toon(h Handle) *models.Toon { return &e.toons[h] }

// Windows returns a copy of the current window table.
func (e *Engine) Windows() []models.WindowRecord {
	return append([]models.WindowRecord(nil), e.windows...)
}

// Region returns the current occlusion region.
func (e *Engine) Region() *region.Region { return e.region }

// Rescan runs the association snapshot, window scan and relocation as one
// step. Unless ScanEveryTick is set it does nothing when the backend reports
// no window change. It returns whether a scan happened.
func (e *Engine) Rescan() (bool, error) {
	// always ask, so that backends queueing change events get drained
	changed, err := e.scanner.Changed()
	if err != nil {
		return false, err
	}
	if !changed && !e.opts.ScanEveryTick {
		return false, nil
	}

	e.CalculateAssociations()
	windows, reg, err := e.scanner.Scan()
	if err != nil {
		return false, err
	}
	e.windows, e.region = windows, reg
	e.RelocateAssociated()
	return true, nil
}

func (e *Engine) size(t *models.Toon) (int, int) {
	c := e.classes[t.Type]
	return c.Width, c.Height
}
