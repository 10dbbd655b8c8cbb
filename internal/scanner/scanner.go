// Package scanner turns the window system's list of top-level windows into a
// window table and an occlusion region.
package scanner

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/region"
)

// ErrConnection wraps failures that mean the window system is gone.
var ErrConnection = errors.New("window system connection lost")

// Attributes is what the backend reports about one window.
type Attributes struct {
	X, Y          int // outer corner
	Width, Height int // inside the border
	BorderWidth   int
	Viewable      bool
	// SaveUnder and OverrideRedirect both mark popup windows.
	SaveUnder        bool
	OverrideRedirect bool
}

// Backend is the window system as seen by the scanner.
type Backend interface {
	// DisplaySize returns the root window size in pixels.
	DisplaySize() (width, height int)
	// Children lists top-level windows bottom to top. An error here is fatal.
	Children() ([]models.WindowID, error)
	// Attributes may fail for a window destroyed since Children returned.
	Attributes(id models.WindowID) (Attributes, error)
	// ShapeRectangles returns the bounding shape relative to the window
	// origin, or a single rectangle for unshaped windows.
	ShapeRectangles(id models.WindowID) ([]models.Rect, error)
}

// ChangeNotifier is implemented by backends that can tell whether any
// top-level window was configured, mapped or unmapped since the last call.
type ChangeNotifier interface {
	WindowsChanged() (bool, error)
}

// Options control which windows count as obstacles.
type Options struct {
	SolidPopups   bool
	ShapedWindows bool
}

// Scanner rebuilds the window table and region on demand.
type Scanner struct {
	backend Backend
	opts    Options
	log     *slog.Logger
}

func New(backend Backend, opts Options, log *slog.Logger) *Scanner {
	return &Scanner{backend: backend, opts: opts, log: log}
}

// Backend returns the backend being scanned.
func (s *Scanner) Backend() Backend { return s.backend }

// SetOptions changes the exclusion rules for subsequent scans.
func (s *Scanner) SetOptions(opts Options) { s.opts = opts }

// Options returns the current exclusion rules.
func (s *Scanner) Options() Options { return s.opts }

// Scan enumerates the top-level windows and returns a fresh window table and
// region. Per-window query failures mark the window non-solid; only a failed
// enumeration is returned as an error.
func (s *Scanner) Scan() ([]models.WindowRecord, *region.Region, error) {
	ids, err := s.backend.Children()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query tree: %v", ErrConnection, err)
	}
	dw, dh := s.backend.DisplaySize()

	windows := make([]models.WindowRecord, 0, len(ids))
	var b region.Builder
	failed := 0
	for _, id := range ids {
		rec := models.WindowRecord{ID: id}
		attr, err := s.backend.Attributes(id)
		if err != nil {
			// destroyed between enumeration and query
			failed++
			s.log.Debug("window query failed", "window", id, "error", err)
			windows = append(windows, rec)
			continue
		}
		rec.Rect = models.Rect{
			X: attr.X,
			Y: attr.Y,
			W: attr.Width + 2*attr.BorderWidth,
			H: attr.Height + 2*attr.BorderWidth,
		}
		rec.Solid = s.solid(attr, rec.Rect, dw, dh)
		windows = append(windows, rec)
		if !rec.Solid {
			continue
		}

		if !s.opts.ShapedWindows {
			b.Union(rec.Rect)
			continue
		}
		shape, err := s.backend.ShapeRectangles(id)
		if err != nil || len(shape) <= 1 {
			b.Union(rec.Rect)
			continue
		}
		for _, r := range shape {
			b.Union(r.Translate(rec.Rect.X, rec.Rect.Y))
		}
	}
	reg := b.Build()
	s.log.Debug("scanned windows", "windows", len(windows), "failed", failed, "rects", reg.Len(), "area", reg.Area())
	return windows, reg, nil
}

func (s *Scanner) solid(attr Attributes, r models.Rect, dw, dh int) bool {
	if !attr.Viewable {
		return false
	}
	if !s.opts.SolidPopups && (attr.SaveUnder || attr.OverrideRedirect) {
		return false
	}
	// entirely off the display
	if r.X >= dw || r.Y >= dh || r.Right() <= 0 || r.Bottom() <= 0 {
		return false
	}
	return true
}

// Changed asks the backend whether windows changed. Backends that cannot
// tell always report a change.
func (s *Scanner) Changed() (bool, error) {
	n, ok := s.backend.(ChangeNotifier)
	if !ok {
		return true, nil
	}
	changed, err := n.WindowsChanged()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return changed, nil
}
