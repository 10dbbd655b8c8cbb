package engine

import (
	"fmt"

	"github.com/tatianab/toons/internal/models"
)

// CalculateAssociations records, for every active riding toon, the window it
// rides and its offset from that window's origin. It must run against the
// window table from before a rescan; RelocateAssociated then uses the new one.
//
// The window is the first solid entry in the table that overlaps a one pixel
// line just outside the toon on its riding side. A toon with no such window
// gets identifier 0.
func (e *Engine) CalculateAssociations() {
	for i := range e.toons {
		t := &e.toons[i]
		if !t.Active || t.Assoc == models.Unassociated {
			continue
		}
		w, h := e.size(t)

		var line models.Rect
		switch t.Assoc {
		case models.RidingDown:
			line = models.Rect{X: t.X, Y: t.Y + h, W: w, H: 1}
		case models.RidingUp:
			line = models.Rect{X: t.X, Y: t.Y - 1, W: w, H: 1}
		case models.RidingLeft:
			line = models.Rect{X: t.X - 1, Y: t.Y, W: 1, H: h}
		case models.RidingRight:
			line = models.Rect{X: t.X + w, Y: t.Y, W: 1, H: h}
		default:
			panic(fmt.Sprintf("engine: illegal association %d for toon %d", int(t.Assoc), i))
		}

		t.Window = 0
		for _, win := range e.windows {
			if win.Solid && win.Rect.Intersects(line) {
				t.Window = win.ID
				t.XOffset = t.X - win.Rect.X
				t.YOffset = t.Y - win.Rect.Y
				break
			}
		}
	}
}

// RelocateAssociated moves riding toons along with their windows after a
// rescan. Windows are looked up by identifier since table positions change
// between scans. A toon follows only when the move is within the relocation
// bounds in every direction and the destination is free; otherwise it stays
// where it is.
func (e *Engine) RelocateAssociated() {
	limit := e.opts.MaxRelocate
	for i := range e.toons {
		t := &e.toons[i]
		if !t.Active || t.Assoc == models.Unassociated || t.Window == 0 {
			continue
		}
		win, ok := e.window(t.Window)
		if !ok || !win.Solid {
			continue
		}

		dx := t.XOffset + win.Rect.X - t.X
		dy := t.YOffset + win.Rect.Y - t.Y
		if dx == 0 && dy == 0 {
			continue
		}
		if dx > limit.Right || -dx > limit.Left || dy > limit.Down || -dy > limit.Up {
			e.log.Debug("relocation out of range", "toon", i, "window", win.ID, "dx", dx, "dy", dy)
			continue
		}
		if e.OffsetBlocked(Handle(i), dx, dy) {
			e.log.Debug("relocation blocked", "toon", i, "window", win.ID, "dx", dx, "dy", dy)
			continue
		}
		t.X += dx
		t.Y += dy
	}
}

func (e *Engine) window(id models.WindowID) (models.WindowRecord, bool) {
	for _, w := range e.windows {
		if w.ID == id {
			return w, true
		}
	}
	return models.WindowRecord{}, false
}
