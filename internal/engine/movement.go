package engine

import "github.com/tatianab/toons/internal/models"

// Mode selects how Advance treats the computed position.
type Mode int

const (
	Move     Mode = iota // move as far as possible
	Force                // move to the raw target regardless of edges and windows
	TestOnly             // report the outcome without changing anything
)

// Result is the outcome of Advance.
type Result int

const (
	Ok Result = iota
	PartialMove
	Blocked
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case PartialMove:
		return "partial"
	case Blocked:
		return "blocked"
	}
	return "result(?)"
}

// Contact is the outcome of a Blocked probe.
type Contact int

const (
	Clear Contact = iota
	Touching
	OutOfRange // not a valid probe direction
)

// Advance moves toon h by its velocity.
//
// With edge blocking the target is clamped to the display, each axis on its
// own; a clamp makes the result at least PartialMove, and a clamp that leaves
// the toon where it is makes it Blocked. In Move mode a target overlapping a
// window is walked back along the line towards the current position, one
// pixel at a time on the longer axis, and the first free position found
// becomes the target. The shorter axis is interpolated with integer division,
// which truncates toward zero. If no free position exists the toon stays put.
//
// Every committed move advances the animation frame. Wrapping past the last
// frame resets it and deactivates the toon if its class does not loop.
func (e *Engine) Advance(h Handle, mode Mode) Result {
	t := &e.toons[h]
	w, ht := e.size(t)

	rawX, rawY := t.X+t.U, t.Y+t.V
	newX, newY := rawX, rawY
	result := Ok

	if e.opts.Edge != EdgeNone {
		clamped := false
		if newX < 0 {
			newX, clamped = 0, true
		} else if newX+w > e.width {
			newX, clamped = e.width-w, true
		}
		if newY < 0 && e.opts.Edge != EdgeSideBottom {
			newY, clamped = 0, true
		} else if newY+ht > e.height {
			newY, clamped = e.height-ht, true
		}
		if clamped {
			result = PartialMove
			if newX == t.X && newY == t.Y {
				result = Blocked
			}
		}
	}

	switch mode {
	case TestOnly:
		if result != Blocked && e.region.Occupied(newX, newY, w, ht) {
			result = Blocked
		}
		return result
	case Force:
		t.X, t.Y = rawX, rawY
		e.nextFrame(t)
		return result
	}

	if result == Blocked {
		return Blocked
	}
	if e.region.Occupied(newX, newY, w, ht) {
		x, y, ok := e.farthestFree(t, newX, newY, w, ht)
		if !ok {
			return Blocked
		}
		newX, newY, result = x, y, PartialMove
	}
	t.X, t.Y = newX, newY
	e.nextFrame(t)
	return result
}

// farthestFree walks from (newX, newY) back towards the toon and returns the
// first position whose w×h footprint misses the region. The toon's own
// position is not tried.
func (e *Engine) farthestFree(t *models.Toon, newX, newY, w, h int) (int, int, bool) {
	u, v := newX-t.X, newY-t.Y
	if u == 0 && v == 0 {
		return 0, 0, false
	}
	if abs(v) < abs(u) {
		step := 1
		if newX > t.X {
			step = -1
		}
		for x := newX + step; x != t.X; x += step {
			y := t.Y + (x-t.X)*v/u
			if !e.region.Occupied(x, y, w, h) {
				return x, y, true
			}
		}
		return 0, 0, false
	}
	step := 1
	if newY > t.Y {
		step = -1
	}
	for y := newY + step; y != t.Y; y += step {
		x := t.X + (y-t.Y)*u/v
		if !e.region.Occupied(x, y, w, h) {
			return x, y, true
		}
	}
	return 0, 0, false
}

func (e *Engine) nextFrame(t *models.Toon) {
	c := e.classes[t.Type]
	t.Frame++
	if t.Frame >= c.Frames {
		t.Frame = 0
		if !c.Loop {
			t.Active = false
		}
	}
}

// Blocked probes the one pixel strip just outside toon h on side d, or the
// toon's own footprint for models.Here. With edge blocking, a toon already
// at the matching display edge is blocked too.
func (e *Engine) Blocked(h Handle, d models.Direction) Contact {
	t := &e.toons[h]
	w, ht := e.size(t)

	var probe models.Rect
	switch d {
	case models.Here:
		probe = models.Rect{X: t.X, Y: t.Y, W: w, H: ht}
	case models.Left:
		probe = models.Rect{X: t.X - 1, Y: t.Y, W: 1, H: ht}
	case models.Right:
		probe = models.Rect{X: t.X + w, Y: t.Y, W: 1, H: ht}
	case models.Up:
		probe = models.Rect{X: t.X, Y: t.Y - 1, W: w, H: 1}
	case models.Down:
		probe = models.Rect{X: t.X, Y: t.Y + ht, W: w, H: 1}
	default:
		return OutOfRange
	}

	if e.opts.Edge != EdgeNone {
		atEdge := false
		switch d {
		case models.Left:
			atEdge = t.X <= 0
		case models.Right:
			atEdge = t.X+w >= e.width
		case models.Up:
			atEdge = t.Y <= 0 && e.opts.Edge != EdgeSideBottom
		case models.Down:
			atEdge = t.Y+ht >= e.height
		}
		if atEdge {
			return Touching
		}
	}
	if e.region.Intersects(probe) {
		return Touching
	}
	return Clear
}

// IsBlocked is Blocked reduced to a bool.
func (e *Engine) IsBlocked(h Handle, d models.Direction) bool {
	return e.Blocked(h, d) == Touching
}

// OffsetBlocked reports whether toon h would overlap a window, or with edge
// blocking leave the display, if it were moved by (dx, dy).
func (e *Engine) OffsetBlocked(h Handle, dx, dy int) bool {
	t := &e.toons[h]
	w, ht := e.size(t)
	x, y := t.X+dx, t.Y+dy

	if e.opts.Edge != EdgeNone {
		if x < 0 || x+w > e.width || y+ht > e.height {
			return true
		}
		if y < 0 && e.opts.Edge != EdgeSideBottom {
			return true
		}
	}
	return e.region.Occupied(x, y, w, ht)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
