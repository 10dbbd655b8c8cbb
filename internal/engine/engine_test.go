package engine

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/tatianab/toons/internal/desktop"
	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/scanner"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var testClasses = []models.SpriteClass{
	{Name: "walker", Frames: 2, Directions: 2, Width: 30, Height: 30, Loop: true},
	{Name: "big", Frames: 1, Directions: 1, Width: 50, Height: 40, Loop: true},
	{Name: "bomber", Frames: 3, Directions: 1, Width: 30, Height: 30},
}

const (
	walker = 0
	big    = 1
	bomber = 2
)

func newTestEngine(t *testing.T, d *desktop.Desktop, opts Options) *Engine {
	t.Helper()
	sc := scanner.New(d, scanner.Options{SolidPopups: true, ShapedWindows: true}, quiet)
	e, err := New(sc, testClasses, 4, opts, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func place(e *Engine, h Handle, x, y, u, v int) *models.Toon {
	e.Apply(h, Transition{Class: walker, Direction: models.Right, Gravity: Anchor, U: u, V: v})
	e.SetPosition(h, x, y)
	return e.Toon(h)
}

func TestNew(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 10, Y: 10, W: 10, H: 10})
	e := newTestEngine(t, d, Options{})

	if w, h := e.DisplaySize(); w != 640 || h != 480 {
		t.Errorf("DisplaySize = %dx%d", w, h)
	}
	if e.Len() != 4 {
		t.Errorf("Len = %d", e.Len())
	}
	if !e.Region().Contains(15, 15) {
		t.Errorf("New should perform the first scan")
	}
	for i := 0; i < e.Len(); i++ {
		if e.Toon(Handle(i)).Active {
			t.Errorf("pool slots should start inactive")
		}
	}

	sc := scanner.New(d, scanner.Options{}, quiet)
	if _, err := New(sc, nil, 1, Options{}, quiet); err == nil {
		t.Errorf("New without classes should fail")
	}
	d.Disconnect()
	if _, err := New(sc, testClasses, 1, Options{}, quiet); !errors.Is(err, scanner.ErrConnection) {
		t.Errorf("New on a dead connection = %v", err)
	}
}

func TestAdvanceFreeSpace(t *testing.T) {
	e := newTestEngine(t, desktop.New(640, 480), Options{Edge: EdgeBoth})
	toon := place(e, 0, 100, 100, 4, -2)

	if r := e.Advance(0, Move); r != Ok {
		t.Fatalf("Advance = %v, want ok", r)
	}
	if toon.X != 104 || toon.Y != 98 {
		t.Errorf("position = (%d,%d), want (104,98)", toon.X, toon.Y)
	}
	if toon.Frame != 1 {
		t.Errorf("frame = %d, want 1", toon.Frame)
	}
	e.Advance(0, Move)
	if toon.Frame != 0 || !toon.Active {
		t.Errorf("looping class should wrap to frame 0 and stay active")
	}

	// standing still in free space is not a collision
	place(e, 1, 300, 300, 0, 0)
	if r := e.Advance(1, Move); r != Ok {
		t.Errorf("zero velocity in free space = %v, want ok", r)
	}
}

func TestAdvanceEdgeClamp(t *testing.T) {
	tests := []struct {
		name       string
		edge       EdgeMode
		x, y, u, v int
		want       Result
		wx, wy     int
	}{
		{"clamp left", EdgeBoth, 3, 50, -5, 0, PartialMove, 0, 50},
		{"at left edge", EdgeBoth, 0, 50, -5, 0, Blocked, 0, 50},
		{"clamp right", EdgeBoth, 605, 50, 10, 0, PartialMove, 610, 50},
		{"clamp top", EdgeBoth, 50, 2, 1, -5, PartialMove, 51, 0},
		{"top open in side-bottom mode", EdgeSideBottom, 50, 2, 1, -5, Ok, 51, -3},
		{"clamp bottom", EdgeSideBottom, 50, 448, 1, 5, PartialMove, 51, 450},
		{"at bottom edge", EdgeSideBottom, 50, 450, 0, 3, Blocked, 50, 450},
		{"no edges", EdgeNone, 3, 50, -5, 0, Ok, -2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, desktop.New(640, 480), Options{Edge: tt.edge})
			toon := place(e, 0, tt.x, tt.y, tt.u, tt.v)
			if r := e.Advance(0, Move); r != tt.want {
				t.Errorf("Advance = %v, want %v", r, tt.want)
			}
			if toon.X != tt.wx || toon.Y != tt.wy {
				t.Errorf("position = (%d,%d), want (%d,%d)", toon.X, toon.Y, tt.wx, tt.wy)
			}
		})
	}
}

func TestAdvanceStaysOnDisplay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, edge := range []EdgeMode{EdgeBoth, EdgeSideBottom} {
		e := newTestEngine(t, desktop.New(320, 240), Options{Edge: edge})
		toon := place(e, 0, 100, 100, 0, 0)
		for i := 0; i < 2000; i++ {
			e.SetVelocity(0, rng.Intn(61)-30, rng.Intn(61)-30)
			e.Advance(0, Move)
			if toon.X < 0 || toon.X > 320-30 || toon.Y > 240-30 {
				t.Fatalf("%v: toon escaped to (%d,%d)", edge, toon.X, toon.Y)
			}
			if edge == EdgeBoth && toon.Y < 0 {
				t.Fatalf("%v: toon escaped through the top to y=%d", edge, toon.Y)
			}
			if toon.Y < -100 {
				e.SetPosition(0, toon.X, 100)
			}
		}
	}
}

func TestAdvanceTestOnlyNeverMutates(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 100, Y: 100, W: 200, H: 50})
	tests := []struct {
		name       string
		edge       EdgeMode
		x, y, u, v int
		want       Result
	}{
		{"free", EdgeBoth, 10, 10, 5, 5, Ok},
		{"into window", EdgeNone, 150, 65, 0, 10, Blocked},
		{"clamped", EdgeBoth, 2, 10, -5, 0, PartialMove},
		{"edge blocked", EdgeBoth, 0, 10, -5, 0, Blocked},
		{"inside window", EdgeNone, 150, 110, 1, 1, Blocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, d, Options{Edge: tt.edge})
			toon := place(e, 0, tt.x, tt.y, tt.u, tt.v)
			before := *toon
			if r := e.Advance(0, TestOnly); r != tt.want {
				t.Errorf("Advance(TestOnly) = %v, want %v", r, tt.want)
			}
			if *toon != before {
				t.Errorf("TestOnly changed the toon: %+v -> %+v", before, *toon)
			}
		})
	}
}

func TestAdvancePartialDiagonal(t *testing.T) {
	d := desktop.New(640, 480)
	// anything with a right edge beyond 114 hits the obstacle
	d.Add(desktop.Window{X: 114, Y: 0, W: 100, H: 400})
	e := newTestEngine(t, d, Options{Edge: EdgeBoth})
	toon := place(e, 0, 80, 100, 10, 2)

	if r := e.Advance(0, Move); r != PartialMove {
		t.Fatalf("Advance = %v, want partial", r)
	}
	// x=84 is the farthest clear column; y = 100 + 4*2/10 truncated
	if toon.X != 84 || toon.Y != 100 {
		t.Errorf("position = (%d,%d), want (84,100)", toon.X, toon.Y)
	}
}

func TestAdvancePartialSteep(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 0, Y: 200, W: 640, H: 50})
	e := newTestEngine(t, d, Options{})
	// falling down-left, v dominates: bottom must stop at 200
	toon := place(e, 0, 100, 160, -3, 20)

	if r := e.Advance(0, Move); r != PartialMove {
		t.Fatalf("Advance = %v, want partial", r)
	}
	// y=170, x = 100 + 10*(-3)/20 = 100 - 1 (truncated toward zero)
	if toon.Y != 170 || toon.X != 99 {
		t.Errorf("position = (%d,%d), want (99,170)", toon.X, toon.Y)
	}
	if !e.IsBlocked(0, models.Down) {
		t.Errorf("toon should now stand on the window")
	}
}

func TestAdvanceBlockedByWindow(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 100, Y: 100, W: 200, H: 50})
	e := newTestEngine(t, d, Options{Edge: EdgeSideBottom})
	toon := place(e, 0, 150, 70, 0, 3)

	if r := e.Advance(0, Move); r != Blocked {
		t.Fatalf("Advance = %v, want blocked", r)
	}
	if toon.X != 150 || toon.Y != 70 || toon.Frame != 0 {
		t.Errorf("blocked toon moved or animated: %+v", *toon)
	}
}

func TestAdvanceForce(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 100, Y: 100, W: 200, H: 50})
	e := newTestEngine(t, d, Options{Edge: EdgeBoth})
	toon := place(e, 0, 150, 70, 0, 20)

	e.Advance(0, Force)
	if toon.Y != 90 {
		t.Errorf("Force should ignore windows, y = %d", toon.Y)
	}
	e.SetVelocity(0, -200, 0)
	e.Advance(0, Force)
	if toon.X != -50 {
		t.Errorf("Force should ignore edges, x = %d", toon.X)
	}

	e.Apply(1, Transition{Class: bomber, Gravity: Anchor})
	for i := 0; i < 2; i++ {
		e.Advance(1, Force)
		if !e.Toon(1).Active {
			t.Fatalf("bomber deactivated after %d frames", i+1)
		}
	}
	e.Advance(1, Force)
	if e.Toon(1).Active {
		t.Errorf("non-looping class should deactivate after its last frame")
	}
}

func TestBlocked(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 100, Y: 100, W: 200, H: 50})
	e := newTestEngine(t, d, Options{Edge: EdgeNone})
	place(e, 0, 150, 95, 0, 0)

	tests := []struct {
		d    models.Direction
		want Contact
	}{
		{models.Down, Touching}, // strip at y=125 lies inside the window
		{models.Here, Touching},
		{models.Up, Clear},
		{models.Left, Touching},
		{models.Right, Touching},
		{models.Direction(9), OutOfRange},
	}
	for _, tt := range tests {
		if got := e.Blocked(0, tt.d); got != tt.want {
			t.Errorf("Blocked(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}

	place(e, 1, 0, 10, 0, 0)
	if e.IsBlocked(1, models.Left) {
		t.Errorf("screen edge should not block with edge blocking off")
	}
	e.Reconfigure(Options{Edge: EdgeBoth}, scanner.Options{})
	if !e.IsBlocked(1, models.Left) {
		t.Errorf("screen edge should block with edge blocking on")
	}
	e.SetPosition(1, 10, 0)
	if !e.IsBlocked(1, models.Up) {
		t.Errorf("top edge should block in both mode")
	}
	e.Reconfigure(Options{Edge: EdgeSideBottom}, scanner.Options{})
	if e.IsBlocked(1, models.Up) {
		t.Errorf("top edge should not block in side-bottom mode")
	}
}

func TestOffsetBlocked(t *testing.T) {
	d := desktop.New(640, 480)
	d.Add(desktop.Window{X: 100, Y: 100, W: 200, H: 50})
	e := newTestEngine(t, d, Options{Edge: EdgeSideBottom})
	place(e, 0, 150, 70, 0, 0)

	tests := []struct {
		dx, dy int
		want   bool
	}{
		{0, 0, false},
		{0, 1, true},
		{200, 0, false},
		{0, -100, false}, // off the top is allowed in side-bottom mode
		{-151, 0, true},
		{500, 0, true},
		{0, 400, true},
	}
	for _, tt := range tests {
		if got := e.OffsetBlocked(0, tt.dx, tt.dy); got != tt.want {
			t.Errorf("OffsetBlocked(%d,%d) = %v, want %v", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestSetTypeGravity(t *testing.T) {
	tests := []struct {
		gravity models.Direction
		wx, wy  int
	}{
		{models.Here, 90, 95},
		{models.Down, 90, 90},
		{models.Up, 90, 100},
		{models.Left, 100, 95},
		{models.Right, 80, 95},
		{Anchor, 100, 100},
	}
	for _, tt := range tests {
		e := newTestEngine(t, desktop.New(640, 480), Options{})
		toon := place(e, 0, 100, 100, 0, 0)
		toon.Frame = 1
		e.SetType(0, big, models.Left, tt.gravity)
		if toon.X != tt.wx || toon.Y != tt.wy {
			t.Errorf("gravity %v: position = (%d,%d), want (%d,%d)", tt.gravity, toon.X, toon.Y, tt.wx, tt.wy)
		}
		if toon.Type != big || toon.Frame != 0 || !toon.Active || toon.Direction != models.Left {
			t.Errorf("gravity %v: SetType left %+v", tt.gravity, *toon)
		}
	}
}

type recorder struct {
	calls  []string
	erased []models.Rect
	drawn  []Sprite
}

func (r *recorder) Erase(boxes []models.Rect) error {
	r.calls = append(r.calls, "erase")
	r.erased = boxes
	return nil
}

func (r *recorder) Draw(sprites []Sprite) error {
	r.calls = append(r.calls, "draw")
	r.drawn = sprites
	return nil
}

func (r *recorder) Flush() error {
	r.calls = append(r.calls, "flush")
	return nil
}

func TestRender(t *testing.T) {
	e := newTestEngine(t, desktop.New(640, 480), Options{})
	place(e, 0, 10, 20, 0, 0)
	place(e, 2, 100, 200, 0, 0)
	r := &recorder{}

	if err := e.Render(r); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 3 || r.calls[0] != "erase" || r.calls[1] != "draw" || r.calls[2] != "flush" {
		t.Errorf("calls = %v", r.calls)
	}
	if len(r.erased) != 0 || len(r.drawn) != 2 {
		t.Fatalf("first render erased %d and drew %d", len(r.erased), len(r.drawn))
	}
	if r.drawn[0].Row != 1 {
		t.Errorf("right-facing walker should use row 1, got %d", r.drawn[0].Row)
	}

	// the box drawn for the old class is erased even after a class change
	e.SetType(0, big, models.Left, Anchor)
	e.Deactivate(2)
	if err := e.Render(r); err != nil {
		t.Fatal(err)
	}
	if len(r.erased) != 2 || r.erased[0] != (models.Rect{X: 10, Y: 20, W: 30, H: 30}) {
		t.Errorf("erased = %v", r.erased)
	}
	if len(r.drawn) != 1 || r.drawn[0].Box != (models.Rect{X: 10, Y: 20, W: 50, H: 40}) {
		t.Errorf("drawn = %v", r.drawn)
	}
	if !e.Toon(2).Drawn.Empty() {
		t.Errorf("inactive toon should have nothing left on screen")
	}

	if err := e.EraseAll(r); err != nil {
		t.Fatal(err)
	}
	if len(r.erased) != 1 || !e.Toon(0).Drawn.Empty() {
		t.Errorf("EraseAll erased %v", r.erased)
	}
}
