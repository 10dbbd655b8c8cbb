package models

import "fmt"

// Rect is an axis-aligned rectangle in screen pixels. X, Y is the top-left corner.
type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Area returns the number of pixels covered.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Intersects reports whether the two rectangles share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	if !r.Intersects(o) {
		return Rect{}
	}
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether pixel (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// WindowID identifies a top-level window. It is stable across scans; 0 means no window.
type WindowID uint32

// WindowRecord is one row of the window table produced by a scan.
type WindowRecord struct {
	ID    WindowID
	Solid bool
	Rect  Rect // border inclusive
}

// Direction is used both for animation orientation and for movement intent.
type Direction int

const (
	Here  Direction = -1 // the toon's own footprint
	Left  Direction = 0
	Right Direction = 1
	Up    Direction = 2
	Down  Direction = 3
)

func (d Direction) String() string {
	switch d {
	case Here:
		return "here"
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Opposite returns the reverse horizontal or vertical direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	case Down:
		return Up
	}
	return d
}

// Sign is -1 for Left/Up, +1 for Right/Down and 0 otherwise.
func (d Direction) Sign() int {
	switch d {
	case Left, Up:
		return -1
	case Right, Down:
		return 1
	}
	return 0
}

// Association says which side of the toon a window it is riding on lies.
type Association int

const (
	Unassociated Association = iota
	RidingLeft
	RidingRight
	RidingUp
	RidingDown
)

// Riding returns the association for a window lying in direction d.
func Riding(d Direction) Association {
	switch d {
	case Left:
		return RidingLeft
	case Right:
		return RidingRight
	case Up:
		return RidingUp
	case Down:
		return RidingDown
	}
	return Unassociated
}

func (a Association) String() string {
	switch a {
	case Unassociated:
		return "unassociated"
	case RidingLeft:
		return "riding-left"
	case RidingRight:
		return "riding-right"
	case RidingUp:
		return "riding-up"
	case RidingDown:
		return "riding-down"
	}
	return fmt.Sprintf("association(%d)", int(a))
}

// SpriteClass describes a sprite sheet: Frames columns by Directions rows of W×H cells.
type SpriteClass struct {
	Name       string `yaml:"name"`
	Frames     int    `yaml:"frames"`
	Directions int    `yaml:"directions"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	// Loop is false for classes that deactivate the toon after their last frame.
	Loop  bool   `yaml:"loop"`
	Color string `yaml:"color"` // "#rrggbb", used instead of pixel data when drawing
}

// Row returns the sheet row used for direction d.
func (c SpriteClass) Row(d Direction) int {
	row := int(d)
	if row < 0 || row >= c.Directions {
		return 0
	}
	return row
}

// Toon is one animated creature. Toons live in a fixed pool owned by the engine.
type Toon struct {
	X, Y      int // top-left of the current frame
	U, V      int // velocity in pixels per tick
	Type      int // index into the sprite class table
	Frame     int
	Direction Direction
	Active    bool

	// Drawn is the box rendered on the previous tick, erased before the next draw.
	Drawn Rect

	Assoc            Association
	Window           WindowID
	XOffset, YOffset int // position relative to Window's origin when associated
}
