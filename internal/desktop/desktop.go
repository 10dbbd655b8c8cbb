// Package desktop is an in-memory window system. It implements the scanner
// backend so toons can run without an X server, in the terminal front end
// and in tests.
package desktop

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/scanner"
)

var (
	_ scanner.Backend        = (*Desktop)(nil)
	_ scanner.ChangeNotifier = (*Desktop)(nil)
)

var (
	ErrNoWindow     = errors.New("no such window")
	ErrDisconnected = errors.New("desktop disconnected")
)

// Window is a simulated top-level window.
type Window struct {
	ID     models.WindowID `yaml:"-"`
	Title  string          `yaml:"title"`
	X      int             `yaml:"x"`
	Y      int             `yaml:"y"`
	W      int             `yaml:"w"`
	H      int             `yaml:"h"`
	Border int             `yaml:"border"`
	Hidden bool            `yaml:"hidden"`
	// Popup sets the override-redirect flag, as menus and panels do.
	Popup bool `yaml:"popup"`
	// Shape is relative to the window origin; empty means rectangular.
	Shape []models.Rect `yaml:"shape,omitempty"`
}

// Bounds returns the border-inclusive outer rectangle.
func (w Window) Bounds() models.Rect {
	return models.Rect{X: w.X, Y: w.Y, W: w.W + 2*w.Border, H: w.H + 2*w.Border}
}

// Layout is the yaml form of a desktop.
type Layout struct {
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Windows []Window `yaml:"windows"`
}

// Desktop holds windows in stacking order, bottom first.
type Desktop struct {
	width, height int
	windows       []*Window
	nextID        models.WindowID
	changed       bool
	failing       map[models.WindowID]int
	disconnected  bool
}

func New(width, height int) *Desktop {
	return &Desktop{
		width:   width,
		height:  height,
		nextID:  0x400001,
		changed: true,
		failing: make(map[models.WindowID]int),
	}
}

// FromLayout builds a desktop from a parsed layout.
func FromLayout(l Layout) (*Desktop, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("desktop layout: bad size %dx%d", l.Width, l.Height)
	}
	d := New(l.Width, l.Height)
	for _, w := range l.Windows {
		d.Add(w)
	}
	return d, nil
}

func LoadLayout(path string) (*Desktop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("desktop layout %s: %w", path, err)
	}
	return FromLayout(l)
}

// Layout returns the current desktop in its yaml form.
func (d *Desktop) Layout() Layout {
	l := Layout{Width: d.width, Height: d.height}
	for _, w := range d.windows {
		l.Windows = append(l.Windows, *w)
	}
	return l
}

// Add maps a new window on top of the stack and returns its identifier.
func (d *Desktop) Add(w Window) models.WindowID {
	w.ID = d.nextID
	d.nextID++
	d.windows = append(d.windows, &w)
	d.changed = true
	return w.ID
}

func (d *Desktop) find(id models.WindowID) (int, *Window) {
	for i, w := range d.windows {
		if w.ID == id {
			return i, w
		}
	}
	return -1, nil
}

func (d *Desktop) update(id models.WindowID, fn func(w *Window)) error {
	_, w := d.find(id)
	if w == nil {
		return fmt.Errorf("%w: %#x", ErrNoWindow, uint32(id))
	}
	fn(w)
	d.changed = true
	return nil
}

func (d *Desktop) Move(id models.WindowID, x, y int) error {
	return d.update(id, func(w *Window) { w.X, w.Y = x, y })
}

func (d *Desktop) MoveBy(id models.WindowID, dx, dy int) error {
	return d.update(id, func(w *Window) { w.X += dx; w.Y += dy })
}

func (d *Desktop) Resize(id models.WindowID, width, height int) error {
	return d.update(id, func(w *Window) { w.W, w.H = width, height })
}

func (d *Desktop) SetHidden(id models.WindowID, hidden bool) error {
	return d.update(id, func(w *Window) { w.Hidden = hidden })
}

func (d *Desktop) SetShape(id models.WindowID, shape []models.Rect) error {
	return d.update(id, func(w *Window) { w.Shape = append([]models.Rect(nil), shape...) })
}

// Raise moves the window to the top of the stacking order.
func (d *Desktop) Raise(id models.WindowID) error {
	i, w := d.find(id)
	if w == nil {
		return fmt.Errorf("%w: %#x", ErrNoWindow, uint32(id))
	}
	d.windows = append(append(d.windows[:i:i], d.windows[i+1:]...), w)
	d.changed = true
	return nil
}

func (d *Desktop) Remove(id models.WindowID) error {
	i, w := d.find(id)
	if w == nil {
		return fmt.Errorf("%w: %#x", ErrNoWindow, uint32(id))
	}
	d.windows = append(d.windows[:i], d.windows[i+1:]...)
	delete(d.failing, id)
	d.changed = true
	return nil
}

// Fail makes the next n attribute queries for id fail, as if the window had
// been destroyed mid-scan.
func (d *Desktop) Fail(id models.WindowID, n int) {
	d.failing[id] = n
}

// Disconnect makes every later enumeration fail.
func (d *Desktop) Disconnect() { d.disconnected = true }

// Window returns a copy of the window with the given identifier.
func (d *Desktop) Window(id models.WindowID) (Window, bool) {
	_, w := d.find(id)
	if w == nil {
		return Window{}, false
	}
	return *w, true
}

// Windows returns copies of all windows, bottom first.
func (d *Desktop) Windows() []Window {
	out := make([]Window, len(d.windows))
	for i, w := range d.windows {
		out[i] = *w
	}
	return out
}

// WindowAt returns the topmost viewable window containing (x, y).
func (d *Desktop) WindowAt(x, y int) (Window, bool) {
	for i := len(d.windows) - 1; i >= 0; i-- {
		w := d.windows[i]
		if !w.Hidden && w.Bounds().Contains(x, y) {
			return *w, true
		}
	}
	return Window{}, false
}

func (d *Desktop) DisplaySize() (int, int) { return d.width, d.height }

func (d *Desktop) Children() ([]models.WindowID, error) {
	if d.disconnected {
		return nil, ErrDisconnected
	}
	ids := make([]models.WindowID, len(d.windows))
	for i, w := range d.windows {
		ids[i] = w.ID
	}
	return ids, nil
}

func (d *Desktop) Attributes(id models.WindowID) (scanner.Attributes, error) {
	if n := d.failing[id]; n > 0 {
		d.failing[id] = n - 1
		return scanner.Attributes{}, fmt.Errorf("%w: %#x", ErrNoWindow, uint32(id))
	}
	_, w := d.find(id)
	if w == nil {
		return scanner.Attributes{}, fmt.Errorf("%w: %#x", ErrNoWindow, uint32(id))
	}
	return scanner.Attributes{
		X:                w.X,
		Y:                w.Y,
		Width:            w.W,
		Height:           w.H,
		BorderWidth:      w.Border,
		Viewable:         !w.Hidden,
		OverrideRedirect: w.Popup,
	}, nil
}

func (d *Desktop) ShapeRectangles(id models.WindowID) ([]models.Rect, error) {
	_, w := d.find(id)
	if w == nil {
		return nil, fmt.Errorf("%w: %#x", ErrNoWindow, uint32(id))
	}
	if len(w.Shape) == 0 {
		return []models.Rect{{W: w.W + 2*w.Border, H: w.H + 2*w.Border}}, nil
	}
	return append([]models.Rect(nil), w.Shape...), nil
}

// WindowsChanged reports and clears the change flag.
func (d *Desktop) WindowsChanged() (bool, error) {
	if d.disconnected {
		return false, ErrDisconnected
	}
	changed := d.changed
	d.changed = false
	return changed, nil
}
