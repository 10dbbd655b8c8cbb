// Package x11 connects the scanner and the renderer to a real X server.
package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"

	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/scanner"
)

var (
	ErrNoDisplay   = errors.New("DISPLAY environment variable not set")
	ErrOpenDisplay = errors.New("can't open display")
)

var (
	_ scanner.Backend        = (*Display)(nil)
	_ scanner.ChangeNotifier = (*Display)(nil)
)

// Display is an open X connection watching the root window's children.
type Display struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
	// shaped is false when the server lacks the SHAPE extension.
	shaped bool
	log    *slog.Logger
}

// Open connects to name, or to $DISPLAY when name is empty, and subscribes
// to structure changes of top-level windows.
func Open(name string, log *slog.Logger) (*Display, error) {
	if name == "" && os.Getenv("DISPLAY") == "" {
		return nil, ErrNoDisplay
	}
	conn, err := xgb.NewConnDisplay(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrOpenDisplay, name, err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	d := &Display{
		conn:   conn,
		screen: screen,
		root:   screen.Root,
		shaped: true,
		log:    log,
	}

	if err := shape.Init(conn); err != nil {
		log.Warn("shape extension unavailable, treating all windows as rectangles", "error", err)
		d.shaped = false
	}

	err = xproto.ChangeWindowAttributesChecked(conn, d.root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureNotify}).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("select root events: %w", err)
	}
	log.Debug("display open", "display", name, "width", screen.WidthInPixels, "height", screen.HeightInPixels, "shape", d.shaped)
	return d, nil
}

func (d *Display) Close() { d.conn.Close() }

func (d *Display) DisplaySize() (int, int) {
	return int(d.screen.WidthInPixels), int(d.screen.HeightInPixels)
}

// Children lists the root's children bottom to top.
func (d *Display) Children() ([]models.WindowID, error) {
	tree, err := xproto.QueryTree(d.conn, d.root).Reply()
	if err != nil {
		return nil, err
	}
	ids := make([]models.WindowID, len(tree.Children))
	for i, w := range tree.Children {
		ids[i] = models.WindowID(w)
	}
	return ids, nil
}

func (d *Display) Attributes(id models.WindowID) (scanner.Attributes, error) {
	w := xproto.Window(id)
	attrCookie := xproto.GetWindowAttributes(d.conn, w)
	geomCookie := xproto.GetGeometry(d.conn, xproto.Drawable(w))

	attr, err := attrCookie.Reply()
	if err != nil {
		return scanner.Attributes{}, err
	}
	geom, err := geomCookie.Reply()
	if err != nil {
		return scanner.Attributes{}, err
	}
	return scanner.Attributes{
		X:                int(geom.X),
		Y:                int(geom.Y),
		Width:            int(geom.Width),
		Height:           int(geom.Height),
		BorderWidth:      int(geom.BorderWidth),
		Viewable:         attr.MapState == xproto.MapStateViewable,
		SaveUnder:        attr.SaveUnder,
		OverrideRedirect: attr.OverrideRedirect,
	}, nil
}

// ShapeRectangles returns the bounding shape relative to the outer corner.
// X reports it relative to the inside of the border.
func (d *Display) ShapeRectangles(id models.WindowID) ([]models.Rect, error) {
	w := xproto.Window(id)
	geom, err := xproto.GetGeometry(d.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return nil, err
	}
	bw := int(geom.BorderWidth)
	if !d.shaped {
		return []models.Rect{{W: int(geom.Width) + 2*bw, H: int(geom.Height) + 2*bw}}, nil
	}

	reply, err := shape.GetRectangles(d.conn, w, shape.SkBounding).Reply()
	if err != nil {
		return nil, err
	}
	rects := make([]models.Rect, len(reply.Rectangles))
	for i, r := range reply.Rectangles {
		rects[i] = models.Rect{X: int(r.X) + bw, Y: int(r.Y) + bw, W: int(r.Width), H: int(r.Height)}
	}
	return rects, nil
}

// WindowsChanged drains the event queue and reports whether any top-level
// window was created, destroyed, moved, resized, mapped or unmapped.
func (d *Display) WindowsChanged() (bool, error) {
	changed := false
	for {
		ev, xerr := d.conn.PollForEvent()
		if ev == nil && xerr == nil {
			return changed, nil
		}
		if xerr != nil {
			// usually a window destroyed under a pending request
			d.log.Debug("x error", "error", xerr)
			continue
		}
		if structural(ev) {
			changed = true
		}
	}
}

func structural(ev xgb.Event) bool {
	switch ev.(type) {
	case xproto.ConfigureNotifyEvent, xproto.MapNotifyEvent, xproto.UnmapNotifyEvent,
		xproto.CreateNotifyEvent, xproto.DestroyNotifyEvent, xproto.ReparentNotifyEvent,
		xproto.CirculateNotifyEvent:
		return true
	}
	return false
}
