package x11

import (
	"fmt"
	"math"

	"github.com/jezek/xgb/xproto"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
)

var _ engine.Renderer = (*Renderer)(nil)

// Renderer paints toons straight onto the root window, below all other
// windows. Each toon is a box filled with its class colour.
type Renderer struct {
	d      *Display
	gc     xproto.Gcontext
	pixels map[string]uint32
}

func NewRenderer(d *Display) (*Renderer, error) {
	gc, err := xproto.NewGcontextId(d.conn)
	if err != nil {
		return nil, fmt.Errorf("allocate gc: %w", err)
	}
	err = xproto.CreateGCChecked(d.conn, gc, xproto.Drawable(d.root),
		xproto.GcForeground|xproto.GcGraphicsExposures,
		[]uint32{d.screen.BlackPixel, 0}).Check()
	if err != nil {
		return nil, fmt.Errorf("create gc: %w", err)
	}
	return &Renderer{d: d, gc: gc, pixels: make(map[string]uint32)}, nil
}

func (r *Renderer) Close() {
	xproto.FreeGC(r.d.conn, r.gc)
}

func (r *Renderer) Erase(boxes []models.Rect) error {
	for _, b := range boxes {
		x, ok := toRectangle(b)
		if !ok {
			continue
		}
		xproto.ClearArea(r.d.conn, false, r.d.root, x.X, x.Y, x.Width, x.Height)
	}
	return nil
}

func (r *Renderer) Draw(sprites []engine.Sprite) error {
	// one foreground change per colour
	byColor := make(map[string][]xproto.Rectangle)
	var order []string
	for _, s := range sprites {
		x, ok := toRectangle(s.Box)
		if !ok {
			continue
		}
		if _, seen := byColor[s.Class.Color]; !seen {
			order = append(order, s.Class.Color)
		}
		byColor[s.Class.Color] = append(byColor[s.Class.Color], x)
	}

	for _, c := range order {
		pixel, err := r.pixel(c)
		if err != nil {
			return err
		}
		xproto.ChangeGC(r.d.conn, r.gc, xproto.GcForeground, []uint32{pixel})
		xproto.PolyFillRectangle(r.d.conn, xproto.Drawable(r.d.root), r.gc, byColor[c])
	}
	return nil
}

// Flush waits for the server to process everything sent so far. A failed
// round trip means the connection is gone.
func (r *Renderer) Flush() error {
	if _, err := xproto.GetInputFocus(r.d.conn).Reply(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (r *Renderer) pixel(hex string) (uint32, error) {
	if hex == "" {
		return r.d.screen.BlackPixel, nil
	}
	if p, ok := r.pixels[hex]; ok {
		return p, nil
	}
	red, green, blue, err := rgb16(hex)
	if err != nil {
		return 0, err
	}
	reply, err := xproto.AllocColor(r.d.conn, r.d.screen.DefaultColormap, red, green, blue).Reply()
	if err != nil {
		return 0, fmt.Errorf("alloc colour %s: %w", hex, err)
	}
	r.pixels[hex] = reply.Pixel
	return reply.Pixel, nil
}

// rgb16 converts "#rrggbb" to X's 16 bit channels.
func rgb16(hex string) (uint16, uint16, uint16, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0, err
	}
	red, green, blue := c.RGB255()
	return uint16(red) * 0x101, uint16(green) * 0x101, uint16(blue) * 0x101, nil
}

// toRectangle clips b to the 16 bit protocol coordinate space.
func toRectangle(b models.Rect) (xproto.Rectangle, bool) {
	x0 := max(b.X, math.MinInt16)
	y0 := max(b.Y, math.MinInt16)
	x1 := min(b.Right(), math.MaxInt16)
	y1 := min(b.Bottom(), math.MaxInt16)
	if x1 <= x0 || y1 <= y0 {
		return xproto.Rectangle{}, false
	}
	return xproto.Rectangle{
		X:      int16(x0),
		Y:      int16(y0),
		Width:  uint16(x1 - x0),
		Height: uint16(y1 - y0),
	}, true
}
