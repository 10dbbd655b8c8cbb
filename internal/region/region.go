// Package region holds the occlusion region: the screen area covered by
// solid windows, kept as a set of non-overlapping rectangles.
package region

import "github.com/tatianab/toons/internal/models"

// Region is an immutable union of rectangles. The stored rectangles never
// overlap, so their areas add up to the area of the union. A Region is built
// once per scan and replaced wholesale; it is never patched in place.
type Region struct {
	rects []models.Rect
	area  int
}

// Empty is the region covering nothing.
var Empty = &Region{}

// Builder accumulates rectangles for a new Region.
type Builder struct {
	rects []models.Rect
}

// Union adds r to the region under construction. Only the parts of r not
// already covered are stored.
func (b *Builder) Union(r models.Rect) {
	if r.Empty() {
		return
	}
	pieces := []models.Rect{r}
	for _, have := range b.rects {
		if len(pieces) == 0 {
			return
		}
		next := pieces[:0:0]
		for _, p := range pieces {
			next = append(next, subtract(p, have)...)
		}
		pieces = next
	}
	b.rects = append(b.rects, pieces...)
}

// Build returns the finished Region. The builder may keep being used.
func (b *Builder) Build() *Region {
	reg := &Region{rects: make([]models.Rect, len(b.rects))}
	copy(reg.rects, b.rects)
	for _, r := range reg.rects {
		reg.area += r.Area()
	}
	return reg
}

// New builds a region from rects.
func New(rects ...models.Rect) *Region {
	var b Builder
	for _, r := range rects {
		b.Union(r)
	}
	return b.Build()
}

// subtract returns p minus cut as at most four non-overlapping pieces:
// a full-width band above, a full-width band below, then left and right
// pieces of the middle band.
func subtract(p, cut models.Rect) []models.Rect {
	if !p.Intersects(cut) {
		return []models.Rect{p}
	}
	in := p.Intersect(cut)
	out := make([]models.Rect, 0, 4)
	if in.Y > p.Y {
		out = append(out, models.Rect{X: p.X, Y: p.Y, W: p.W, H: in.Y - p.Y})
	}
	if in.Bottom() < p.Bottom() {
		out = append(out, models.Rect{X: p.X, Y: in.Bottom(), W: p.W, H: p.Bottom() - in.Bottom()})
	}
	if in.X > p.X {
		out = append(out, models.Rect{X: p.X, Y: in.Y, W: in.X - p.X, H: in.H})
	}
	if in.Right() < p.Right() {
		out = append(out, models.Rect{X: in.Right(), Y: in.Y, W: p.Right() - in.Right(), H: in.H})
	}
	return out
}

// Occupied reports whether the w×h box at (x, y) touches the region at all.
func (reg *Region) Occupied(x, y, w, h int) bool {
	return reg.Intersects(models.Rect{X: x, Y: y, W: w, H: h})
}

// Intersects reports whether r shares any pixel with the region.
func (reg *Region) Intersects(r models.Rect) bool {
	for _, have := range reg.rects {
		if have.Intersects(r) {
			return true
		}
	}
	return false
}

// Contains reports whether pixel (x, y) is covered.
func (reg *Region) Contains(x, y int) bool {
	for _, have := range reg.rects {
		if have.Contains(x, y) {
			return true
		}
	}
	return false
}

// Rects returns a copy of the stored rectangles.
func (reg *Region) Rects() []models.Rect {
	out := make([]models.Rect, len(reg.rects))
	copy(out, reg.rects)
	return out
}

// Len returns the number of stored rectangles.
func (reg *Region) Len() int { return len(reg.rects) }

// Area returns the number of covered pixels.
func (reg *Region) Area() int { return reg.area }

// Equal reports whether both regions cover exactly the same pixels,
// regardless of how each one happens to be split into rectangles.
func (reg *Region) Equal(o *Region) bool {
	if reg.area != o.area {
		return false
	}
	overlap := 0
	for _, a := range reg.rects {
		for _, b := range o.rects {
			overlap += a.Intersect(b).Area()
		}
	}
	return overlap == reg.area
}

// Bounds returns the smallest rectangle enclosing the region.
func (reg *Region) Bounds() models.Rect {
	if len(reg.rects) == 0 {
		return models.Rect{}
	}
	x0, y0 := reg.rects[0].X, reg.rects[0].Y
	x1, y1 := reg.rects[0].Right(), reg.rects[0].Bottom()
	for _, r := range reg.rects[1:] {
		x0, y0 = min(x0, r.X), min(y0, r.Y)
		x1, y1 = max(x1, r.Right()), max(y1, r.Bottom())
	}
	return models.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
