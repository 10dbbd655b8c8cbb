package engine

import (
	"fmt"

	"github.com/tatianab/toons/internal/models"
)

// Sprite is the read-only view of one toon handed to a Renderer.
type Sprite struct {
	Handle Handle
	Class  models.SpriteClass
	Type   int
	Frame  int
	Row    int
	Box    models.Rect
}

// Renderer draws toons. It never changes engine state.
type Renderer interface {
	Erase(boxes []models.Rect) error
	Draw(sprites []Sprite) error
	Flush() error
}

// Sprites returns the active toons in pool order.
func (e *Engine) Sprites() []Sprite {
	out := make([]Sprite, 0, len(e.toons))
	for i := range e.toons {
		t := &e.toons[i]
		if !t.Active {
			continue
		}
		c := e.classes[t.Type]
		out = append(out, Sprite{
			Handle: Handle(i),
			Class:  c,
			Type:   t.Type,
			Frame:  t.Frame,
			Row:    c.Row(t.Direction),
			Box:    models.Rect{X: t.X, Y: t.Y, W: c.Width, H: c.Height},
		})
	}
	return out
}

// Render erases every box drawn last time, then draws every active toon and
// flushes. Erasing everything first avoids flicker without double buffering.
func (e *Engine) Render(r Renderer) error {
	if err := r.Erase(e.drawnBoxes()); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	sprites := e.Sprites()
	if err := r.Draw(sprites); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	for i := range e.toons {
		e.toons[i].Drawn = models.Rect{}
	}
	for _, s := range sprites {
		e.toons[s.Handle].Drawn = s.Box
	}
	return r.Flush()
}

// EraseAll removes every drawn toon from the screen.
func (e *Engine) EraseAll(r Renderer) error {
	if err := r.Erase(e.drawnBoxes()); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	for i := range e.toons {
		e.toons[i].Drawn = models.Rect{}
	}
	return r.Flush()
}

func (e *Engine) drawnBoxes() []models.Rect {
	boxes := make([]models.Rect, 0, len(e.toons))
	for i := range e.toons {
		if b := e.toons[i].Drawn; !b.Empty() {
			boxes = append(boxes, b)
		}
	}
	return boxes
}
