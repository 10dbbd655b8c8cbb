package engine

import "github.com/tatianab/toons/internal/models"

// Anchor keeps the top-left corner fixed when a toon changes class.
const Anchor models.Direction = -2

// Transition is a class change applied as one unit: sprite class, facing,
// velocity and association always change together.
type Transition struct {
	Class     int
	Direction models.Direction
	// Gravity is the side kept in place when the new class has another size.
	Gravity models.Direction
	U, V    int
	Assoc   models.Association
}

// Apply performs tr on toon h and activates it.
func (e *Engine) Apply(h Handle, tr Transition) {
	e.SetType(h, tr.Class, tr.Direction, tr.Gravity)
	e.SetVelocity(h, tr.U, tr.V)
	e.SetAssociation(h, tr.Assoc)
}

// SetType switches toon h to class, resets its animation and activates it.
// When the sizes differ the toon is shifted so that the gravity side stays
// put: Here keeps the centre, Down the bottom centre, Up the top centre,
// Left the left middle and Right the right middle.
func (e *Engine) SetType(h Handle, class int, d models.Direction, gravity models.Direction) {
	t := &e.toons[h]
	old, next := e.classes[t.Type], e.classes[class]
	dw, dh := old.Width-next.Width, old.Height-next.Height

	switch gravity {
	case models.Here:
		t.X += dw / 2
		t.Y += dh / 2
	case models.Down:
		t.X += dw / 2
		t.Y += dh
	case models.Up:
		t.X += dw / 2
	case models.Left:
		t.Y += dh / 2
	case models.Right:
		t.X += dw
		t.Y += dh / 2
	}
	t.Type = class
	t.Direction = d
	t.Frame = 0
	t.Active = true
}

func (e *Engine) SetVelocity(h Handle, u, v int) {
	e.toons[h].U, e.toons[h].V = u, v
}

func (e *Engine) SetPosition(h Handle, x, y int) {
	e.toons[h].X, e.toons[h].Y = x, y
}

// Move shifts toon h without any collision checks.
func (e *Engine) Move(h Handle, dx, dy int) {
	e.toons[h].X += dx
	e.toons[h].Y += dy
}

// SetAssociation sets the side on which toon h rides a window. The window
// itself is found by the next CalculateAssociations.
func (e *Engine) SetAssociation(h Handle, a models.Association) {
	t := &e.toons[h]
	t.Assoc = a
	if a == models.Unassociated {
		t.Window = 0
	}
}

// Deactivate frees the slot for reuse.
func (e *Engine) Deactivate(h Handle) {
	t := &e.toons[h]
	t.Active = false
	t.Assoc = models.Unassociated
	t.Window = 0
}
