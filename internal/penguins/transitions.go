package penguins

import (
	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
)

// Each transition changes class, velocity and association in one call, so a
// toon is never seen with a new class and an old velocity.

// spawn drops toon h in at a random column, just above the display.
func (c *Colony) spawn(h engine.Handle) {
	faller := c.eng.Class(c.roles.faller)
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.faller,
		Direction: models.Left,
		Gravity:   engine.Anchor,
		U:         c.rnd.IntN(2)*2 - 1,
		V:         3,
		Assoc:     models.Unassociated,
	})
	w, _ := c.eng.DisplaySize()
	x := 0
	if span := w - faller.Width; span > 0 {
		x = c.rnd.IntN(span)
	}
	c.eng.SetPosition(h, x, 1-faller.Height)
	c.mem[h] = memory{prefd: models.Here}
}

func (c *Colony) makeWalker(h engine.Handle) {
	d := c.eng.Toon(h).Direction
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.walker,
		Direction: d,
		Gravity:   models.Down,
		U:         4 * d.Sign(),
		Assoc:     models.RidingDown,
	})
}

func (c *Colony) makeFaller(h engine.Handle) {
	d := c.eng.Toon(h).Direction
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.faller,
		Direction: models.Left,
		Gravity:   models.Down,
		U:         d.Sign(),
		V:         3,
		Assoc:     models.Unassociated,
	})
}

// makeClimber grabs the wall on the side the toon is facing.
func (c *Colony) makeClimber(h engine.Handle) {
	d := c.eng.Toon(h).Direction
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.climber,
		Direction: d,
		Gravity:   models.Down,
		V:         -4,
		Assoc:     models.Riding(d),
	})
}

func (c *Colony) makeFloater(h engine.Handle) {
	u := c.eng.Toon(h).U
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.floater,
		Direction: models.Left,
		Gravity:   models.Down,
		U:         c.rnd.IntN(5) * (-u / 4),
		V:         -3,
		Assoc:     models.Unassociated,
	})
}

func (c *Colony) makeTumbler(h engine.Handle) {
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.tumbler,
		Direction: models.Left,
		Gravity:   models.Down,
		V:         1,
		Assoc:     models.Unassociated,
	})
}

func (c *Colony) explode(h engine.Handle) {
	c.eng.Apply(h, engine.Transition{
		Class:     c.roles.explosion,
		Direction: models.Left,
		Gravity:   models.Here,
		Assoc:     models.Unassociated,
	})
}
