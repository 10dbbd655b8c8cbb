package penguins

import (
	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
)

// update moves toon h one tick and decides what it turns into.
func (c *Colony) update(h engine.Handle) {
	e := c.eng
	t := e.Toon(h)
	if !t.Active {
		c.spawn(h)
		return
	}

	// squashed by a window
	if e.IsBlocked(h, models.Here) {
		c.explode(h)
	}

	status := e.Advance(h, engine.Move)
	switch t.Type {
	case c.roles.faller:
		c.fall(h, status)
	case c.roles.tumbler:
		c.tumble(h, status)
	case c.roles.walker:
		c.walk(h, status)
	case c.roles.climber:
		c.climb(h, status)
	case c.roles.floater:
		c.float(h, status)
	case c.roles.explosion:
		m := &c.mem[h]
		if !m.holdOn {
			m.holdOn = true
		} else {
			e.Deactivate(h)
			m.holdOn = false
		}
	}
}

func (c *Colony) fall(h engine.Handle, status engine.Result) {
	if status == engine.Ok {
		return
	}
	e := c.eng
	t := e.Toon(h)
	switch {
	case e.IsBlocked(h, models.Down):
		t.Direction = c.landing(h)
		c.makeWalker(h)
	case c.rnd.IntN(2) == 1:
		e.SetVelocity(h, -t.U, 3)
	default:
		t.Direction = facing(t.U > 0)
		c.makeClimber(h)
	}
}

func (c *Colony) tumble(h engine.Handle, status engine.Result) {
	t := c.eng.Toon(h)
	if status != engine.Ok {
		t.Direction = c.landing(h)
		c.makeWalker(h)
		return
	}
	if t.V < maxTumble {
		c.eng.SetVelocity(h, t.U, t.V+1)
	}
}

func (c *Colony) walk(h engine.Handle, status engine.Result) {
	e := c.eng
	t := e.Toon(h)
	m := &c.mem[h]

	if status != engine.Ok {
		if status != engine.Blocked {
			return
		}
		// step up onto a low obstacle
		u := t.U
		if !e.OffsetBlocked(h, u, -JumpDistance) {
			e.Move(h, u, -JumpDistance)
			e.SetVelocity(h, 0, JumpDistance-1)
			e.Advance(h, engine.Move)
			e.SetVelocity(h, u, 0)
			return
		}
		choice := c.rnd.IntN(8)
		if m.prefClimb {
			choice = 0
		}
		switch choice {
		case 0:
			c.makeClimber(h)
		case 1:
			c.makeFloater(h)
		default:
			t.Direction = t.Direction.Opposite()
			c.makeWalker(h)
		}
		return
	}

	if e.IsBlocked(h, models.Down) {
		return
	}
	// step down, or tumble off the edge
	e.SetVelocity(h, 0, JumpDistance)
	if e.Advance(h, engine.Move) == engine.Ok {
		m.prefd = t.Direction
		m.prefClimb = false
		c.makeTumbler(h)
		return
	}
	e.SetVelocity(h, 4*t.Direction.Sign(), 0)
}

func (c *Colony) climb(h engine.Handle, status engine.Result) {
	e := c.eng
	t := e.Toon(h)
	m := &c.mem[h]
	dir := t.Direction
	sign := dir.Sign()

	switch {
	case t.Y < 0:
		t.Direction = dir.Opposite()
		c.makeFaller(h)
		m.prefClimb = false

	case status == engine.Blocked:
		// step out from under an overhang
		v := t.V
		dx := -sign * JumpDistance
		if e.OffsetBlocked(h, dx, v) {
			t.Direction = dir.Opposite()
			c.makeFaller(h)
			m.prefClimb = false
			return
		}
		e.Move(h, dx, v)
		e.SetVelocity(h, -dx+sign, 0)
		e.Advance(h, engine.Move)
		e.SetVelocity(h, 0, v)

	case !e.IsBlocked(h, dir):
		// reached the top of the wall
		if e.OffsetBlocked(h, sign*JumpDistance, 0) {
			e.SetVelocity(h, sign*(JumpDistance-1), 0)
			e.Advance(h, engine.Move)
			e.SetVelocity(h, 0, -4)
			return
		}
		c.makeWalker(h)
		e.SetPosition(h, t.X+sign, t.Y)
		m.prefd = dir
		m.prefClimb = true
	}
}

func (c *Colony) float(h engine.Handle, status engine.Result) {
	e := c.eng
	t := e.Toon(h)
	switch {
	case t.Y < 0:
		t.Direction = facing(t.U > 0)
		c.makeFaller(h)
	case status == engine.Ok:
	case e.IsBlocked(h, models.Up):
		t.Direction = facing(t.U > 0)
		c.makeFaller(h)
	default:
		e.SetVelocity(h, -t.U, -3)
	}
}

// landing picks the direction to walk after touching ground and forgets
// the preference.
func (c *Colony) landing(h engine.Handle) models.Direction {
	m := &c.mem[h]
	d := m.prefd
	if d == models.Here {
		d = models.Direction(c.rnd.IntN(2))
	}
	m.prefd = models.Here
	return d
}

func facing(right bool) models.Direction {
	if right {
		return models.Right
	}
	return models.Left
}
