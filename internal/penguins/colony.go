// Package penguins drives a colony of toons: who walks, falls, climbs,
// floats or explodes, and the tick loop that animates them.
package penguins

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/scanner"
)

const (
	// MaxPenguins caps the colony size.
	MaxPenguins = 256
	// DefaultDelay is the pause between ticks.
	DefaultDelay = 50 * time.Millisecond
	// JumpDistance is how high a walker steps up and how far a climber steps out.
	JumpDistance = 8
	// maxTumble is the terminal velocity of a tumbler.
	maxTumble = 8
)

// Options configure a colony.
type Options struct {
	Count  int
	Delay  time.Duration
	Seed   uint64 // 0 picks a seed from the clock
	Engine engine.Options
}

// roles are the sprite classes every theme has to provide.
type roles struct {
	walker, faller, tumbler, floater, climber, bomber, explosion int
}

func resolveRoles(theme *models.Theme) (roles, error) {
	var r roles
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"walker", &r.walker},
		{"faller", &r.faller},
		{"tumbler", &r.tumbler},
		{"floater", &r.floater},
		{"climber", &r.climber},
		{"bomber", &r.bomber},
		{"explosion", &r.explosion},
	} {
		i, err := theme.Index(c.name)
		if err != nil {
			return roles{}, err
		}
		*c.dst = i
	}
	return r, nil
}

// memory is what a penguin remembers between ticks.
type memory struct {
	// prefd is the direction to walk after landing; models.Here means none.
	prefd     models.Direction
	prefClimb bool
	holdOn    bool
}

// Colony owns the engine and one memory slot per toon.
type Colony struct {
	eng   *engine.Engine
	theme *models.Theme
	roles roles
	mem   []memory
	rnd   *rand.Rand
	delay time.Duration
	ticks int

	sleep func(time.Duration)
	log   *slog.Logger
}

// New creates the engine over sc and spawns opts.Count penguins above the
// top of the display.
func New(sc *scanner.Scanner, theme *models.Theme, opts Options, log *slog.Logger) (*Colony, error) {
	r, err := resolveRoles(theme)
	if err != nil {
		return nil, err
	}

	count := opts.Count
	if count > MaxPenguins {
		log.Warn("too many penguins", "requested", count, "created", MaxPenguins)
		count = MaxPenguins
	} else if count < 0 {
		log.Warn("no penguins created", "requested", count)
		count = 0
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	eng, err := engine.New(sc, theme.Classes, count, opts.Engine, log)
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}

	c := &Colony{
		eng:   eng,
		theme: theme,
		roles: r,
		mem:   make([]memory, count),
		rnd:   rand.New(rand.NewPCG(seed, seed>>1|1)),
		delay: delay,
		sleep: time.Sleep,
		log:   log,
	}
	for h := range count {
		c.spawn(engine.Handle(h))
	}
	return c, nil
}

// Engine exposes the underlying engine.
func (c *Colony) Engine() *engine.Engine { return c.eng }

// Theme returns the sprite theme in use.
func (c *Colony) Theme() *models.Theme { return c.theme }

// Ticks returns the number of completed steps.
func (c *Colony) Ticks() int { return c.ticks }

// Delay returns the pause between ticks.
func (c *Colony) Delay() time.Duration { return c.delay }

// Census counts active toons per sprite class.
func (c *Colony) Census() []int {
	counts := make([]int, len(c.theme.Classes))
	for h := range c.eng.Len() {
		if t := c.eng.Toon(engine.Handle(h)); t.Active {
			counts[t.Type]++
		}
	}
	return counts
}

// Active returns the number of active toons.
func (c *Colony) Active() int {
	n := 0
	for _, k := range c.Census() {
		n += k
	}
	return n
}

// Step runs one tick without drawing: the rescan phase, then one behavior
// update per toon.
func (c *Colony) Step() error {
	if _, err := c.eng.Rescan(); err != nil {
		return err
	}
	for h := range c.eng.Len() {
		c.update(engine.Handle(h))
	}
	c.ticks++
	return nil
}

// Run steps and draws the colony until ctx is cancelled, then plays the
// exit sequence. Cancellation is only noticed between ticks. A lost
// connection to the window system ends the loop with an error.
func (c *Colony) Run(ctx context.Context, r engine.Renderer) error {
	ticker := time.NewTicker(c.delay)
	defer ticker.Stop()

	for {
		if err := c.Step(); err != nil {
			return err
		}
		if err := c.eng.Render(r); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		select {
		case <-ctx.Done():
			return c.Exit(r)
		case <-ticker.C:
		}
	}
}

// Exit turns every active toon into a bomber, plays the bomber animation
// with forced moves and erases everything. It ignores further cancellation;
// the sequence always ends after the bomber's frame count.
func (c *Colony) Exit(r engine.Renderer) error {
	frames := c.BeginExit()
	for range frames {
		if err := c.ExitFrame(r); err != nil {
			return err
		}
		c.sleep(c.delay)
	}
	return c.EndExit(r)
}

// BeginExit turns every active toon into a bomber and returns the number of
// frames ExitFrame has to be called for.
func (c *Colony) BeginExit() int {
	c.log.Info("exploding penguins", "active", c.Active())
	for h := range c.eng.Len() {
		h := engine.Handle(h)
		if c.eng.Toon(h).Active {
			c.eng.SetType(h, c.roles.bomber, models.Left, models.Down)
			c.eng.SetAssociation(h, models.Unassociated)
		}
	}
	return c.eng.Class(c.roles.bomber).Frames
}

// ExitFrame draws the bombers and force-advances them one frame.
func (c *Colony) ExitFrame(r engine.Renderer) error {
	if err := c.eng.Render(r); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	for h := range c.eng.Len() {
		h := engine.Handle(h)
		if c.eng.Toon(h).Active {
			c.eng.Advance(h, engine.Force)
		}
	}
	return nil
}

// EndExit erases whatever is still on screen and empties the pool.
func (c *Colony) EndExit(r engine.Renderer) error {
	if err := c.eng.EraseAll(r); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	for h := range c.eng.Len() {
		c.eng.Deactivate(engine.Handle(h))
	}
	c.log.Info("exit sequence done")
	return nil
}
