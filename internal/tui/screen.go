package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/toons/internal/desktop"
	"github.com/tatianab/toons/internal/engine"
	"github.com/tatianab/toons/internal/models"
)

// screen collects what the engine draws. The terminal is repainted whole on
// every View, so erasing only has to drop the previous frame.
type screen struct {
	pending []engine.Sprite
	shown   []engine.Sprite
	frames  int
}

var _ engine.Renderer = (*screen)(nil)

func (s *screen) Erase([]models.Rect) error {
	s.pending = s.pending[:0]
	return nil
}

func (s *screen) Draw(sprites []engine.Sprite) error {
	s.pending = append(s.pending, sprites...)
	return nil
}

func (s *screen) Flush() error {
	s.shown = append(s.shown[:0], s.pending...)
	s.frames++
	return nil
}

// grid maps desktop pixels onto terminal cells.
type grid struct {
	cols, rows int
	// pixels per cell
	sx, sy int
}

func newGrid(dw, dh, cols, rows int) grid {
	cols, rows = max(cols, 1), max(rows, 1)
	g := grid{sx: max(ceilDiv(dw, cols), 1), sy: max(ceilDiv(dh, rows), 1)}
	g.cols = ceilDiv(dw, g.sx)
	g.rows = ceilDiv(dh, g.sy)
	return g
}

// cells returns the half-open cell range covered by r, clipped to the grid.
func (g grid) cells(r models.Rect) (c0, r0, c1, r1 int) {
	c0 = max(floorDiv(r.X, g.sx), 0)
	r0 = max(floorDiv(r.Y, g.sy), 0)
	c1 = min(ceilDiv(r.Right(), g.sx), g.cols)
	r1 = min(ceilDiv(r.Bottom(), g.sy), g.rows)
	return
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

type cell struct {
	r     rune
	style int
}

const (
	styleDesk = iota
	styleWindow
	styleSelected
	stylePopup
	styleToon // first class, one style per class after it
)

// canvas is a character grid with one style index per cell.
type canvas struct {
	g      grid
	cells  [][]cell
	styles []lipgloss.Style
}

func newCanvas(g grid, classes []models.SpriteClass) *canvas {
	c := &canvas{g: g, cells: make([][]cell, g.rows)}
	for y := range c.cells {
		c.cells[y] = make([]cell, g.cols)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' ', style: styleDesk}
		}
	}
	c.styles = []lipgloss.Style{deskStyle, windowStyle, selectedStyle, popupStyle}
	for _, cl := range classes {
		st := lipgloss.NewStyle().Bold(true).Background(deskColor)
		if cl.Color != "" {
			st = st.Foreground(lipgloss.Color(cl.Color))
		}
		c.styles = append(c.styles, st)
	}
	return c
}

func (c *canvas) fill(r models.Rect, ch rune, style int) {
	c0, r0, c1, r1 := c.g.cells(r)
	for y := r0; y < r1; y++ {
		for x := c0; x < c1; x++ {
			c.cells[y][x] = cell{r: ch, style: style}
		}
	}
}

func (c *canvas) text(r models.Rect, s string, style int) {
	c0, r0, c1, r1 := c.g.cells(r)
	if r0 >= r1 {
		return
	}
	x := c0
	for _, ch := range s {
		if x >= c1 {
			break
		}
		c.cells[r0][x] = cell{r: ch, style: style}
		x++
	}
}

func (c *canvas) window(w desktop.Window, selected bool) {
	style := styleWindow
	switch {
	case selected:
		style = styleSelected
	case w.Popup:
		style = stylePopup
	}
	if len(w.Shape) == 0 {
		c.fill(w.Bounds(), ' ', style)
	} else {
		for _, r := range w.Shape {
			c.fill(r.Translate(w.X, w.Y), ' ', style)
		}
	}
	c.text(w.Bounds(), w.Title, style)
}

func (c *canvas) sprite(s engine.Sprite) {
	ch := '?'
	for _, r := range s.Class.Name {
		ch = r
		break
	}
	if s.Row > 0 {
		ch = unicode.ToUpper(ch)
	}
	c.fill(s.Box, ch, styleToon+s.Type)
}

// String renders runs of equally styled cells together.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].style == row[start].style {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			b.WriteString(c.styles[row[start].style].Render(string(run)))
			start = x
		}
	}
	return b.String()
}
