package desktop

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tatianab/toons/internal/models"
)

func TestStackingAndLookup(t *testing.T) {
	d := New(800, 600)
	a := d.Add(Window{Title: "a", X: 0, Y: 0, W: 100, H: 100})
	b := d.Add(Window{Title: "b", X: 50, Y: 50, W: 100, H: 100})

	if w, ok := d.WindowAt(60, 60); !ok || w.ID != b {
		t.Fatalf("WindowAt(60,60) = %v, %v; want b on top", w.ID, ok)
	}
	if err := d.Raise(a); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if w, _ := d.WindowAt(60, 60); w.ID != a {
		t.Errorf("after Raise(a), WindowAt(60,60) = %v", w.Title)
	}
	ids, _ := d.Children()
	if len(ids) != 2 || ids[1] != a {
		t.Errorf("Children() = %v, want a last", ids)
	}

	if err := d.Remove(b); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := d.Window(b); ok {
		t.Errorf("b still present after Remove")
	}
	if err := d.Move(b, 1, 1); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Move(removed) = %v, want ErrNoWindow", err)
	}
}

func TestChangeFlag(t *testing.T) {
	d := New(800, 600)
	id := d.Add(Window{W: 10, H: 10})

	if changed, _ := d.WindowsChanged(); !changed {
		t.Errorf("expected change after Add")
	}
	if changed, _ := d.WindowsChanged(); changed {
		t.Errorf("flag should clear after being read")
	}
	d.MoveBy(id, 5, 0)
	if changed, _ := d.WindowsChanged(); !changed {
		t.Errorf("expected change after MoveBy")
	}
	if w, _ := d.Window(id); w.X != 5 {
		t.Errorf("X = %d after MoveBy", w.X)
	}
}

func TestAttributes(t *testing.T) {
	d := New(800, 600)
	id := d.Add(Window{X: 10, Y: 20, W: 30, H: 40, Border: 2, Popup: true})

	attr, err := d.Attributes(id)
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attr.X != 10 || attr.Width != 30 || attr.BorderWidth != 2 || !attr.Viewable || !attr.OverrideRedirect {
		t.Errorf("Attributes = %+v", attr)
	}

	d.Fail(id, 1)
	if _, err := d.Attributes(id); !errors.Is(err, ErrNoWindow) {
		t.Errorf("expected injected failure, got %v", err)
	}
	if _, err := d.Attributes(id); err != nil {
		t.Errorf("failure should only last one query: %v", err)
	}

	shape, _ := d.ShapeRectangles(id)
	if len(shape) != 1 || shape[0] != (models.Rect{W: 34, H: 44}) {
		t.Errorf("unshaped ShapeRectangles = %v", shape)
	}

	d.Disconnect()
	if _, err := d.Children(); !errors.Is(err, ErrDisconnected) {
		t.Errorf("Children after Disconnect = %v", err)
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	data := []byte(`width: 1024
height: 768
windows:
  - title: terminal
    x: 100
    y: 200
    w: 400
    h: 300
    border: 1
  - title: clock
    x: 900
    y: 10
    w: 64
    h: 64
    shape:
      - {x: 16, y: 0, w: 32, h: 64}
      - {x: 0, y: 16, w: 64, h: 32}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if w, h := d.DisplaySize(); w != 1024 || h != 768 {
		t.Errorf("DisplaySize = %dx%d", w, h)
	}
	wins := d.Windows()
	if len(wins) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(wins))
	}
	if len(wins[1].Shape) != 2 {
		t.Errorf("clock shape = %v", wins[1].Shape)
	}
	if got := wins[0].Bounds(); got != (models.Rect{X: 100, Y: 200, W: 402, H: 302}) {
		t.Errorf("terminal bounds = %v", got)
	}

	if _, err := FromLayout(Layout{}); err == nil {
		t.Errorf("FromLayout with zero size should fail")
	}
}
