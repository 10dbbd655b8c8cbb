package scanner_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tatianab/toons/internal/desktop"
	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/region"
	"github.com/tatianab/toons/internal/scanner"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func solid(windows []models.WindowRecord, id models.WindowID) bool {
	for _, w := range windows {
		if w.ID == id {
			return w.Solid
		}
	}
	return false
}

func TestScanExclusionRules(t *testing.T) {
	d := desktop.New(1000, 800)
	plain := d.Add(desktop.Window{X: 100, Y: 100, W: 200, H: 50, Border: 2})
	hidden := d.Add(desktop.Window{X: 400, Y: 100, W: 50, H: 50, Hidden: true})
	popup := d.Add(desktop.Window{X: 500, Y: 100, W: 50, H: 50, Popup: true})
	offRight := d.Add(desktop.Window{X: 1000, Y: 100, W: 50, H: 50})
	offLeft := d.Add(desktop.Window{X: -60, Y: 100, W: 60, H: 50})
	partly := d.Add(desktop.Window{X: -30, Y: -30, W: 60, H: 60})

	tests := []struct {
		name    string
		opts    scanner.Options
		popupOK bool
	}{
		{"solid popups", scanner.Options{SolidPopups: true}, true},
		{"ignore popups", scanner.Options{SolidPopups: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, reg, err := scanner.New(d, tt.opts, quiet).Scan()
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if len(windows) != 6 {
				t.Fatalf("expected 6 records, got %d", len(windows))
			}
			if !solid(windows, plain) || !solid(windows, partly) {
				t.Errorf("plain and partly on-screen windows should be solid")
			}
			if solid(windows, hidden) || solid(windows, offRight) || solid(windows, offLeft) {
				t.Errorf("hidden and off-screen windows should not be solid")
			}
			if solid(windows, popup) != tt.popupOK {
				t.Errorf("popup solid = %v, want %v", solid(windows, popup), tt.popupOK)
			}
			// border inclusive: 100..304 x 100..154
			if !reg.Contains(303, 153) || reg.Contains(304, 153) {
				t.Errorf("region should include the border and nothing more")
			}
			if reg.Contains(420, 120) {
				t.Errorf("hidden window must not be in the region")
			}
		})
	}
}

func TestScanToleratesFailedQuery(t *testing.T) {
	d := desktop.New(1000, 800)
	gone := d.Add(desktop.Window{X: 0, Y: 100, W: 100, H: 100})
	kept := d.Add(desktop.Window{X: 500, Y: 100, W: 100, H: 100})
	d.Fail(gone, 1)

	windows, reg, err := scanner.New(d, scanner.Options{SolidPopups: true}, quiet).Scan()
	if err != nil {
		t.Fatalf("a single failed query must not fail the scan: %v", err)
	}
	if solid(windows, gone) {
		t.Errorf("failed window should be non-solid")
	}
	if !solid(windows, kept) {
		t.Errorf("remaining windows should still be scanned")
	}
	if reg.Contains(50, 150) || !reg.Contains(550, 150) {
		t.Errorf("region should only hold the window that answered")
	}
}

func TestScanShapedWindows(t *testing.T) {
	d := desktop.New(1000, 800)
	id := d.Add(desktop.Window{X: 100, Y: 100, W: 64, H: 64})
	// a plus sign
	d.SetShape(id, []models.Rect{{X: 16, Y: 0, W: 32, H: 64}, {X: 0, Y: 16, W: 64, H: 32}})

	_, shaped, err := scanner.New(d, scanner.Options{ShapedWindows: true}, quiet).Scan()
	if err != nil {
		t.Fatal(err)
	}
	if shaped.Contains(101, 101) {
		t.Errorf("corner outside the shape should be free")
	}
	if !shaped.Contains(130, 101) || !shaped.Contains(101, 130) {
		t.Errorf("shape arms should be covered")
	}
	if shaped.Area() != 32*64+64*32-32*32 {
		t.Errorf("shaped area = %d", shaped.Area())
	}

	_, rect, _ := scanner.New(d, scanner.Options{ShapedWindows: false}, quiet).Scan()
	if !rect.Contains(101, 101) || rect.Area() != 64*64 {
		t.Errorf("rectangular mode should use the bounding box")
	}
}

func TestScanIdempotent(t *testing.T) {
	d := desktop.New(1000, 800)
	d.Add(desktop.Window{X: 0, Y: 500, W: 600, H: 300})
	d.Add(desktop.Window{X: 300, Y: 400, W: 600, H: 300, Border: 1})
	d.Add(desktop.Window{X: 350, Y: 450, W: 10, H: 10})
	s := scanner.New(d, scanner.Options{SolidPopups: true, ShapedWindows: true}, quiet)

	_, first, err := s.Scan()
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := s.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("two scans of an unchanged desktop should cover the same pixels")
	}
	if first == second {
		t.Errorf("each scan should build a new region")
	}
	want := region.New(models.Rect{X: 0, Y: 500, W: 600, H: 300}, models.Rect{X: 300, Y: 400, W: 602, H: 302})
	if !first.Equal(want) {
		t.Errorf("region does not match the windows")
	}
}

func TestScanConnectionLoss(t *testing.T) {
	d := desktop.New(100, 100)
	d.Disconnect()
	s := scanner.New(d, scanner.Options{}, quiet)
	if _, _, err := s.Scan(); !errors.Is(err, scanner.ErrConnection) {
		t.Errorf("Scan() error = %v, want ErrConnection", err)
	}
	if _, err := s.Changed(); !errors.Is(err, scanner.ErrConnection) {
		t.Errorf("Changed() error = %v, want ErrConnection", err)
	}
}

// plainBackend hides the desktop's change notification.
type plainBackend struct{ d *desktop.Desktop }

func (b plainBackend) DisplaySize() (int, int)              { return b.d.DisplaySize() }
func (b plainBackend) Children() ([]models.WindowID, error) { return b.d.Children() }
func (b plainBackend) Attributes(id models.WindowID) (scanner.Attributes, error) {
	return b.d.Attributes(id)
}
func (b plainBackend) ShapeRectangles(id models.WindowID) ([]models.Rect, error) {
	return b.d.ShapeRectangles(id)
}

func TestChangedWithoutNotifier(t *testing.T) {
	d := desktop.New(100, 100)
	d.WindowsChanged()
	s := scanner.New(plainBackend{d}, scanner.Options{}, quiet)
	changed, err := s.Changed()
	if err != nil || !changed {
		t.Errorf("backends without notification should always report a change, got %v, %v", changed, err)
	}
}
