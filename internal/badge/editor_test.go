package badge

import "testing"

func themeForTest() Theme {
	return Theme{PrimaryColor: "#FFDC00", TextColor: "#000000", FontSize: 16, ShowQRCode: true, ShowLogo: true}
}

func TestDefaultLayoutElements(t *testing.T) {
	l := DefaultLayout(themeForTest(), OrientationLandscape)
	if len(l.Elements) != 5 {
		t.Fatalf("elements = %d, want 5 with logo and qr enabled", len(l.Elements))
	}

	theme := themeForTest()
	theme.ShowLogo = false
	theme.ShowQRCode = false
	l = DefaultLayout(theme, OrientationPortrait)
	if len(l.Elements) != 3 {
		t.Fatalf("elements = %d, want 3 without logo and qr", len(l.Elements))
	}
	w, h := l.CardSize()
	if w != CardShortPx || h != CardLongPx {
		t.Errorf("portrait card size = %.0fx%.0f", w, h)
	}
}

func TestDragStateMachine(t *testing.T) {
	e := NewEditor(DefaultLayout(themeForTest(), OrientationLandscape))
	if e.Dragging() {
		t.Fatal("editor starts dragging")
	}

	// Pointer down on empty space: no selection, stays idle.
	if e.PointerDown(1, 1) {
		t.Error("hit reported on empty card area")
	}
	if e.Dragging() || e.Selected() != "" {
		t.Error("state changed without a hit")
	}

	// Pointer down on the name element (20,60 200x30).
	if !e.PointerDown(30, 70) {
		t.Fatal("name element not hit")
	}
	if !e.Dragging() || e.Selected() != "name" {
		t.Errorf("dragging=%v selected=%q after hit", e.Dragging(), e.Selected())
	}

	// Moves track the pointer keeping the grab offset.
	e.PointerMove(40, 80)
	el := findElement(t, e.Layout(), "name")
	if el.X != 30 || el.Y != 70 {
		t.Errorf("after move element at (%.0f,%.0f), want (30,70)", el.X, el.Y)
	}

	e.PointerUp()
	if e.Dragging() {
		t.Error("still dragging after pointer up")
	}

	// Moves after pointer up are ignored.
	e.PointerMove(200, 100)
	el = findElement(t, e.Layout(), "name")
	if el.X != 30 || el.Y != 70 {
		t.Error("element moved while idle")
	}
}

func TestDragClampedToCardBounds(t *testing.T) {
	e := NewEditor(DefaultLayout(themeForTest(), OrientationLandscape))
	if !e.PointerDown(20, 60) { // grab name at its origin
		t.Fatal("name element not hit")
	}

	cardW, cardH := e.Layout().CardSize()

	// Far beyond the right and bottom edges.
	e.PointerMove(cardW+500, cardH+500)
	el := findElement(t, e.Layout(), "name")
	if el.X != cardW-el.W {
		t.Errorf("x = %.0f, want clamped to %.0f", el.X, cardW-el.W)
	}
	if el.Y != cardH-el.H {
		t.Errorf("y = %.0f, want clamped to %.0f", el.Y, cardH-el.H)
	}

	// Far beyond the top-left corner: never negative.
	e.PointerMove(-500, -500)
	el = findElement(t, e.Layout(), "name")
	if el.X != 0 || el.Y != 0 {
		t.Errorf("element at (%.0f,%.0f), want (0,0)", el.X, el.Y)
	}
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	e := NewEditor(DefaultLayout(themeForTest(), OrientationLandscape))
	e.PointerDown(30, 70)
	e.PointerLeave()
	if e.Dragging() {
		t.Error("still dragging after pointer leave")
	}
}

func TestAddElementDefaults(t *testing.T) {
	e := NewEditor(DefaultLayout(themeForTest(), OrientationLandscape))
	tests := []struct {
		typ  ElementType
		w, h float64
	}{
		{ElementQRCode, 80, 80},
		{ElementLogo, 100, 30},
		{ElementText, 200, 20},
	}
	for _, tt := range tests {
		id := e.AddElement(tt.typ)
		if e.Selected() != id {
			t.Errorf("new %s element not selected", tt.typ)
		}
		el := findElement(t, e.Layout(), id)
		if el.W != tt.w || el.H != tt.h {
			t.Errorf("%s size = %.0fx%.0f, want %.0fx%.0f", tt.typ, el.W, el.H, tt.w, tt.h)
		}
	}
}

func TestSelectLastClickedWins(t *testing.T) {
	e := NewEditor(DefaultLayout(themeForTest(), OrientationLandscape))
	e.Select("company")
	e.Select("title")
	if e.Selected() != "title" {
		t.Errorf("selected = %q, want title", e.Selected())
	}
	e.Select("does-not-exist")
	if e.Selected() != "title" {
		t.Error("selection changed for unknown id")
	}
}

func findElement(t *testing.T, l Layout, id string) Element {
	t.Helper()
	for _, el := range l.Elements {
		if el.ID == id {
			return el
		}
	}
	t.Fatalf("element %q not in layout", id)
	return Element{}
}
