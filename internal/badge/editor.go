package badge

import "fmt"

// Editor maintains a mutable layout for template editing. Dragging is an
// explicit two-state machine: idle -> dragging on PointerDown over an
// element, back to idle on PointerUp or PointerLeave. While dragging, every
// PointerMove repositions the selected element, clamped to the card bounds.
// Nothing is persisted here; callers save the layout through the template
// repository when editing is done.
type Editor struct {
	layout   Layout
	selected string
	dragging bool
	offsetX  float64
	offsetY  float64
	seq      int
}

// NewEditor starts editing the given layout.
func NewEditor(layout Layout) *Editor {
	return &Editor{layout: layout}
}

// Layout returns a copy of the current layout.
func (e *Editor) Layout() Layout {
	out := e.layout
	out.Elements = append([]Element(nil), e.layout.Elements...)
	return out
}

// Selected returns the id of the selected element, or "".
func (e *Editor) Selected() string { return e.selected }

// Dragging reports whether a drag is in progress.
func (e *Editor) Dragging() bool { return e.dragging }

// PointerDown selects the topmost element under (x, y) and starts a drag.
// Returns false when no element is hit; selection is then unchanged.
func (e *Editor) PointerDown(x, y float64) bool {
	for i := len(e.layout.Elements) - 1; i >= 0; i-- {
		el := e.layout.Elements[i]
		if x >= el.X && x <= el.X+el.W && y >= el.Y && y <= el.Y+el.H {
			e.selected = el.ID
			e.dragging = true
			e.offsetX = x - el.X
			e.offsetY = y - el.Y
			return true
		}
	}
	return false
}

// PointerMove repositions the dragged element. Positions are clamped so the
// element stays fully on the card; moves are never rejected.
func (e *Editor) PointerMove(x, y float64) {
	if !e.dragging || e.selected == "" {
		return
	}
	cardW, cardH := e.layout.CardSize()
	for i := range e.layout.Elements {
		el := &e.layout.Elements[i]
		if el.ID != e.selected {
			continue
		}
		el.X = clamp(x-e.offsetX, 0, cardW-el.W)
		el.Y = clamp(y-e.offsetY, 0, cardH-el.H)
		return
	}
}

// PointerUp ends the drag.
func (e *Editor) PointerUp() { e.dragging = false }

// PointerLeave ends the drag, same as PointerUp.
func (e *Editor) PointerLeave() { e.dragging = false }

// AddElement places a new element of the given type with its default size
// and selects it. Returns the new element id.
func (e *Editor) AddElement(t ElementType) string {
	e.seq++
	w, h := defaultElementSize(t)
	el := Element{
		ID:   fmt.Sprintf("%s-%d", t, e.seq),
		Type: t,
		X:    50,
		Y:    50,
		W:    w,
		H:    h,
	}
	if t == ElementText {
		el.Content = "New Text"
		el.FontSize = e.layout.Theme.FontSize
	}
	e.layout.Elements = append(e.layout.Elements, el)
	e.selected = el.ID
	return el.ID
}

// Select marks an element as selected (last clicked wins).
func (e *Editor) Select(id string) {
	for _, el := range e.layout.Elements {
		if el.ID == id {
			e.selected = id
			return
		}
	}
}
