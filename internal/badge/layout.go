// Package badge lays out printable badge cards: a draggable template editor
// model, an SVG compositor for the printable card and a print spool.
package badge

// Physical badge stock is 3.375in x 2.125in; rendered at 96dpi.
const (
	CardLongPx  = 324
	CardShortPx = 204
)

// Orientations.
const (
	OrientationLandscape = "landscape"
	OrientationPortrait  = "portrait"
)

// ElementType identifies what a placed element renders.
type ElementType string

const (
	ElementText   ElementType = "text"
	ElementLogo   ElementType = "logo"
	ElementQRCode ElementType = "qrcode"
)

// Element is one placed field on the badge card.
type Element struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	W          float64     `json:"width"`
	H          float64     `json:"height"`
	Content    string      `json:"content,omitempty"`
	FontSize   int         `json:"font_size,omitempty"`
	FontWeight string      `json:"font_weight,omitempty"`
}

// Theme holds badge colors and toggles.
type Theme struct {
	PrimaryColor string `json:"primary_color"`
	TextColor    string `json:"text_color"`
	FontSize     int    `json:"font_size"`
	ShowQRCode   bool   `json:"show_qr_code"`
	ShowLogo     bool   `json:"show_logo"`
}

// Layout is a badge card configuration: placed elements on a fixed-aspect
// card plus theme options.
type Layout struct {
	Elements    []Element `json:"elements"`
	Orientation string    `json:"orientation"`
	Theme       Theme     `json:"theme"`
}

// CardSize returns the card dimensions in px for the layout orientation.
func (l Layout) CardSize() (w, h float64) {
	if l.Orientation == OrientationPortrait {
		return CardShortPx, CardLongPx
	}
	return CardLongPx, CardShortPx
}

// defaultElementSize returns the initial size for a newly added element.
func defaultElementSize(t ElementType) (w, h float64) {
	switch t {
	case ElementQRCode:
		return 80, 80
	case ElementLogo:
		return 100, 30
	default:
		return 200, 20
	}
}

// DefaultLayout seeds the standard template: name, company and job title
// fields, plus logo and QR elements when the theme enables them.
func DefaultLayout(theme Theme, orientation string) Layout {
	if orientation != OrientationPortrait {
		orientation = OrientationLandscape
	}
	elements := []Element{
		{ID: "name", Type: ElementText, X: 20, Y: 60, W: 200, H: 30, Content: "Full Name", FontSize: theme.FontSize, FontWeight: "bold"},
		{ID: "company", Type: ElementText, X: 20, Y: 90, W: 200, H: 20, Content: "Company Name", FontSize: theme.FontSize - 2},
		{ID: "title", Type: ElementText, X: 20, Y: 110, W: 200, H: 20, Content: "Job Title", FontSize: theme.FontSize - 2},
	}
	if theme.ShowLogo {
		elements = append(elements, Element{ID: "logo", Type: ElementLogo, X: 20, Y: 20, W: 100, H: 30})
	}
	if theme.ShowQRCode {
		x := 150.0
		if orientation == OrientationLandscape {
			x = 230
		}
		elements = append(elements, Element{ID: "qrcode", Type: ElementQRCode, X: x, Y: 50, W: 80, H: 80})
	}
	return Layout{Elements: elements, Orientation: orientation, Theme: theme}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
