package badge

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/validity-events/backend/internal/token"
)

// Data carries the guest fields shown on a badge card.
type Data struct {
	GuestID   string
	BadgeID   string
	FullName  string
	Company   string
	JobTitle  string
	EventName string
}

// Printer delivers a rendered badge to a print target.
type Printer interface {
	Print(ctx context.Context, badgeID, markup string) error
}

// Compositor renders printable badge cards and drives the print path.
type Compositor struct {
	printer Printer
	logger  *zap.Logger
}

// NewCompositor creates a badge compositor. printer may be nil when only
// rendering is needed.
func NewCompositor(printer Printer, logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{printer: printer, logger: logger}
}

// RenderBadge composes the printable badge card as SVG markup. A layout with
// no elements falls back to the default template for the layout's theme.
func (c *Compositor) RenderBadge(d Data, layout Layout) (string, error) {
	if d.GuestID == "" || d.BadgeID == "" {
		return "", errors.New("badge: guest id and badge id required")
	}
	if len(layout.Elements) == 0 {
		layout = DefaultLayout(layout.Theme, layout.Orientation)
	}
	cardW, cardH := layout.CardSize()

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		cardW, cardH, cardW, cardH,
	)
	fmt.Fprintf(&sb, `<rect width="%.0f" height="%.0f" fill="#ffffff"/>`, cardW, cardH)
	fmt.Fprintf(&sb, `<rect width="%.0f" height="48" fill="%s"/>`, cardW, escape(layout.Theme.PrimaryColor))

	// Event name pill, top right.
	fmt.Fprintf(&sb,
		`<text x="%.0f" y="20" text-anchor="end" font-family="Helvetica" font-size="10" fill="%s">%s</text>`,
		cardW-10, escape(layout.Theme.TextColor), escape(d.EventName),
	)

	for _, el := range layout.Elements {
		if err := c.renderElement(&sb, el, d, layout.Theme); err != nil {
			return "", err
		}
	}

	// Badge id footer.
	fmt.Fprintf(&sb,
		`<text x="%.0f" y="%.0f" text-anchor="middle" font-family="Helvetica" font-size="10" fill="%s">Badge ID: %s</text>`,
		cardW/2, cardH-8, escape(layout.Theme.TextColor), escape(d.BadgeID),
	)
	sb.WriteString(`</svg>`)
	return sb.String(), nil
}

func (c *Compositor) renderElement(sb *strings.Builder, el Element, d Data, theme Theme) error {
	switch el.Type {
	case ElementText:
		content := textContent(el, d)
		if content == "" {
			return nil
		}
		fontSize := el.FontSize
		if fontSize == 0 {
			fontSize = theme.FontSize
		}
		weight := el.FontWeight
		if weight == "" {
			weight = "normal"
		}
		fmt.Fprintf(sb,
			`<text x="%.0f" y="%.0f" font-family="Helvetica" font-size="%d" font-weight="%s" fill="%s">%s</text>`,
			el.X, el.Y+float64(fontSize), fontSize, escape(weight), escape(theme.TextColor), escape(content),
		)
	case ElementLogo:
		fmt.Fprintf(sb,
			`<g><rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="none" stroke="%s"/>`,
			el.X, el.Y, el.W, el.H, escape(theme.PrimaryColor),
		)
		fmt.Fprintf(sb,
			`<text x="%.0f" y="%.0f" text-anchor="middle" font-family="Helvetica" font-size="11" font-weight="bold" fill="%s">Validity Events</text></g>`,
			el.X+el.W/2, el.Y+el.H/2+4, escape(theme.TextColor),
		)
	case ElementQRCode:
		matrix, err := token.QRMatrix(d.GuestID)
		if err != nil {
			return fmt.Errorf("badge qr: %w", err)
		}
		n := len(matrix)
		scale := el.W / float64(n)
		fmt.Fprintf(sb, `<g transform="translate(%.0f %.0f) scale(%.4f)">`, el.X, el.Y, scale)
		fmt.Fprintf(sb, `<rect width="%d" height="%d" fill="#ffffff"/>`, n, n)
		for y, row := range matrix {
			for x, filled := range row {
				if filled {
					fmt.Fprintf(sb, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
				}
			}
		}
		sb.WriteString(`</g>`)
	}
	return nil
}

// textContent resolves the well-known template fields against guest data;
// unknown elements keep their literal content.
func textContent(el Element, d Data) string {
	switch el.ID {
	case "name":
		return d.FullName
	case "company":
		if d.Company == "" {
			return "Guest"
		}
		return d.Company
	case "title":
		return d.JobTitle
	default:
		return el.Content
	}
}

// PrintBadge renders only the badge card and sends it to the print target.
// onPrint is invoked exactly once, synchronously, and only after the print
// action was issued successfully; render or print failures leave it unfired.
func (c *Compositor) PrintBadge(ctx context.Context, d Data, layout Layout, onPrint func()) error {
	if c.printer == nil {
		return errors.New("badge: no printer configured")
	}
	markup, err := c.RenderBadge(d, layout)
	if err != nil {
		return err
	}
	if err := c.printer.Print(ctx, d.BadgeID, markup); err != nil {
		return fmt.Errorf("print badge: %w", err)
	}
	c.logger.Info("badge printed", zap.String("badge_id", d.BadgeID))
	if onPrint != nil {
		onPrint()
	}
	return nil
}

func escape(s string) string {
	return html.EscapeString(s)
}
