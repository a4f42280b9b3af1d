// Package token turns guest identifiers into scannable visual tokens:
// QR codes (SVG and PNG) and a linear barcode rendering for badges and
// confirmation documents.
package token

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyPayload is returned when an empty identifier is passed to an encoder.
var ErrEmptyPayload = errors.New("token: empty payload")

// QRMatrix returns the module matrix for payload, quiet zone included.
// Error correction is fixed at the highest level so small printed codes
// still scan reliably.
func QRMatrix(payload string) ([][]bool, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	code, err := qrcode.New(payload, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return code.Bitmap(), nil
}

// EncodeQRSVG returns a self-contained SVG rendering of the payload's QR code,
// size pixels square. Output is deterministic for a given payload and size.
func EncodeQRSVG(payload string, size int) (string, error) {
	matrix, err := QRMatrix(payload)
	if err != nil {
		return "", err
	}
	n := len(matrix)

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`,
		n, n, size, size,
	)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#ffffff"/>`, n, n)
	for y, row := range matrix {
		for x, filled := range row {
			if filled {
				fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	sb.WriteString(`</svg>`)
	return sb.String(), nil
}

// EncodeQRPNG returns a PNG rendering of the payload's QR code, size pixels square.
func EncodeQRPNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	data, err := qrcode.Encode(payload, qrcode.Highest, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return data, nil
}

// EncodeCode128PNG returns a scanner-grade Code 128 barcode as PNG bytes.
// Use this where real barcode hardware must decode the value; the SVG
// linear rendering below is visual only.
func EncodeCode128PNG(payload string, width, height int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	code, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale code128: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// LinearOptions control the linear barcode SVG rendering.
type LinearOptions struct {
	Height     int    // total SVG height in px
	Width      int    // 0 = derived from payload length
	ShowText   bool   // render the payload centered under the bars
	FontSize   int
	Margin     int
	Background string // fill color, e.g. "#ffffff"
	LineColor  string // bar color, e.g. "#000000"
}

// DefaultLinearOptions returns the badge theme defaults used across the app.
func DefaultLinearOptions() LinearOptions {
	return LinearOptions{
		Height:     100,
		ShowText:   true,
		FontSize:   16,
		Margin:     10,
		Background: "#ffffff",
		LineColor:  "#000000",
	}
}

// EncodeLinearSVG renders payload as a linear barcode SVG. Each character
// contributes a fixed-width bar and a second bar whose width multiplier is
// (codePoint mod 3) + 1, so the pattern is a deterministic function of the
// payload. This is a visual rendering, not a decodable symbology; see
// EncodeCode128PNG for scanner output.
func EncodeLinearSVG(payload string, opts LinearOptions) (string, error) {
	if payload == "" {
		return "", ErrEmptyPayload
	}

	width := opts.Width
	if width == 0 {
		width = len(payload) * 14
		if width < 200 {
			width = 200
		}
	}
	height := opts.Height
	barHeight := height
	if opts.ShowText {
		barHeight = height - 20
	}

	const barWidth = 2
	const spacing = 1

	var bars strings.Builder
	x := opts.Margin
	for _, r := range payload {
		fmt.Fprintf(&bars, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" />`,
			x, opts.Margin, barWidth, barHeight, opts.LineColor)
		x += barWidth + spacing

		wide := int(r)%3 + 1
		fmt.Fprintf(&bars, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" />`,
			x, opts.Margin, barWidth*wide, barHeight, opts.LineColor)
		x += barWidth*wide + spacing
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height,
	)
	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s" />`, opts.Background)
	sb.WriteString(`<rect x="0" y="0" width="100%" height="100%" fill="none" stroke="#FFDC00" stroke-width="2" />`)
	sb.WriteString(bars.String())
	if opts.ShowText {
		fmt.Fprintf(&sb,
			`<text x="%d" y="%d" text-anchor="middle" font-family="Arial" font-size="%d" fill="#000000">%s</text>`,
			width/2, height-5, opts.FontSize, payload)
	}
	sb.WriteString(`</svg>`)
	return sb.String(), nil
}

// LinearWidth returns the rendered width for a payload with auto sizing.
func LinearWidth(payload string) int {
	w := len(payload) * 14
	if w < 200 {
		return 200
	}
	return w
}
