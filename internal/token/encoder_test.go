package token

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEncodeLinearSVGDeterministic(t *testing.T) {
	opts := DefaultLinearOptions()
	payloads := []string{"g-1", "evt1234-1700000000000", "a", "some-long-guest-identifier-value"}
	for _, p := range payloads {
		first, err := EncodeLinearSVG(p, opts)
		if err != nil {
			t.Fatalf("EncodeLinearSVG(%q): %v", p, err)
		}
		second, err := EncodeLinearSVG(p, opts)
		if err != nil {
			t.Fatalf("EncodeLinearSVG(%q) second call: %v", p, err)
		}
		if first != second {
			t.Errorf("EncodeLinearSVG(%q) not deterministic", p)
		}
	}
}

func TestEncodeLinearSVGWidth(t *testing.T) {
	tests := []struct {
		payload string
		want    int
	}{
		{"a", 200},                // short payloads keep a usable minimum width
		{"0123456789", 200},       // 10*14 = 140 -> clamped
		{"012345678901234", 210},  // 15*14
		{strings.Repeat("x", 30), 420},
	}
	for _, tt := range tests {
		if got := LinearWidth(tt.payload); got != tt.want {
			t.Errorf("LinearWidth(%q) = %d, want %d", tt.payload, got, tt.want)
		}
		svg, err := EncodeLinearSVG(tt.payload, DefaultLinearOptions())
		if err != nil {
			t.Fatalf("EncodeLinearSVG(%q): %v", tt.payload, err)
		}
		wantAttr := fmt.Sprintf(`width="%d"`, tt.want)
		if !strings.Contains(svg, wantAttr) {
			t.Errorf("EncodeLinearSVG(%q) missing %s", tt.payload, wantAttr)
		}
	}
}

func TestEncodeLinearSVGExplicitWidth(t *testing.T) {
	opts := DefaultLinearOptions()
	opts.Width = 333
	svg, err := EncodeLinearSVG("g-1", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, `width="333"`) {
		t.Error("explicit width not honored")
	}
}

func TestEncodeLinearSVGText(t *testing.T) {
	opts := DefaultLinearOptions()
	withText, err := EncodeLinearSVG("evt1234-1700000000000", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(withText, ">evt1234-1700000000000</text>") {
		t.Error("human-readable text missing when ShowText is set")
	}

	opts.ShowText = false
	noText, err := EncodeLinearSVG("evt1234-1700000000000", opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(noText, "<text") {
		t.Error("text rendered although ShowText is false")
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	if _, err := EncodeLinearSVG("", DefaultLinearOptions()); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("EncodeLinearSVG(\"\") err = %v, want ErrEmptyPayload", err)
	}
	if _, err := EncodeQRSVG("", 80); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("EncodeQRSVG(\"\") err = %v, want ErrEmptyPayload", err)
	}
	if _, err := EncodeQRPNG("", 256); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("EncodeQRPNG(\"\") err = %v, want ErrEmptyPayload", err)
	}
	if _, err := EncodeCode128PNG("", 200, 60); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("EncodeCode128PNG(\"\") err = %v, want ErrEmptyPayload", err)
	}
}

func TestEncodeQRSVG(t *testing.T) {
	svg, err := EncodeQRSVG("g-1", 80)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("QR SVG is not a complete svg element")
	}
	if !strings.Contains(svg, `width="80" height="80"`) {
		t.Error("QR SVG size attributes missing")
	}

	again, err := EncodeQRSVG("g-1", 80)
	if err != nil {
		t.Fatal(err)
	}
	if svg != again {
		t.Error("EncodeQRSVG is not deterministic")
	}
}

func TestEncodeQRPNG(t *testing.T) {
	data, err := EncodeQRPNG("g-1", 256)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("QR PNG missing PNG signature")
	}
}

func TestEncodeCode128PNG(t *testing.T) {
	data, err := EncodeCode128PNG("evt1234-1700000000000", 400, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Code128 PNG missing PNG signature")
	}
}
