package raster

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/validity-events/backend/internal/token"
)

const wellFormed = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 200 100">` +
	`<rect width="100%" height="100%" fill="#ffffff" />` +
	`<rect x="10" y="10" width="2" height="80" fill="#000000" /></svg>`

func TestRasterizeWellFormed(t *testing.T) {
	r := NewSVGRasterizer()
	out, err := r.Rasterize(context.Background(), wellFormed)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty raster buffer")
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRasterizeTokenMarkup(t *testing.T) {
	svg, err := token.EncodeLinearSVG("evt1234-1700000000000", token.DefaultLinearOptions())
	if err != nil {
		t.Fatal(err)
	}
	out, err := NewSVGRasterizer().Rasterize(context.Background(), svg)
	if err != nil {
		t.Fatalf("Rasterize(linear token): %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRasterizeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"truncated element", `<svg xmlns="http://www.w3.org/2000/svg"><rect`},
		{"not xml", "definitely not svg"},
		{"no viewport", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`},
	}
	r := NewSVGRasterizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Rasterize(context.Background(), tt.markup)
			if err == nil {
				t.Fatal("expected error")
			}
			var rerr *RasterizationError
			if !errors.As(err, &rerr) {
				t.Errorf("err = %T, want *RasterizationError", err)
			}
		})
	}
}

func TestRasterizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSVGRasterizer().Rasterize(ctx, wellFormed); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRasterizeConcurrent(t *testing.T) {
	r := NewSVGRasterizer()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Rasterize(context.Background(), wellFormed)
			if err != nil {
				errs <- err
				return
			}
			if len(out) == 0 {
				errs <- errors.New("empty buffer")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent rasterize: %v", err)
	}
}
