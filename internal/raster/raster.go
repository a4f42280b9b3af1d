// Package raster converts SVG token markup into PNG buffers so tokens can be
// embedded in document formats that cannot render vector markup.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterizationError reports a failed vector-to-raster conversion. Callers
// are expected to recover by falling back to a textual token rendering.
type RasterizationError struct {
	Err error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterize svg: %v", e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// Rasterizer converts vector markup to a PNG buffer.
type Rasterizer interface {
	Rasterize(ctx context.Context, markup string) ([]byte, error)
}

// SVGRasterizer renders SVG markup off-screen and encodes it as PNG.
// It holds no state; one value can serve concurrent callers.
type SVGRasterizer struct{}

// NewSVGRasterizer returns an off-screen SVG rasterizer.
func NewSVGRasterizer() *SVGRasterizer {
	return &SVGRasterizer{}
}

// Rasterize parses markup, draws it onto a white canvas sized from the SVG
// viewport and returns the PNG encoding. Malformed markup yields a
// *RasterizationError; the method never panics past its boundary.
func (r *SVGRasterizer) Rasterize(ctx context.Context, markup string) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// The SVG renderer can panic on pathological path data; keep that
	// inside the error contract.
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &RasterizationError{Err: fmt.Errorf("renderer panic: %v", rec)}
		}
	}()

	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, &RasterizationError{Err: err}
	}

	w := int(icon.ViewBox.W + 0.5)
	h := int(icon.ViewBox.H + 0.5)
	if w <= 0 || h <= 0 {
		return nil, &RasterizationError{Err: fmt.Errorf("empty viewport %dx%d", w, h)}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.SetTarget(0, 0, float64(w), float64(h))
	icon.Draw(dasher, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RasterizationError{Err: err}
	}
	return buf.Bytes(), nil
}
