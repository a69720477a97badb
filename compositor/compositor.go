// Package compositor renders garden layouts into raster previews: a
// deterministic procedural background, grid-to-pixel placement with depth
// scaling, and source-over sprite blending.
package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	"garden_backend/logging"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// groundContactRatio is how much of the sprite's height sits above the
// anchor point, so the plant appears rooted slightly behind its grid cell
// rather than floating on it.
const groundContactRatio = 0.8

// PlantPosition places one sprite on the logical grid. GridY doubles as
// the depth cue: larger Y is nearer the viewer.
type PlantPosition struct {
	SpriteRef string
	GridX     float64 // 0..40
	GridY     float64 // 0..30
	Scale     float64 // explicit caller scale, > 0
	Label     string
}

// Compositor layers plant sprites onto a procedurally generated base
// canvas. Each call owns its pixel buffer; results are handed off as
// encoded bytes.
//
// Thread Safety: Compositor is safe for concurrent use. Every composite
// allocates its own canvas; the sprite store is read-only.
type Compositor struct {
	sprites SpriteStore
	logger  *logging.Logger
}

// NewCompositor creates a compositor over the given sprite store.
func NewCompositor(sprites SpriteStore, logger *logging.Logger) (*Compositor, error) {
	if sprites == nil {
		return nil, errors.New("compositor: sprite store cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Compositor{
		sprites: sprites,
		logger:  logger.Named("compositor"),
	}, nil
}

// PlacedSprite records where a sprite landed in pixel space, for callers
// that need the final rectangles (debug overlays, hit maps).
type PlacedSprite struct {
	Label  string
	Ref    string
	Bounds image.Rectangle
}

// Result is a finished composite: the encoded PNG plus the placement list.
type Result struct {
	PNG    []byte
	Placed []PlacedSprite
}

// CompositeGarden renders the positions onto a fresh base canvas and
// returns the encoded image.
//
// Sprites are drawn strictly in input order, so later entries draw over
// earlier ones; callers order far-to-near to control stacking. Each sprite
// is scaled by DepthScale(gridY) times its explicit scale, resized
// preserving aspect ratio, and anchored with its horizontal center at the
// pixel X and 80% of its height above the pixel Y.
//
// A missing or undecodable sprite is logged and skipped. A sprite with
// degenerate dimensions aborts with a CanvasSizeError.
func (c *Compositor) CompositeGarden(positions []PlantPosition) (*Result, error) {
	canvas := CreateBaseCanvas()
	placed := make([]PlacedSprite, 0, len(positions))

	for _, pos := range positions {
		sprite, err := c.sprites.Load(pos.SpriteRef)
		if err != nil {
			if errors.Is(err, ErrAssetNotFound) {
				c.logger.Warn("sprite missing, skipping placement",
					zap.String("ref", pos.SpriteRef),
					zap.String("label", pos.Label))
				continue
			}
			return nil, err
		}

		rect, err := c.drawSprite(canvas, sprite, pos)
		if err != nil {
			return nil, err
		}

		placed = append(placed, PlacedSprite{
			Label:  pos.Label,
			Ref:    pos.SpriteRef,
			Bounds: rect,
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}

	return &Result{PNG: buf.Bytes(), Placed: placed}, nil
}

// drawSprite scales one sprite and blends it onto the canvas with
// source-over alpha compositing.
func (c *Compositor) drawSprite(canvas *image.RGBA, sprite image.Image, pos PlantPosition) (image.Rectangle, error) {
	bounds := sprite.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return image.Rectangle{}, &CanvasSizeError{Ref: pos.SpriteRef, Width: srcW, Height: srcH}
	}

	scale := pos.Scale
	if scale <= 0 {
		scale = 1.0
	}
	scale *= DepthScale(pos.GridY)

	dstW := int(float64(srcW) * scale)
	dstH := int(float64(srcH) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	px, py := GridToPixels(pos.GridX, pos.GridY)
	left := int(px) - dstW/2
	top := int(py) - int(float64(dstH)*groundContactRatio)
	rect := image.Rect(left, top, left+dstW, top+dstH)

	scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), sprite, bounds, draw.Over, nil)

	draw.Draw(canvas, rect, scaled, image.Point{}, draw.Over)

	return rect, nil
}
