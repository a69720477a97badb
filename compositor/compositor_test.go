package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"garden_backend/logging"
)

// fakeSpriteStore serves in-memory sprites keyed by reference.
type fakeSpriteStore struct {
	sprites map[string]image.Image
}

func (f *fakeSpriteStore) Load(ref string) (image.Image, error) {
	img, ok := f.sprites[ref]
	if !ok {
		return nil, &AssetNotFoundError{Ref: ref}
	}
	return img, nil
}

// solidSprite builds a fully opaque single-color sprite for testing.
func solidSprite(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestCompositor(t *testing.T, sprites map[string]image.Image) *Compositor {
	t.Helper()
	c, err := NewCompositor(&fakeSpriteStore{sprites: sprites}, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	return c
}

func TestCreateBaseCanvasDeterministic(t *testing.T) {
	first := CreateBaseCanvas()
	second := CreateBaseCanvas()

	if !first.Bounds().Eq(image.Rect(0, 0, CanvasWidth, CanvasHeight)) {
		t.Errorf("canvas bounds = %v", first.Bounds())
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("base canvas is not deterministic across calls")
	}
}

func TestCompositeEmptyPositions(t *testing.T) {
	c := newTestCompositor(t, nil)

	result, err := c.CompositeGarden(nil)
	if err != nil {
		t.Fatalf("CompositeGarden(nil): %v", err)
	}
	if len(result.Placed) != 0 {
		t.Errorf("expected no placed sprites, got %d", len(result.Placed))
	}

	img, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != CanvasWidth || img.Bounds().Dy() != CanvasHeight {
		t.Errorf("output dimensions = %dx%d, want %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), CanvasWidth, CanvasHeight)
	}

	// An empty composite is exactly the base canvas.
	base := CreateBaseCanvas()
	var baseBuf bytes.Buffer
	if err := png.Encode(&baseBuf, base); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(result.PNG, baseBuf.Bytes()) {
		t.Error("empty composite differs from base canvas")
	}
}

func TestCompositePlacesSprite(t *testing.T) {
	red := color.RGBA{R: 200, G: 20, B: 20, A: 255}
	c := newTestCompositor(t, map[string]image.Image{
		"rose.png": solidSprite(100, 100, red),
	})

	result, err := c.CompositeGarden([]PlantPosition{
		{SpriteRef: "rose.png", GridX: 20, GridY: 15, Scale: 1.0, Label: "Rose"},
	})
	if err != nil {
		t.Fatalf("CompositeGarden: %v", err)
	}
	if len(result.Placed) != 1 {
		t.Fatalf("placed = %d, want 1", len(result.Placed))
	}

	// Depth scale at row 15 is 0.85, so the 100px sprite becomes 85px.
	got := result.Placed[0].Bounds
	if got.Dx() != 85 || got.Dy() != 85 {
		t.Errorf("sprite scaled to %dx%d, want 85x85", got.Dx(), got.Dy())
	}

	// Anchor: horizontal center at pixel X, 80% of height above pixel Y.
	px, py := GridToPixels(20, 15)
	wantLeft := int(px) - 85/2
	wantTop := int(py) - int(float64(85)*0.8)
	if got.Min.X != wantLeft || got.Min.Y != wantTop {
		t.Errorf("sprite anchored at (%d, %d), want (%d, %d)",
			got.Min.X, got.Min.Y, wantLeft, wantTop)
	}

	// The anchored region actually contains sprite pixels.
	img, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatal(err)
	}
	center := got.Min.Add(image.Pt(got.Dx()/2, got.Dy()/2))
	r, _, _, _ := img.At(center.X, center.Y).RGBA()
	if uint8(r>>8) < 150 {
		t.Errorf("expected red sprite pixel at %v, got %v", center, img.At(center.X, center.Y))
	}
}

func TestCompositeStackingOrder(t *testing.T) {
	red := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	blue := color.RGBA{R: 0, G: 0, B: 255, A: 255}
	c := newTestCompositor(t, map[string]image.Image{
		"red.png":  solidSprite(50, 50, red),
		"blue.png": solidSprite(50, 50, blue),
	})

	// Same placement: the later entry must draw over the earlier one.
	pos := []PlantPosition{
		{SpriteRef: "red.png", GridX: 20, GridY: 15, Scale: 1.0},
		{SpriteRef: "blue.png", GridX: 20, GridY: 15, Scale: 1.0},
	}
	result, err := c.CompositeGarden(pos)
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatal(err)
	}
	rect := result.Placed[1].Bounds
	center := rect.Min.Add(image.Pt(rect.Dx()/2, rect.Dy()/2))
	_, _, b, _ := img.At(center.X, center.Y).RGBA()
	if uint8(b>>8) < 150 {
		t.Errorf("expected blue on top at %v, got %v", center, img.At(center.X, center.Y))
	}
}

func TestCompositeSkipsMissingSprite(t *testing.T) {
	green := color.RGBA{R: 30, G: 180, B: 60, A: 255}
	c := newTestCompositor(t, map[string]image.Image{
		"fern.png": solidSprite(40, 60, green),
	})

	result, err := c.CompositeGarden([]PlantPosition{
		{SpriteRef: "missing.png", GridX: 5, GridY: 5, Scale: 1.0, Label: "Ghost"},
		{SpriteRef: "fern.png", GridX: 10, GridY: 10, Scale: 1.0, Label: "Fern"},
	})
	if err != nil {
		t.Fatalf("missing sprite must not abort the composite: %v", err)
	}
	if len(result.Placed) != 1 || result.Placed[0].Label != "Fern" {
		t.Errorf("placed = %+v, want only Fern", result.Placed)
	}
}

func TestCompositeDegenerateSpriteFatal(t *testing.T) {
	c := newTestCompositor(t, map[string]image.Image{
		"broken.png": image.NewRGBA(image.Rect(0, 0, 0, 0)),
	})

	_, err := c.CompositeGarden([]PlantPosition{
		{SpriteRef: "broken.png", GridX: 5, GridY: 5, Scale: 1.0},
	})
	var sizeErr *CanvasSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected *CanvasSizeError, got %v", err)
	}
	if sizeErr.Ref != "broken.png" {
		t.Errorf("error ref = %q", sizeErr.Ref)
	}
}
