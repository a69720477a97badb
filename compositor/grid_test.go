package compositor

import (
	"math"
	"testing"
)

func TestGridToPixelsOrigin(t *testing.T) {
	px, py := GridToPixels(0, 0)
	if px != 0 || py != 0 {
		t.Errorf("GridToPixels(0, 0) = (%v, %v), want (0, 0)", px, py)
	}
}

func TestGridToPixelsLinear(t *testing.T) {
	tests := []struct {
		name   string
		gridX  float64
		gridY  float64
		wantPX float64
		wantPY float64
	}{
		{"one cell", 1, 1, CellWidth, CellHeight},
		{"grid corner", GridColumns, GridRows, CanvasWidth, CanvasHeight},
		{"midpoint", 20, 15, float64(CanvasWidth) / 2, float64(CanvasHeight) / 2},
		{"fractional", 2.5, 0.5, 2.5 * CellWidth, 0.5 * CellHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := GridToPixels(tt.gridX, tt.gridY)
			if math.Abs(px-tt.wantPX) > 1e-9 || math.Abs(py-tt.wantPY) > 1e-9 {
				t.Errorf("GridToPixels(%v, %v) = (%v, %v), want (%v, %v)",
					tt.gridX, tt.gridY, px, py, tt.wantPX, tt.wantPY)
			}
		})
	}

	// Linearity: f(a+b) = f(a) + f(b).
	x1, y1 := GridToPixels(3, 7)
	x2, y2 := GridToPixels(5, 11)
	x3, y3 := GridToPixels(8, 18)
	if math.Abs(x1+x2-x3) > 1e-9 || math.Abs(y1+y2-y3) > 1e-9 {
		t.Error("GridToPixels is not linear")
	}
}

func TestDepthScale(t *testing.T) {
	tests := []struct {
		name  string
		gridY float64
		want  float64
	}{
		{"front row keeps full size", 0, 1.0},
		{"back row shrinks thirty percent", GridRows, 0.7},
		{"mid row shrinks fifteen percent", 15, 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DepthScale(tt.gridY); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DepthScale(%v) = %v, want %v", tt.gridY, got, tt.want)
			}
		})
	}
}

func TestCanvasDimensionsModelAligned(t *testing.T) {
	if CanvasWidth%64 != 0 {
		t.Errorf("CanvasWidth %d is not a multiple of 64", CanvasWidth)
	}
	if CanvasHeight%64 != 0 {
		t.Errorf("CanvasHeight %d is not a multiple of 64", CanvasHeight)
	}
}
