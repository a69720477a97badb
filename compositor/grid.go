package compositor

// Canvas and grid geometry. The canvas dimensions are multiples of 64 for
// compatibility with downstream image models; the logical grid is a fixed
// 40x30 unit space that garden layouts address.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1408

	GridColumns = 40
	GridRows    = 30

	// CellWidth and CellHeight are the fixed per-cell pixel constants.
	CellWidth  = float64(CanvasWidth) / GridColumns
	CellHeight = float64(CanvasHeight) / GridRows

	// DepthShrink is the maximum size reduction applied by depth scaling.
	DepthShrink = 0.3
)

// GridToPixels maps logical grid coordinates to pixel space. It is a pure
// linear function of the fixed cell constants: (0,0) maps to (0,0).
func GridToPixels(gridX, gridY float64) (float64, float64) {
	return gridX * CellWidth, gridY * CellHeight
}

// DepthScale computes the perspective size factor for a grid row:
// 1 - (gridY/maxGridY)*0.3. Placements shrink by up to 30% across the
// depth axis of the grid.
func DepthScale(gridY float64) float64 {
	return 1.0 - (gridY/float64(GridRows))*DepthShrink
}
