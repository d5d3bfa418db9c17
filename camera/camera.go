// Package camera maps between screen pixels and fluid grid cells.
package camera

// Camera maps a fixed viewport onto the simulation grid. Each cell covers a
// Precision×Precision block of pixels, anchored at the top-left corner.
type Camera struct {
	// Pixels per grid cell along each axis
	Precision int

	// Grid dimensions in cells
	GridW, GridH int
}

// New creates a camera for a gridW×gridH grid drawn at precision pixels per cell.
// Precision below 1 is treated as 1.
func New(precision, gridW, gridH int) *Camera {
	if precision < 1 {
		precision = 1
	}
	return &Camera{Precision: precision, GridW: gridW, GridH: gridH}
}

// ScreenW returns the viewport width in pixels covered by the grid.
func (c *Camera) ScreenW() int { return c.GridW * c.Precision }

// ScreenH returns the viewport height in pixels covered by the grid.
func (c *Camera) ScreenH() int { return c.GridH * c.Precision }

// ScreenToGrid converts a pixel position to the cell under it. Negative
// coordinates map to cell 0; the result may lie beyond the grid on the far
// side, use InGrid or IsInteriorTarget before touching the fluid.
func (c *Camera) ScreenToGrid(sx, sy float32) (gx, gy int) {
	return toCell(sx, c.Precision), toCell(sy, c.Precision)
}

// GridToScreen returns the top-left pixel of cell (gx, gy).
func (c *Camera) GridToScreen(gx, gy int) (sx, sy float32) {
	return float32(gx * c.Precision), float32(gy * c.Precision)
}

// BrushRadiusCells converts a pointer radius in pixels to whole cells.
func (c *Camera) BrushRadiusCells(radiusPixels int) int {
	if radiusPixels <= 0 {
		return 0
	}
	return radiusPixels / c.Precision
}

// InGrid reports whether (gx, gy) is a valid cell.
func (c *Camera) InGrid(gx, gy int) bool {
	return gx >= 0 && gy >= 0 && gx < c.GridW && gy < c.GridH
}

// IsInteriorTarget reports whether pointer injection is allowed at (gx, gy).
// The gate is stricter than the solver's interior by one cell on the low
// side, so strokes never start on the first interior row or column.
func (c *Camera) IsInteriorTarget(gx, gy int) bool {
	return gx > 1 && gx < c.GridW-1 && gy > 1 && gy < c.GridH-1
}

func toCell(v float32, precision int) int {
	if v < 0 {
		return 0
	}
	return int(v) / precision
}
