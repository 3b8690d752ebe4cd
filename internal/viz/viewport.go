package viz

import "math"

// Viewport maps arena coordinates, origin bottom-left with y up, onto
// canvas dots, origin top-left with y down.
type Viewport struct {
	ArenaWidth, ArenaHeight float64
	DotsX, DotsY            int
}

func (v Viewport) scale() (float64, float64) {
	sx := float64(v.DotsX-1) / v.ArenaWidth
	sy := float64(v.DotsY-1) / v.ArenaHeight
	return sx, sy
}

func (v Viewport) ToCanvas(x, y float64) (int, int) {
	sx, sy := v.scale()
	return int(math.Round(x * sx)), int(math.Round((v.ArenaHeight - y) * sy))
}

func (v Viewport) ToWorld(dx, dy int) (float64, float64) {
	sx, sy := v.scale()
	if sx == 0 || sy == 0 {
		return 0, 0
	}
	return float64(dx) / sx, v.ArenaHeight - float64(dy)/sy
}

// CellToWorld maps the centre of a terminal cell on the canvas to arena
// coordinates.
func (v Viewport) CellToWorld(col, row int) (float64, float64) {
	return v.ToWorld(col*2+1, row*4+2)
}

func (v Viewport) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= v.ArenaWidth && y <= v.ArenaHeight
}
