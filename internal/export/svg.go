package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) add(x, y float64) {
	b.minX = min(b.minX, x)
	b.maxX = max(b.maxX, x)
	b.minY = min(b.minY, y)
	b.maxY = max(b.maxY, y)
}

// pad widens the box by 10% on every side.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

// TrajectoryToSVG draws the path through poses with the start marked by a
// circle and the target by a cross. Fewer than two poses yield "".
func TrajectoryToSVG(poses []dynamo.Pose, target dynamo.Target, width, height int, strokeColor string) string {
	if len(poses) < 2 {
		return ""
	}

	b := bounds{minX: poses[0].X, maxX: poses[0].X, minY: poses[0].Y, maxY: poses[0].Y}
	for _, p := range poses {
		b.add(p.X, p.Y)
	}
	b.add(float64(target.X), float64(target.Y))
	b.pad()

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	project := func(x, y float64) (float64, float64) {
		return (x - b.minX) / rangeX * float64(width),
			float64(height) - (y-b.minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range poses {
		x, y := project(p.X, p.Y)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	sx, sy := project(poses[0].X, poses[0].Y)
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"none\" stroke=\"#00ffff\"/>\n", sx, sy)

	tx, ty := project(float64(target.X), float64(target.Y))
	fmt.Fprintf(&sb, "<path stroke=\"#ff4444\" stroke-width=\"2\" d=\"M%.1f,%.1f L%.1f,%.1f M%.1f,%.1f L%.1f,%.1f\"/>\n",
		tx-5, ty, tx+5, ty, tx, ty-5, tx, ty+5)

	sb.WriteString("</svg>")
	return sb.String()
}
