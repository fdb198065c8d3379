package gridworld

import (
	"image"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"
)

const (
	squareSize = 80.0
	margin     = 10.0
)

// Render draws the grid to an image, shading each cell by value and
// marking the action chosen by policy. Either function may be nil.
func (g *GridWorld) Render(value func(Cell) float64,
	policy func(Cell) (Action, bool)) image.Image {
	return g.draw(value, policy).Image()
}

// SavePNG renders the grid as Render does and saves it as a PNG file
func (g *GridWorld) SavePNG(path string, value func(Cell) float64,
	policy func(Cell) (Action, bool)) error {
	return g.draw(value, policy).SavePNG(path)
}

// EncodePNG renders the grid as Render does and writes it as a PNG to w
func (g *GridWorld) EncodePNG(w io.Writer, value func(Cell) float64,
	policy func(Cell) (Action, bool)) error {
	return g.draw(value, policy).EncodePNG(w)
}

func (g *GridWorld) draw(value func(Cell) float64,
	policy func(Cell) (Action, bool)) *gg.Context {
	width := int(2*margin + float64(g.c)*squareSize)
	height := int(2*margin + float64(g.r)*squareSize)
	dc := gg.NewContext(width, height)

	dc.SetRGB(0, 0, 0)
	dc.Clear()

	// Scale shading by the largest magnitude value on the grid
	scale := 0.0
	if value != nil {
		for _, s := range g.States() {
			if s != Terminal {
				scale = math.Max(scale, math.Abs(value(s)))
			}
		}
	}

	for row := 0; row < g.r; row++ {
		for col := 0; col < g.c; col++ {
			x := margin + float64(col)*squareSize
			y := margin + float64(row)*squareSize
			s := Cell{row, col}

			if g.IsWall(row, col) {
				dc.SetRGB(0.4, 0.4, 0.4)
				dc.DrawRectangle(x, y, squareSize, squareSize)
				dc.Fill()
				continue
			}

			v := 0.0
			if value != nil {
				v = value(s)
			}
			setValueColour(dc, v, scale)
			dc.DrawRectangle(x, y, squareSize, squareSize)
			dc.Fill()

			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, squareSize, squareSize)
			dc.Stroke()

			cx, cy := x+squareSize/2, y+squareSize/2
			if reward, ok := g.ExitReward(s); ok {
				dc.DrawRectangle(x+6, y+6, squareSize-12, squareSize-12)
				dc.Stroke()
				v = reward
			}
			if value != nil || g.isExit(s) {
				dc.DrawStringAnchored(formatValue(v), cx, cy, 0.5, 0.5)
			}
			if s == g.start {
				dc.DrawStringAnchored("S", x+8, y+12, 0, 0.5)
			}

			if policy != nil {
				if a, ok := policy(s); ok {
					drawArrow(dc, a, cx, cy)
				}
			}
		}
	}
	return dc
}

func (g *GridWorld) isExit(s Cell) bool {
	_, ok := g.ExitReward(s)
	return ok
}

func setValueColour(dc *gg.Context, v, scale float64) {
	if scale == 0 {
		dc.SetRGB(0, 0, 0)
		return
	}
	intensity := math.Min(math.Abs(v)/scale, 1) * 0.8
	if v < 0 {
		dc.SetRGB(intensity, 0, 0)
	} else {
		dc.SetRGB(0, intensity, 0)
	}
}

func drawArrow(dc *gg.Context, a Action, cx, cy float64) {
	const offset = squareSize * 0.3
	var dx, dy float64
	switch a {
	case North:
		dy = -offset
	case South:
		dy = offset
	case West:
		dx = -offset
	case East:
		dx = offset
	default:
		return
	}

	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawLine(cx+dx*0.5, cy+dy*0.5, cx+dx, cy+dy)
	dc.Stroke()
	dc.DrawCircle(cx+dx, cy+dy, 3)
	dc.Fill()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
