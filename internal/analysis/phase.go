package analysis

import (
	"strings"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// Point is a point in a 2D projection of state space.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait projects states onto components xIdx and yIdx. It returns
// nil when either index is out of range.
func NewPhasePortrait(states []dynamo.State, xIdx, yIdx int) *PhasePortrait2D {
	if len(states) == 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	for _, x := range states {
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// DelayEmbedding plots a scalar series against itself lag samples earlier.
// This is the usual phase portrait for one-dimensional delay systems such as
// Mackey-Glass.
func DelayEmbedding(values []float64, lag int) *PhasePortrait2D {
	if lag <= 0 || lag >= len(values) {
		return nil
	}

	portrait := &PhasePortrait2D{Points: make([]Point, 0, len(values)-lag)}
	for i := lag; i < len(values); i++ {
		portrait.Points = append(portrait.Points, Point{X: values[i-lag], Y: values[i]})
	}
	return portrait
}

// Bounds returns the extent of the portrait.
func (p *PhasePortrait2D) Bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}
	return minX, maxX, minY, maxY
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := portrait.Bounds()

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records points where a scalar series crosses a threshold
// upwards, interpolating the recorded components to the crossing.
func PoincareSection(states []dynamo.State, crossIdx int, threshold float64, recordX, recordY int) []Point {
	var points []Point
	for i := 1; i < len(states); i++ {
		prev, curr := states[i-1], states[i]
		if crossIdx >= len(curr) || recordX >= len(curr) || recordY >= len(curr) {
			return nil
		}
		a, b := prev[crossIdx], curr[crossIdx]
		if a < threshold && b >= threshold {
			frac := (threshold - a) / (b - a)
			points = append(points, Point{
				X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
			})
		}
	}
	return points
}
