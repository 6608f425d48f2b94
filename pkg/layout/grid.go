package layout

import (
	"math"

	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

// RoadMargin is the clearance beyond the lane half-width that still counts as
// being on the road.
const RoadMargin = 0.6

// Grid is the uniform road grid over the city square [-extent, extent]².
// Road centerlines run along both axes at every multiple of RoadStep.
type Grid struct {
	Params analytics.WorldParameters
}

// NewGrid creates the grid for the given world parameters.
func NewGrid(p analytics.WorldParameters) Grid {
	return Grid{Params: p}
}

// Lines returns the road centerline offsets, shared by both axes, in
// ascending order.
func (g Grid) Lines() []float64 {
	step, ext := g.Params.RoadStep, g.Params.Extent
	if step <= 0 || ext <= 0 {
		return nil
	}
	lo := int(math.Ceil(-ext / step))
	hi := int(math.Floor(ext / step))
	lines := make([]float64, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		lines = append(lines, float64(k)*step)
	}
	return lines
}

// Intersections returns every crossing of two centerlines, X-major.
func (g Grid) Intersections() []geo.Point2D {
	lines := g.Lines()
	pts := make([]geo.Point2D, 0, len(lines)*len(lines))
	for _, x := range lines {
		for _, z := range lines {
			pts = append(pts, geo.Pt(x, z))
		}
	}
	return pts
}

// CellCount returns the number of road-step cells spanning the city along
// one axis, floor(2·extent/roadStep).
func (g Grid) CellCount() int {
	if g.Params.RoadStep <= 0 {
		return 0
	}
	return int(math.Floor(2 * g.Params.Extent / g.Params.RoadStep))
}

// Cells returns the block centers: the midpoints between adjacent
// centerlines on both axes, X-major.
func (g Grid) Cells() []geo.Point2D {
	lines := g.Lines()
	if len(lines) < 2 {
		return nil
	}
	half := g.Params.RoadStep / 2
	cells := make([]geo.Point2D, 0, (len(lines)-1)*(len(lines)-1))
	for _, x := range lines[:len(lines)-1] {
		for _, z := range lines[:len(lines)-1] {
			cells = append(cells, geo.Pt(x+half, z+half))
		}
	}
	return cells
}

// DistanceToLine returns the distance from v to the nearest centerline
// offset along one axis.
func (g Grid) DistanceToLine(v float64) float64 {
	step := g.Params.RoadStep
	return math.Abs(math.Round(v/step)*step - v)
}

// NearRoad reports whether (x, z) is within laneHalfWidth + RoadMargin of a
// centerline along either axis.
func (g Grid) NearRoad(x, z float64) bool {
	clear := g.Params.LaneHalfWidth + RoadMargin
	return g.DistanceToLine(x) < clear || g.DistanceToLine(z) < clear
}

// Contains reports whether p lies inside the city square.
func (g Grid) Contains(p geo.Point2D) bool {
	return p.InSquare(g.Params.Extent)
}
