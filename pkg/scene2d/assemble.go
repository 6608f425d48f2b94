package scene2d

import (
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/layout"
)

// Input bundles the generation outputs the minimap reads.
type Input struct {
	Params    *analytics.ResolvedParameters
	Grid      layout.Grid
	Placement layout.Placement
	Trees     layout.TreePlacement
	Lights    layout.StreetLights
	Agents    AgentSummary
	Markers   []Marker
	Player    *geo.Vec3
}

// Assemble2D converts generation outputs into a 2D scene for the minimap.
// Trees are summarized as counts; buildings, parks, and lights keep their
// ground coordinates.
func Assemble2D(in Input) *Scene2D {
	s := &Scene2D{
		Metadata:  assembleMetadata(in.Params),
		Roads:     in.Grid.Lines(),
		Buildings: assembleBuildings(in.Placement.Buildings),
		Parks:     pointsToCoords(in.Placement.Parks),
		Lights:    assembleLights(in.Lights),
		Trees:     assembleTreeSummary(in.Trees),
		Agents:    in.Agents,
		Markers:   in.Markers,
		Summary:   assembleBuildingSummary(in.Placement, in.Params.World),
	}
	if s.Roads == nil {
		s.Roads = []float64{}
	}
	if in.Player != nil {
		s.Player = &[2]float64{in.Player.X, in.Player.Z}
	}
	return s
}

func assembleMetadata(p *analytics.ResolvedParameters) Metadata {
	return Metadata{
		Seed:          p.Seed,
		Weather:       p.Weather,
		Extent:        p.World.Extent,
		RoadStep:      p.World.RoadStep,
		LaneHalfWidth: p.World.LaneHalfWidth,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

func assembleBuildings(buildings []layout.Building) []Building2D {
	result := make([]Building2D, 0, len(buildings))
	for _, b := range buildings {
		result = append(result, Building2D{
			ID:       b.ID,
			Position: [2]float64{b.Position.X, b.Position.Z},
			Width:    b.Width,
			Depth:    b.Depth,
			Height:   b.Height,
		})
	}
	return result
}

func assembleLights(l layout.StreetLights) [][2]float64 {
	coords := make([][2]float64, len(l.Poles))
	for i, p := range l.Poles {
		coords[i] = [2]float64{p.X, p.Z}
	}
	return coords
}

func assembleTreeSummary(tp layout.TreePlacement) TreeSummary {
	var ts TreeSummary
	for _, t := range tp.Trees {
		switch t.Context {
		case layout.TreeScatter:
			ts.Scatter++
		case layout.TreePark:
			ts.Park++
		}
	}
	ts.Total = ts.Scatter + ts.Park
	ts.Requested = tp.Requested
	return ts
}

func assembleBuildingSummary(p layout.Placement, w analytics.WorldParameters) BuildingSummary {
	bs := BuildingSummary{Count: len(p.Buildings), Cap: p.Cap, Bands: len(p.Bands)}
	if bs.Count == 0 {
		return bs
	}
	var total, footprint float64
	for _, b := range p.Buildings {
		total += b.Height
		footprint += b.Width * b.Depth
		if b.Height > bs.MaxHeight {
			bs.MaxHeight = b.Height
		}
	}
	bs.AvgHeight = total / float64(bs.Count)
	if area := w.Area(); area > 0 {
		bs.Coverage = footprint / area
	}
	return bs
}

// pointsToCoords converts a []geo.Point2D to a [][2]float64 coordinate list.
func pointsToCoords(pts []geo.Point2D) [][2]float64 {
	coords := make([][2]float64, len(pts))
	for i, pt := range pts {
		coords[i] = [2]float64{pt.X, pt.Z}
	}
	return coords
}
