package layout

import "github.com/ChicagoDave/threadweaver/pkg/geo"

const (
	sidewalkOffset = 1.8 // beyond the lane half-width
	PoleHeight     = 3.2
	PoleRadius     = 0.05
	LampRadius     = 0.12
)

// StreetLights holds instance transforms for the pole and lamp batches.
// Poles[i] and Heads[i] belong to the same light.
type StreetLights struct {
	Poles []geo.Vec3 `json:"poles"`
	Heads []geo.Vec3 `json:"heads"`
}

// Len returns the number of lights.
func (s StreetLights) Len() int {
	return len(s.Poles)
}

// PlaceStreetLights puts lights on the four sidewalk corners of each
// intersection, X-major, until count lights are placed.
func PlaceStreetLights(g Grid, count int) StreetLights {
	var out StreetLights
	if count <= 0 {
		return out
	}
	out.Poles = make([]geo.Vec3, 0, count)
	out.Heads = make([]geo.Vec3, 0, count)

	off := g.Params.LaneHalfWidth + sidewalkOffset
	corners := [4][2]float64{{-off, -off}, {off, -off}, {-off, off}, {off, off}}

	for _, ix := range g.Intersections() {
		for _, c := range corners {
			if len(out.Poles) >= count {
				return out
			}
			x, z := ix.X+c[0], ix.Z+c[1]
			out.Poles = append(out.Poles, geo.V3(x, PoleHeight/2, z))
			out.Heads = append(out.Heads, geo.V3(x, PoleHeight, z))
		}
	}
	return out
}
