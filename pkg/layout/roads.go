package layout

import (
	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

// Axis names the direction a road or lane runs along.
type Axis string

const (
	AxisX Axis = "x"
	AxisZ Axis = "z"
)

const (
	roadShoulder = 0.2  // extra asphalt beyond both lanes
	dashSpacing  = 4.0  // distance between lane dash centers
	dashOverhang = 10.0 // dashes run this far past the city edge
	DashLength   = 1.8
	DashWidth    = 0.12
)

// RoadStrip is one asphalt strip centered on a grid line.
type RoadStrip struct {
	Axis   Axis        `json:"axis"`
	Center geo.Point2D `json:"center"`
	Length float64     `json:"length"`
	Width  float64     `json:"width"`
}

// RoadNetwork is the visual road layer: one strip per grid line per axis
// and the dashed lane stripes offset to both sides of every centerline.
type RoadNetwork struct {
	Strips []RoadStrip `json:"strips"`
	// Dashes grouped by the axis they run along, for instanced drawing.
	DashesX []geo.Point2D `json:"dashes_x"`
	DashesZ []geo.Point2D `json:"dashes_z"`
}

// Roads lays out the road strips and lane stripes for a grid.
func Roads(g Grid) RoadNetwork {
	p := g.Params
	width := p.LaneHalfWidth*2 + roadShoulder
	length := p.Extent * 2

	var net RoadNetwork
	lines := g.Lines()
	for _, v := range lines {
		net.Strips = append(net.Strips,
			RoadStrip{Axis: AxisX, Center: geo.Pt(0, v), Length: length, Width: width},
			RoadStrip{Axis: AxisZ, Center: geo.Pt(v, 0), Length: length, Width: width},
		)
	}

	n := int((2*(p.Extent+dashOverhang))/dashSpacing) + 1
	for _, v := range lines {
		for i := 0; i < n; i++ {
			along := -p.Extent - dashOverhang + float64(i)*dashSpacing
			net.DashesX = append(net.DashesX,
				geo.Pt(along, v-p.LaneHalfWidth),
				geo.Pt(along, v+p.LaneHalfWidth),
			)
			net.DashesZ = append(net.DashesZ,
				geo.Pt(v-p.LaneHalfWidth, along),
				geo.Pt(v+p.LaneHalfWidth, along),
			)
		}
	}
	return net
}
