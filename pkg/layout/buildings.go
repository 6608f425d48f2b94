package layout

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

const (
	jitter          = 5.0 // max offset of a building from its cell center
	minFootprint    = 5.0
	footprintRange  = 9.0
	minHeight       = 10.0
	heightRange     = 48.0
	accentBandProb  = 0.35
	accentBandThick = 0.12
	antennaProb     = 0.5
)

// Building is one placed tower. Position is the footprint center on the
// ground; the box spans [0, Height] vertically.
type Building struct {
	ID       string      `json:"id"`
	Position geo.Point2D `json:"position"`
	Width    float64     `json:"width"`
	Depth    float64     `json:"depth"`
	Height   float64     `json:"height"`
	Roof     RoofKit     `json:"roof"`
}

// HalfExtents returns the half size of the building's collision box.
func (b Building) HalfExtents() geo.Vec3 {
	return geo.V3(b.Width/2, b.Height/2, b.Depth/2)
}

// Center returns the 3D center of the building's collision box.
func (b Building) Center() geo.Vec3 {
	return geo.V3(b.Position.X, b.Height/2, b.Position.Z)
}

// RoofKit is the rooftop clutter: an AC unit and sometimes an antenna.
// Offsets are relative to the roof center.
type RoofKit struct {
	ACOffset   geo.Vec3 `json:"ac_offset"`
	ACSize     geo.Vec3 `json:"ac_size"`
	Antenna    bool     `json:"antenna"`
	AntennaPos geo.Vec3 `json:"antenna_offset,omitempty"`
}

// AccentBand is a thin decorative ring around a building. It has no
// collision volume.
type AccentBand struct {
	BuildingID string      `json:"building_id"`
	Position   geo.Point2D `json:"position"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Depth      float64     `json:"depth"`
}

// Placement is the output of the structure pass.
type Placement struct {
	Buildings []Building    `json:"buildings"`
	Bands     []AccentBand  `json:"bands"`
	Parks     []geo.Point2D `json:"parks"`
	Cap       int           `json:"cap"`
}

// StructureCap returns floor(cells²·buildingDensity).
func StructureCap(g Grid) int {
	cells := g.CellCount()
	return int(math.Floor(float64(cells*cells) * g.Params.BuildingDensity))
}

// PlaceStructures walks the block centers and, per cell, either records a
// park or emits a building. Iteration stops once the structure cap is
// reached; park cells never count against the cap.
func PlaceStructures(g Grid, rng *rand.Rand) (Placement, *validation.Report) {
	report := validation.NewReport()
	p := Placement{Cap: StructureCap(g)}

	for _, cell := range g.Cells() {
		if len(p.Buildings) >= p.Cap {
			break
		}
		if rng.Float64() < g.Params.ParkProbability {
			p.Parks = append(p.Parks, cell)
			continue
		}

		pos := geo.Pt(
			cell.X+(rng.Float64()*2*jitter-jitter),
			cell.Z+(rng.Float64()*2*jitter-jitter),
		)
		w := minFootprint + rng.Float64()*footprintRange
		d := minFootprint + rng.Float64()*footprintRange
		h := minHeight + rng.Float64()*heightRange

		b := Building{
			ID:       fmt.Sprintf("bldg_%05d", len(p.Buildings)),
			Position: pos,
			Width:    w,
			Depth:    d,
			Height:   h,
			Roof:     roofKit(w, h, d, rng),
		}
		p.Buildings = append(p.Buildings, b)

		if rng.Float64() < accentBandProb {
			p.Bands = append(p.Bands, AccentBand{
				BuildingID: b.ID,
				Position:   pos,
				Y:          h * (0.3 + rng.Float64()*0.5),
				Width:      w * 1.02,
				Depth:      d * 1.02,
			})
		}
	}

	report.AddInfo(validation.Result{
		Level: validation.LevelSpatial,
		Message: fmt.Sprintf("placed %d buildings (cap %d), %d parks, %d accent bands",
			len(p.Buildings), p.Cap, len(p.Parks), len(p.Bands)),
	})
	return p, report
}

func roofKit(w, h, d float64, rng *rand.Rand) RoofKit {
	k := RoofKit{
		ACSize: geo.V3(w*(0.2+rng.Float64()*0.2), 0.4, d*(0.2+rng.Float64()*0.2)),
	}
	k.ACOffset = geo.V3((rng.Float64()-0.5)*w*0.3, 0.25, (rng.Float64()-0.5)*d*0.3)
	if rng.Float64() < antennaProb {
		k.Antenna = true
		k.AntennaPos = geo.V3((rng.Float64()-0.5)*w*0.3, 0.8, (rng.Float64()-0.5)*d*0.3)
	}
	return k
}
