package scene

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/layout"
)

const (
	groundThickness = 0.01
	roadThickness   = 0.02
	dashThickness   = 0.01
	antennaHeight   = 1.6
	antennaRadius   = 0.04
	trunkRadius     = 0.12
	trunkHeight     = 1.2
	crownRadius     = 0.9
	crownHeight     = 1.8

	buildingColor = 0x1f2a38
	roadColor     = 0x1a1d22
	dashColor     = 0xf5f1e6
	poleColor     = 0x3a3f47
	lampColor     = 0xfff1c1
	groundColor   = 0x0a1426
	treeColor     = 0x2e6b3a
)

// GroundID is the id of the ground plane entity.
const GroundID = "ground"

// SetGround creates or resizes the ground plane to cover the city square.
func SetGround(g *Graph, extent float64) error {
	dims := geo.V3(extent*2, groundThickness, extent*2)
	if e, ok := g.Get(GroundID); ok {
		e.Dimensions = dims
		return nil
	}
	return g.Add(Entity{
		ID:         GroundID,
		Type:       EntityGround,
		Group:      GroupGround,
		Position:   geo.V3(0, -groundThickness, 0),
		Dimensions: dims,
		Material:   "ground",
		Color:      groundColor,
	})
}

// AddRoads adds the road strips and two instanced dash batches.
func AddRoads(g *Graph, net layout.RoadNetwork) error {
	var errs []error
	for i, s := range net.Strips {
		dims := geo.V3(s.Length, roadThickness, s.Width)
		if s.Axis == layout.AxisZ {
			dims = geo.V3(s.Width, roadThickness, s.Length)
		}
		errs = append(errs, g.Add(Entity{
			ID:         fmt.Sprintf("road_%s_%03d", s.Axis, i/2),
			Type:       EntityRoad,
			Group:      GroupRoads,
			Position:   geo.V3(s.Center.X, 0, s.Center.Z),
			Dimensions: dims,
			Material:   "asphalt",
			Color:      roadColor,
		}))
	}
	errs = append(errs,
		addDashes(g, "lane_dashes_x", net.DashesX, geo.V3(layout.DashLength, dashThickness, layout.DashWidth)),
		addDashes(g, "lane_dashes_z", net.DashesZ, geo.V3(layout.DashWidth, dashThickness, layout.DashLength)))
	return errors.Join(errs...)
}

func addDashes(g *Graph, id string, pts []geo.Point2D, dims geo.Vec3) error {
	if len(pts) == 0 {
		return nil
	}
	inst := make([]geo.Vec3, len(pts))
	for i, p := range pts {
		inst[i] = geo.V3(p.X, roadThickness, p.Z)
	}
	return g.Add(Entity{
		ID:         id,
		Type:       EntityLaneDash,
		Group:      GroupRoads,
		Dimensions: dims,
		Material:   "paint",
		Color:      dashColor,
		Instances:  inst,
	})
}

// AddBuilding adds a building's render group: the tower box and its roof
// kit. It returns the id of the tower node, which owns the collision pairing.
// When the tower cannot be added nothing else is.
func AddBuilding(g *Graph, b layout.Building) (string, error) {
	base := geo.V3(b.Position.X, 0, b.Position.Z)
	err := g.Add(Entity{
		ID:         b.ID,
		Type:       EntityBuilding,
		Group:      GroupBuildings,
		Position:   base,
		Dimensions: geo.V3(b.Width, b.Height, b.Depth),
		Material:   "facade",
		Color:      buildingColor,
	})
	if err != nil {
		return "", err
	}
	roof := base.Add(geo.V3(0, b.Height, 0))
	errs := []error{g.Add(Entity{
		ID:         b.ID + "_ac",
		Type:       EntityRoofUnit,
		Group:      GroupBuildings,
		Position:   roof.Add(b.Roof.ACOffset).Sub(geo.V3(0, b.Roof.ACSize.Y/2, 0)),
		Dimensions: b.Roof.ACSize,
		Material:   "metal",
		Metadata:   map[string]any{"parent": b.ID},
	})}
	if b.Roof.Antenna {
		errs = append(errs, g.Add(Entity{
			ID:         b.ID + "_antenna",
			Type:       EntityAntenna,
			Group:      GroupBuildings,
			Position:   roof.Add(geo.V3(b.Roof.AntennaPos.X, 0, b.Roof.AntennaPos.Z)),
			Dimensions: geo.V3(antennaRadius*2, antennaHeight, antennaRadius*2),
			Material:   "metal",
			Metadata:   map[string]any{"parent": b.ID},
		}))
	}
	return b.ID, errors.Join(errs...)
}

// AddBand adds a decorative accent band.
func AddBand(g *Graph, band layout.AccentBand, accent uint32) error {
	return g.Add(Entity{
		ID:         band.BuildingID + "_band",
		Type:       EntityBand,
		Group:      GroupBuildings,
		Position:   geo.V3(band.Position.X, band.Y, band.Position.Z),
		Dimensions: geo.V3(band.Width, 0.12, band.Depth),
		Material:   "emissive",
		Color:      accent,
		Metadata:   map[string]any{"parent": band.BuildingID},
	})
}

// AddStreetLights adds the pole and lamp batches.
func AddStreetLights(g *Graph, lights layout.StreetLights) error {
	if lights.Len() == 0 {
		return nil
	}
	poles := make([]geo.Vec3, len(lights.Poles))
	for i, p := range lights.Poles {
		poles[i] = geo.V3(p.X, 0, p.Z)
	}
	err := g.Add(Entity{
		ID:         "light_poles",
		Type:       EntityLightPole,
		Group:      GroupLights,
		Dimensions: geo.V3(layout.PoleRadius*2, layout.PoleHeight, layout.PoleRadius*2),
		Material:   "metal",
		Color:      poleColor,
		Instances:  poles,
	})
	heads := make([]geo.Vec3, len(lights.Heads))
	for i, h := range lights.Heads {
		heads[i] = geo.V3(h.X, h.Y-layout.LampRadius, h.Z)
	}
	return errors.Join(err, g.Add(Entity{
		ID:         "light_heads",
		Type:       EntityLightHead,
		Group:      GroupLights,
		Dimensions: geo.V3(layout.LampRadius*2, layout.LampRadius*2, layout.LampRadius*2),
		Material:   "emissive",
		Color:      lampColor,
		Instances:  heads,
	}))
}

// AddTrees adds one node per tree sized to its trunk and tallest crown.
func AddTrees(g *Graph, trees []layout.Tree) error {
	var errs []error
	for _, t := range trees {
		top := trunkHeight * t.Scale
		for _, c := range t.Crowns {
			top = math.Max(top, c.Offset.Y+crownHeight*c.Scale/2)
		}
		width := math.Max(trunkRadius*2*t.Scale, crownRadius*2*t.Scale)
		errs = append(errs, g.Add(Entity{
			ID:         t.ID,
			Type:       EntityTree,
			Group:      GroupTrees,
			Position:   geo.V3(t.Position.X, 0, t.Position.Z),
			Dimensions: geo.V3(width, top, width),
			Material:   "foliage",
			Color:      treeColor,
			Metadata:   map[string]any{"context": t.Context, "crowns": len(t.Crowns)},
		}))
	}
	return errors.Join(errs...)
}

// Stamp fills scene metadata from resolved parameters.
func Stamp(g *Graph, p *analytics.ResolvedParameters) {
	g.Metadata = Metadata{
		Seed:        p.Seed,
		Weather:     p.Weather,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		CityBounds:  computeBounds(g.Entities),
	}
}

// computeBounds calculates the AABB of all entities.
func computeBounds(entities []Entity) geo.AABB {
	if len(entities) == 0 {
		return geo.AABB{}
	}
	minV := geo.V3(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
	maxV := geo.V3(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)

	grow := func(b geo.AABB) {
		minV.X = math.Min(minV.X, b.Min.X)
		minV.Y = math.Min(minV.Y, b.Min.Y)
		minV.Z = math.Min(minV.Z, b.Min.Z)
		maxV.X = math.Max(maxV.X, b.Max.X)
		maxV.Y = math.Max(maxV.Y, b.Max.Y)
		maxV.Z = math.Max(maxV.Z, b.Max.Z)
	}
	for _, e := range entities {
		if !e.Instanced() {
			grow(e.Bounds(0))
			continue
		}
		for i := range e.Instances {
			grow(e.Bounds(i))
		}
	}
	return geo.AABB{Min: minV, Max: maxV}
}

func footprintHalf(dims geo.Vec3, yaw float64) (float64, float64) {
	hx, hz := dims.X/2, dims.Z/2
	if yaw == 0 {
		return hx, hz
	}
	c, s := math.Abs(math.Cos(yaw)), math.Abs(math.Sin(yaw))
	return c*hx + s*hz, s*hx + c*hz
}
