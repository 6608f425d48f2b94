package scene

import (
	"fmt"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

// Group names a top-level render group. Rebuild clears groups wholesale.
type Group string

const (
	GroupGround    Group = "ground"
	GroupRoads     Group = "roads"
	GroupLights    Group = "lights"
	GroupBuildings Group = "buildings"
	GroupTrees     Group = "trees"
	GroupNPCs      Group = "npcs"
)

// AllGroups lists every group in draw order.
var AllGroups = []Group{GroupGround, GroupRoads, GroupLights, GroupBuildings, GroupTrees, GroupNPCs}

// EntityType identifies the kind of entity.
type EntityType string

const (
	EntityGround     EntityType = "ground"
	EntityRoad       EntityType = "road"
	EntityLaneDash   EntityType = "lane_dash"
	EntityLightPole  EntityType = "light_pole"
	EntityLightHead  EntityType = "light_head"
	EntityBuilding   EntityType = "building"
	EntityBand       EntityType = "accent_band"
	EntityRoofUnit   EntityType = "roof_unit"
	EntityAntenna    EntityType = "antenna"
	EntityTree       EntityType = "tree"
	EntityPedestrian EntityType = "pedestrian"
	EntityVehicle    EntityType = "vehicle"
	EntityAnimal     EntityType = "animal"
)

// IsAgent reports whether t is one of the simulated agent kinds.
func (t EntityType) IsAgent() bool {
	return t == EntityPedestrian || t == EntityVehicle || t == EntityAnimal
}

// Entity is a single node in the scene graph.
//
// Position is the center of the entity's footprint at its base; the box
// spans [Position.Y, Position.Y+Dimensions.Y]. Instanced entities draw the
// same box once per entry in Instances, and Position is then unused.
type Entity struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"type"`
	Group      Group          `json:"group"`
	Position   geo.Vec3       `json:"position"`
	Dimensions geo.Vec3       `json:"dimensions"`
	Yaw        float64        `json:"yaw,omitempty"`
	Material   string         `json:"material,omitempty"`
	Color      uint32         `json:"color,omitempty"`
	Instances  []geo.Vec3     `json:"instances,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Instanced reports whether e is drawn as a batch.
func (e Entity) Instanced() bool {
	return len(e.Instances) > 0
}

// Graph is the render-side scene: every entity plus a per-group index.
// It is owned by the frame thread and is not safe for concurrent use.
type Graph struct {
	Metadata Metadata           `json:"metadata"`
	Entities []Entity           `json:"entities"`
	Groups   map[Group][]string `json:"groups"`
	index    map[string]int
}

// Metadata holds scene-level information.
type Metadata struct {
	Seed        int64    `json:"seed"`
	Weather     string   `json:"weather,omitempty"`
	GeneratedAt string   `json:"generated_at"`
	CityBounds  geo.AABB `json:"city_bounds"`
}

// NewGraph creates an empty scene graph with every group present.
func NewGraph() *Graph {
	g := &Graph{
		Entities: []Entity{},
		Groups:   make(map[Group][]string, len(AllGroups)),
		index:    make(map[string]int),
	}
	for _, name := range AllGroups {
		g.Groups[name] = []string{}
	}
	return g
}

// Add appends an entity and indexes it under its group.
func (g *Graph) Add(e Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity has empty id")
	}
	if _, exists := g.index[e.ID]; exists {
		return fmt.Errorf("duplicate entity id %q", e.ID)
	}
	g.index[e.ID] = len(g.Entities)
	g.Entities = append(g.Entities, e)
	g.Groups[e.Group] = append(g.Groups[e.Group], e.ID)
	return nil
}

// Get returns the entity with the given id.
func (g *Graph) Get(id string) (*Entity, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Entities[i], true
}

// Move updates an entity's position and heading.
func (g *Graph) Move(id string, pos geo.Vec3, yaw float64) bool {
	e, ok := g.Get(id)
	if !ok {
		return false
	}
	e.Position = pos
	e.Yaw = yaw
	return true
}

// Remove deletes one entity. Removing an unknown id is a no-op.
func (g *Graph) Remove(id string) bool {
	if _, ok := g.index[id]; !ok {
		return false
	}
	g.removeWhere(func(e *Entity) bool { return e.ID == id })
	return true
}

// RemoveAll deletes every listed entity in one pass and returns how many
// were present. Unknown ids are skipped.
func (g *Graph) RemoveAll(ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := g.index[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	g.removeWhere(func(e *Entity) bool {
		_, ok := drop[e.ID]
		return ok
	})
	return len(drop)
}

// ClearGroup removes every entity in a group and returns how many were
// removed. Clearing an empty group is a no-op.
func (g *Graph) ClearGroup(name Group) int {
	n := len(g.Groups[name])
	if n == 0 {
		return 0
	}
	g.removeWhere(func(e *Entity) bool { return e.Group == name })
	return n
}

// Count returns the number of entities in a group.
func (g *Graph) Count(name Group) int {
	return len(g.Groups[name])
}

// Len returns the total number of entities.
func (g *Graph) Len() int {
	return len(g.Entities)
}

func (g *Graph) removeWhere(drop func(*Entity) bool) {
	kept := g.Entities[:0]
	for i := range g.Entities {
		if !drop(&g.Entities[i]) {
			kept = append(kept, g.Entities[i])
		}
	}
	// Zero the tail so dropped metadata maps can be collected.
	for i := len(kept); i < len(g.Entities); i++ {
		g.Entities[i] = Entity{}
	}
	g.Entities = kept
	g.reindex()
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.Entities))
	for name := range g.Groups {
		g.Groups[name] = g.Groups[name][:0]
	}
	for i, e := range g.Entities {
		g.index[e.ID] = i
		g.Groups[e.Group] = append(g.Groups[e.Group], e.ID)
	}
}

// Bounds returns the world-space box of e, or of instance i when e is
// instanced. Yawed boxes report the box that encloses the rotated footprint.
func (e Entity) Bounds(i int) geo.AABB {
	base := e.Position
	if e.Instanced() {
		base = e.Instances[i]
	}
	hx, hz := footprintHalf(e.Dimensions, e.Yaw)
	return geo.AABB{
		Min: geo.V3(base.X-hx, base.Y, base.Z-hz),
		Max: geo.V3(base.X+hx, base.Y+e.Dimensions.Y, base.Z+hz),
	}
}
