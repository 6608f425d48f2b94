package scene

import (
	"sort"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

// Hit is one ray intersection.
type Hit struct {
	EntityID string     `json:"entity_id"`
	Type     EntityType `json:"type"`
	Instance int        `json:"instance"`
	Distance float64    `json:"distance"`
	Point    geo.Vec3   `json:"point"`
}

// Raycast returns every entity box the ray enters within maxDist, nearest
// first. With no groups given, all groups are tested. A maxDist <= 0 means
// unbounded.
func (g *Graph) Raycast(r geo.Ray, maxDist float64, groups ...Group) []Hit {
	if len(groups) == 0 {
		groups = AllGroups
	}
	var hits []Hit
	for _, name := range groups {
		for _, id := range g.Groups[name] {
			e := &g.Entities[g.index[id]]
			n := 1
			if e.Instanced() {
				n = len(e.Instances)
			}
			for i := 0; i < n; i++ {
				t, ok := r.IntersectAABB(e.Bounds(i))
				if !ok || (maxDist > 0 && t > maxDist) {
					continue
				}
				hits = append(hits, Hit{EntityID: e.ID, Type: e.Type, Instance: i, Distance: t, Point: r.At(t)})
			}
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	return hits
}

// FirstHit returns the nearest hit, if any.
func (g *Graph) FirstHit(r geo.Ray, maxDist float64, groups ...Group) (Hit, bool) {
	hits := g.Raycast(r, maxDist, groups...)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}
