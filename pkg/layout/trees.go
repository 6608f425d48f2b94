package layout

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

// Tree contexts.
const (
	TreeScatter = "scatter"
	TreePark    = "park"
)

const (
	retryFactor     = 5
	parkJitter      = 3.0
	minClusterR     = 4.0
	clusterRRange   = 8.0
	minClusterTrees = 20
	clusterRange    = 40
)

// Crown is one cone of a tree canopy, relative to the tree base.
type Crown struct {
	Offset geo.Vec3 `json:"offset"`
	Scale  float64  `json:"scale"`
}

// Tree is a decorative tree. Trees have no collision volume.
type Tree struct {
	ID       string      `json:"id"`
	Position geo.Point2D `json:"position"`
	Scale    float64     `json:"scale"`
	Crowns   []Crown     `json:"crowns"`
	Context  string      `json:"context"`
}

// TreePlacement is the output of the tree pass.
type TreePlacement struct {
	Trees     []Tree `json:"trees"`
	Requested int    `json:"requested"`
	Planted   int    `json:"planted"` // loose-scatter trees
	Tries     int    `json:"tries"`
	ParkTrees int    `json:"park_trees"`
}

// PlaceTrees plants loose-scatter trees by rejection sampling against the
// road predicate, then a denser cluster around each park. The scatter pass
// gives up after 5×target tries, so fewer trees than requested is normal.
func PlaceTrees(g Grid, parks []geo.Point2D, target int, rng *rand.Rand) (TreePlacement, *validation.Report) {
	report := validation.NewReport()
	tp := TreePlacement{Requested: target}
	ext := g.Params.Extent

	for tp.Planted < target && tp.Tries < target*retryFactor {
		tp.Tries++
		x := (rng.Float64() - 0.5) * ext * 2
		z := (rng.Float64() - 0.5) * ext * 2
		if g.NearRoad(x, z) {
			continue
		}
		s := 0.6 + rng.Float64()*1.6
		tp.Trees = append(tp.Trees, newTree(len(tp.Trees), geo.Pt(x, z), s, TreeScatter, rng))
		tp.Planted++
	}

	for _, park := range parks {
		center := geo.Pt(
			park.X+(rng.Float64()-0.5)*2*parkJitter,
			park.Z+(rng.Float64()-0.5)*2*parkJitter,
		)
		radius := minClusterR + rng.Float64()*clusterRRange
		count := minClusterTrees + rng.Intn(clusterRange)
		for i := 0; i < count; i++ {
			a := rng.Float64() * math.Pi * 2
			r := rng.Float64() * radius
			pt := center.Polar(a, r)
			if g.NearRoad(pt.X, pt.Z) {
				continue
			}
			s := 0.8 + rng.Float64()*1.4
			tp.Trees = append(tp.Trees, newTree(len(tp.Trees), pt, s, TreePark, rng))
			tp.ParkTrees++
		}
	}

	if tp.Planted < target {
		report.AddWarning(validation.Result{
			Level:       validation.LevelSpatial,
			Message:     fmt.Sprintf("retry budget exhausted: planted %d of %d scatter trees", tp.Planted, target),
			ActualValue: tp.Planted,
			Expected:    fmt.Sprintf("%d", target),
		})
	}
	report.AddInfo(validation.Result{
		Level: validation.LevelSpatial,
		Message: fmt.Sprintf("placed %d trees (scatter: %d in %d tries, park: %d around %d parks)",
			len(tp.Trees), tp.Planted, tp.Tries, tp.ParkTrees, len(parks)),
	})
	return tp, report
}

func newTree(idx int, pos geo.Point2D, s float64, context string, rng *rand.Rand) Tree {
	crowns := make([]Crown, 1+rng.Intn(3))
	for c := range crowns {
		crowns[c] = Crown{
			Offset: geo.V3((rng.Float64()-0.5)*0.3, 1.2*s+float64(c)*0.5*s, (rng.Float64()-0.5)*0.3),
			Scale:  0.8 * s * (0.9 + rng.Float64()*0.3),
		}
	}
	return Tree{
		ID:       fmt.Sprintf("tree_%s_%05d", context, idx),
		Position: pos,
		Scale:    s,
		Crowns:   crowns,
		Context:  context,
	}
}
