package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
)

func defaultGrid(t *testing.T) Grid {
	t.Helper()
	c := spec.Defaults()
	p, report := analytics.Resolve(&c)
	if !report.Valid {
		t.Fatalf("defaults invalid: %v", report.Errors)
	}
	return NewGrid(p.World)
}

func TestGridLines(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{Extent: 50, RoadStep: 20, LaneHalfWidth: 1.5})
	lines := g.Lines()
	want := []float64{-40, -20, 0, 20, 40}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %v, want %v", i, lines[i], want[i])
		}
	}
	if n := len(g.Intersections()); n != 25 {
		t.Errorf("intersections = %d, want 25", n)
	}
	if n := g.CellCount(); n != 5 {
		t.Errorf("cell count = %d, want 5", n)
	}
	for _, c := range g.Cells() {
		if math.Mod(math.Abs(c.X), 20) != 10 || math.Mod(math.Abs(c.Z), 20) != 10 {
			t.Errorf("cell %v is not a block midpoint", c)
		}
	}
}

func TestGridDegenerate(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{})
	if g.Lines() != nil || g.Cells() != nil || g.CellCount() != 0 {
		t.Error("zero-value grid should be empty")
	}
}

func TestNearRoad(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{Extent: 100, RoadStep: 20, LaneHalfWidth: 1.5})
	cases := []struct {
		x, z float64
		want bool
	}{
		{0, 10, true},   // on the x=0 line
		{10, 40, true},  // on the z=40 line
		{10, 10, false}, // block center
		{2.0, 10, true}, // inside 1.5+0.6
		{2.2, 10, false},
		{-18.0, 10, true},
	}
	for _, c := range cases {
		if got := g.NearRoad(c.x, c.z); got != c.want {
			t.Errorf("NearRoad(%v, %v) = %v, want %v", c.x, c.z, got, c.want)
		}
	}
}

func TestRoads(t *testing.T) {
	g := defaultGrid(t)
	net := Roads(g)
	lines := g.Lines()
	if len(net.Strips) != 2*len(lines) {
		t.Errorf("strips = %d, want %d", len(net.Strips), 2*len(lines))
	}
	if len(net.DashesX) != len(net.DashesZ) {
		t.Errorf("dash batches differ: %d vs %d", len(net.DashesX), len(net.DashesZ))
	}
	for _, s := range net.Strips {
		if s.Width <= 2*g.Params.LaneHalfWidth {
			t.Errorf("strip width %v narrower than both lanes", s.Width)
		}
	}
}

func TestBuildingsInsideCity(t *testing.T) {
	g := defaultGrid(t)
	for seed := int64(1); seed <= 5; seed++ {
		p, _ := PlaceStructures(g, rand.New(rand.NewSource(seed)))
		if len(p.Buildings) == 0 {
			t.Fatalf("seed %d: no buildings placed", seed)
		}
		for _, b := range p.Buildings {
			if !g.Contains(b.Position) {
				t.Errorf("seed %d: building %s at %v outside extent %v", seed, b.ID, b.Position, g.Params.Extent)
			}
			if b.Width <= 0 || b.Depth <= 0 || b.Height <= 0 {
				t.Errorf("seed %d: building %s has non-positive size", seed, b.ID)
			}
		}
	}
}

func TestBuildingCap(t *testing.T) {
	g := defaultGrid(t)
	p, _ := PlaceStructures(g, rand.New(rand.NewSource(7)))
	want := StructureCap(g)
	if p.Cap != want {
		t.Errorf("cap = %d, want %d", p.Cap, want)
	}
	if len(p.Buildings) > p.Cap {
		t.Errorf("placed %d buildings, cap %d", len(p.Buildings), p.Cap)
	}
}

func TestZeroDensityPlacesNothing(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{Extent: 200, RoadStep: 20, LaneHalfWidth: 1.5, ParkProbability: 0.5})
	p, _ := PlaceStructures(g, rand.New(rand.NewSource(1)))
	if len(p.Buildings) != 0 || len(p.Parks) != 0 {
		t.Errorf("cap 0 should stop before any draw, got %d buildings %d parks", len(p.Buildings), len(p.Parks))
	}
}

func TestParksDoNotCountAgainstCap(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{
		Extent: 200, RoadStep: 20, LaneHalfWidth: 1.5,
		BuildingDensity: 0.05, ParkProbability: 0.8,
	})
	p, _ := PlaceStructures(g, rand.New(rand.NewSource(3)))
	if len(p.Buildings) > p.Cap {
		t.Fatalf("placed %d buildings, cap %d", len(p.Buildings), p.Cap)
	}
	if len(p.Parks) <= p.Cap {
		t.Errorf("expected parks (%d) to exceed the structure cap (%d) at high park probability", len(p.Parks), p.Cap)
	}
}

func TestPlacementDeterministic(t *testing.T) {
	g := defaultGrid(t)
	a, _ := PlaceStructures(g, rand.New(rand.NewSource(42)))
	b, _ := PlaceStructures(g, rand.New(rand.NewSource(42)))
	if len(a.Buildings) != len(b.Buildings) || len(a.Parks) != len(b.Parks) {
		t.Fatalf("same seed produced different worlds")
	}
	for i := range a.Buildings {
		if a.Buildings[i] != b.Buildings[i] {
			t.Errorf("building %d differs between runs", i)
		}
	}
}

func TestStreetLights(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{Extent: 50, RoadStep: 20, LaneHalfWidth: 1.5})
	lights := PlaceStreetLights(g, 7)
	if lights.Len() != 7 || len(lights.Heads) != 7 {
		t.Fatalf("lights = %d/%d, want 7", lights.Len(), len(lights.Heads))
	}
	first := lights.Poles[0]
	if math.Abs(first.X+43.3) > 1e-9 || math.Abs(first.Z+43.3) > 1e-9 {
		t.Errorf("first pole at %v, want sidewalk corner of (-40,-40)", first)
	}
	if first.Y != 1.6 || lights.Heads[0].Y != 3.2 {
		t.Errorf("pole/head heights = %v/%v", first.Y, lights.Heads[0].Y)
	}

	all := PlaceStreetLights(g, 10000)
	if all.Len() != 4*len(g.Intersections()) {
		t.Errorf("uncapped lights = %d, want %d", all.Len(), 4*len(g.Intersections()))
	}
	if PlaceStreetLights(g, 0).Len() != 0 {
		t.Error("zero count should place no lights")
	}
}

func TestTreesAvoidRoads(t *testing.T) {
	g := defaultGrid(t)
	rng := rand.New(rand.NewSource(11))
	p, _ := PlaceStructures(g, rng)
	tp, _ := PlaceTrees(g, p.Parks, g.Params.BaseTreeCount, rng)

	if len(tp.Trees) == 0 {
		t.Fatal("no trees planted")
	}
	clear := g.Params.LaneHalfWidth + RoadMargin
	for _, tr := range tp.Trees {
		if g.NearRoad(tr.Position.X, tr.Position.Z) {
			t.Errorf("tree %s at %v is near a road", tr.ID, tr.Position)
		}
		if g.DistanceToLine(tr.Position.X) < clear || g.DistanceToLine(tr.Position.Z) < clear {
			t.Errorf("tree %s fails the clearance on one axis", tr.ID)
		}
		if n := len(tr.Crowns); n < 1 || n > 3 {
			t.Errorf("tree %s has %d crowns", tr.ID, n)
		}
	}
	if tp.Planted > tp.Requested {
		t.Errorf("planted %d > requested %d", tp.Planted, tp.Requested)
	}
	if tp.Tries > 5*tp.Requested {
		t.Errorf("tries %d exceed retry budget", tp.Tries)
	}
}

func TestTreeRetryBudget(t *testing.T) {
	// Lanes wide enough to cover every point: nothing can be planted.
	g := NewGrid(analytics.WorldParameters{Extent: 100, RoadStep: 10, LaneHalfWidth: 5})
	tp, report := PlaceTrees(g, nil, 40, rand.New(rand.NewSource(1)))
	if tp.Planted != 0 {
		t.Errorf("planted %d, want 0", tp.Planted)
	}
	if tp.Tries != 200 {
		t.Errorf("tries = %d, want 200", tp.Tries)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected one exhausted-budget warning, got %d", len(report.Warnings))
	}
	if !report.Valid {
		t.Error("an exhausted retry budget is not an error")
	}
}

func TestParkClusters(t *testing.T) {
	g := NewGrid(analytics.WorldParameters{Extent: 200, RoadStep: 30, LaneHalfWidth: 1.5})
	parks := []geo.Point2D{geo.Pt(15, 15), geo.Pt(-45, 75)}
	tp, _ := PlaceTrees(g, parks, 0, rand.New(rand.NewSource(5)))
	if tp.Planted != 0 {
		t.Errorf("scatter target 0 planted %d", tp.Planted)
	}
	if tp.ParkTrees == 0 {
		t.Fatal("no park trees")
	}
	for _, tr := range tp.Trees {
		if tr.Context != TreePark {
			t.Errorf("tree %s context = %s", tr.ID, tr.Context)
		}
		near := false
		for _, p := range parks {
			if tr.Position.Distance(p) <= 12+3*math.Sqrt2 {
				near = true
			}
		}
		if !near {
			t.Errorf("park tree %s at %v far from every park", tr.ID, tr.Position)
		}
	}
}
