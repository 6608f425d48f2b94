package analytics

import (
	"math"
	"testing"

	"github.com/ChicagoDave/threadweaver/pkg/spec"
)

func TestRoadStepFormula(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 18},
		{0.4, 23}, // max(18, round(22.8))
		{0.5, 24},
		{1, 30},
	}
	for _, c := range cases {
		if got := RoadStep(c.in); got != c.want {
			t.Errorf("RoadStep(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestExtentFormula(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 240},
		{0.5, 320},
		{1, 400},
	}
	for _, c := range cases {
		if got := Extent(c.in); got != c.want {
			t.Errorf("Extent(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	c := spec.Defaults()
	p, report := Resolve(&c)
	if !report.Valid {
		t.Fatalf("defaults should resolve cleanly: %v", report.Errors)
	}

	w := p.World
	if w.RoadStep != 23 {
		t.Errorf("road step = %v, want 23", w.RoadStep)
	}
	if w.Extent != 320 {
		t.Errorf("extent = %v, want 320", w.Extent)
	}
	// (0.75 - 0.25) * 0.55
	if math.Abs(w.BuildingDensity-0.275) > 1e-9 {
		t.Errorf("building density = %v, want 0.275", w.BuildingDensity)
	}
	if math.Abs(w.ParkProbability-0.4) > 1e-9 {
		t.Errorf("park probability = %v, want 0.4", w.ParkProbability)
	}
	if w.BaseTreeCount != 1500 {
		t.Errorf("base tree count = %d, want 1500", w.BaseTreeCount)
	}
}

func TestResolvePopulations(t *testing.T) {
	c := spec.Defaults()
	p, _ := Resolve(&c)
	pop := p.Populations

	scale := 320.0 * 320.0 / (300.0 * 300.0)
	if math.Abs(pop.AreaScale-scale) > 1e-9 {
		t.Errorf("area scale = %v, want %v", pop.AreaScale, scale)
	}
	if want := MaxPedestrians; pop.Pedestrians != want {
		// 30 * 1.1378 * 0.6 * 1000 + 100 = 20580 -> capped
		t.Errorf("pedestrians = %d, want %d", pop.Pedestrians, want)
	}
	if want := int(math.Floor(14*scale*0.5 + 6)); pop.Vehicles != want {
		t.Errorf("vehicles = %d, want %d", pop.Vehicles, want)
	}
	if want := int(math.Floor(10 * scale * 0.5)); pop.Animals != want {
		t.Errorf("animals = %d, want %d", pop.Animals, want)
	}
	if pop.LightPoles != MaxLightPoles {
		t.Errorf("light poles = %d, want capped %d", pop.LightPoles, MaxLightPoles)
	}
}

func TestPedestriansBelowCap(t *testing.T) {
	c := spec.Defaults()
	c.People = 0.1
	c.World = 0
	p, report := Resolve(&c)

	scale := 240.0 * 240.0 / (300.0 * 300.0)
	want := int(math.Floor(30*scale*0.1*1000 + 100))
	if p.Populations.Pedestrians != want {
		t.Errorf("pedestrians = %d, want %d", p.Populations.Pedestrians, want)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("no cap warning expected, got %v", report.Warnings)
	}
}

func TestResolveClampsInputs(t *testing.T) {
	c := spec.Defaults()
	c.Mix = -4
	c.Buildings = 9
	c.RoadSpacing = 7
	p, report := Resolve(&c)
	if !report.Valid {
		t.Fatalf("clamped config should resolve cleanly: %v", report.Errors)
	}
	if p.World.RoadStep != 30 {
		t.Errorf("road step = %v, want 30 after clamping", p.World.RoadStep)
	}
	if p.World.BuildingDensity != 0.75 {
		t.Errorf("building density = %v, want 0.75", p.World.BuildingDensity)
	}
	if p.World.ParkProbability != 0.15 {
		t.Errorf("park probability = %v, want 0.15", p.World.ParkProbability)
	}
}

func TestParkProbabilityCapped(t *testing.T) {
	c := spec.Defaults()
	c.Mix = 1
	p, _ := Resolve(&c)
	if math.Abs(p.World.ParkProbability-0.65) > 1e-9 {
		t.Errorf("park probability = %v, want 0.65", p.World.ParkProbability)
	}
	if p.Populations.Animals != 0 {
		t.Errorf("animals = %d, want 0 at full park mix", p.Populations.Animals)
	}
}

func TestEnvironmentColors(t *testing.T) {
	c := spec.Defaults()
	p, _ := Resolve(&c)
	if p.Environment.SkyColor != 0xffc6a8 || p.Environment.FogColor != 0xffc6a8 {
		t.Errorf("sky/fog = %#x/%#x, want 0xffc6a8", p.Environment.SkyColor, p.Environment.FogColor)
	}
	if p.Environment.AccentColor != 0x37b7ff {
		t.Errorf("accent = %#x, want 0x37b7ff", p.Environment.AccentColor)
	}
}
