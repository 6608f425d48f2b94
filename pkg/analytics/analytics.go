package analytics

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

const (
	minRoadStep      = 18.0
	roadStepRange    = 12.0
	baseExtent       = 240.0
	extentRange      = 160.0
	minLaneHalfWidth = 1.2
	laneHalfRange    = 0.8
	baseTrees        = 300
	treeRange        = 1500

	// ReferenceExtent is the half-width whose area gives areaScale = 1.
	ReferenceExtent = 300.0
	crowdMultiplier = 1000.0

	MaxPedestrians = 10000
	MaxLightPoles  = 800
)

// ResolvedParameters holds everything derived from one config.
type ResolvedParameters struct {
	Seed        int64           `json:"seed"`
	Weather     string          `json:"weather,omitempty"`
	World       WorldParameters `json:"world"`
	Populations Populations     `json:"populations"`
	Environment Environment     `json:"environment"`
}

// Resolve derives world parameters, spawn counts, and environment settings
// from a config. The config is clamped first so placement math never sees an
// out-of-range value. Returns resolved parameters and a validation report.
func Resolve(c *spec.Config) (*ResolvedParameters, *validation.Report) {
	report := validation.NewReport()
	cfg := c.Clamped()

	world := ResolveWorld(cfg)
	p := &ResolvedParameters{
		Seed:        cfg.Seed,
		Weather:     cfg.Weather,
		World:       world,
		Populations: ResolvePopulations(cfg, world),
		Environment: resolveEnvironment(cfg),
	}

	validateDerived(p, report)

	report.AddInfo(validation.Result{
		Level: validation.LevelDerived,
		Message: fmt.Sprintf("extent %.0f, road step %.0f, building density %.3f, park probability %.2f, %d trees requested",
			world.Extent, world.RoadStep, world.BuildingDensity, world.ParkProbability, world.BaseTreeCount),
	})
	return p, report
}

// ResolveWorld maps sliders onto grid geometry and placement densities.
func ResolveWorld(c spec.Config) WorldParameters {
	return WorldParameters{
		RoadStep:        RoadStep(c.RoadSpacing),
		Extent:          Extent(c.World),
		LaneHalfWidth:   minLaneHalfWidth + laneHalfRange*c.RoadSpacing,
		BuildingDensity: math.Max(0, (0.75-c.Mix*0.5)*c.Buildings),
		ParkProbability: math.Min(0.8, 0.15+c.Mix*0.5),
		BaseTreeCount:   int(math.Floor(baseTrees + c.Trees*treeRange)),
	}
}

// RoadStep returns max(18, round(18 + 12·roadSpacing)).
func RoadStep(roadSpacing float64) float64 {
	return math.Max(minRoadStep, math.Round(minRoadStep+roadStepRange*roadSpacing))
}

// Extent returns round(240 + 160·worldSize).
func Extent(worldSize float64) float64 {
	return math.Round(baseExtent + extentRange*worldSize)
}

// AreaScale returns the city area relative to the reference area.
func AreaScale(extent float64) float64 {
	return (extent * extent) / (ReferenceExtent * ReferenceExtent)
}

// ResolvePopulations scales each agent kind by city area and its slider.
func ResolvePopulations(c spec.Config, w WorldParameters) Populations {
	scale := AreaScale(w.Extent)

	peds := int(math.Floor(30*scale*c.People*crowdMultiplier + 100))
	if peds > MaxPedestrians {
		peds = MaxPedestrians
	}

	base := math.Floor(math.Pow(w.Extent/w.RoadStep, 2) * 16)
	poles := int(math.Floor(base * c.Lights))
	if poles < 0 {
		poles = 0
	}
	if poles > MaxLightPoles {
		poles = MaxLightPoles
	}

	return Populations{
		AreaScale:   scale,
		Pedestrians: peds,
		Vehicles:    int(math.Floor(14*scale*c.Cars + 6)),
		Animals:     int(math.Floor(10 * scale * (1 - c.Mix))),
		LightPoles:  poles,
	}
}

func resolveEnvironment(c spec.Config) Environment {
	sky, _ := spec.ParseColor(c.Sky)
	accent, _ := spec.ParseColor(c.Accent)
	return Environment{
		SkyColor:    sky,
		FogColor:    sky,
		FogDensity:  c.Fog,
		Ambient:     c.Ambient,
		Sun:         c.Sun,
		AccentColor: accent,
	}
}

func validateDerived(p *ResolvedParameters, r *validation.Report) {
	w := p.World
	if w.Extent <= 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelDerived,
			Message:     "extent must be positive",
			Path:        "world",
			ActualValue: w.Extent,
			Expected:    "> 0",
		})
	}
	if w.RoadStep <= 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelDerived,
			Message:     "road step must be positive",
			Path:        "road_spacing",
			ActualValue: w.RoadStep,
			Expected:    "> 0",
		})
	}
	for name, v := range map[string]float64{
		"building_density": w.BuildingDensity,
		"park_probability": w.ParkProbability,
	} {
		if v < 0 || v > 1 {
			r.AddError(validation.Result{
				Level:       validation.LevelDerived,
				Message:     fmt.Sprintf("%s must be a fraction", name),
				Path:        name,
				ActualValue: v,
				Expected:    "[0, 1]",
			})
		}
	}
	if p.Populations.Pedestrians == MaxPedestrians {
		r.AddWarning(validation.Result{
			Level:       validation.LevelDerived,
			Message:     fmt.Sprintf("pedestrian count capped at %d", MaxPedestrians),
			Path:        "people",
			Suggestions: []string{"lower people or world to stay under the cap"},
		})
	}
}
