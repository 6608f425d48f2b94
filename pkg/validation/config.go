package validation

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/threadweaver/pkg/spec"
)

// ValidateConfig checks a parsed config before anything is generated from it.
// Out-of-range sliders are errors (the rebuild path clamps them anyway);
// combinations that produce an empty or saturated city are warnings.
func ValidateConfig(c *spec.Config) *Report {
	r := NewReport()

	validateSliders(c, r)
	validateColors(c, r)
	validateWeather(c, r)
	validateBalance(c, r)

	return r
}

func validateSliders(c *spec.Config, r *Report) {
	sliders := []struct {
		path string
		v    float64
		max  float64
	}{
		{"mix", c.Mix, 1},
		{"buildings", c.Buildings, 1},
		{"trees", c.Trees, 1},
		{"people", c.People, 1},
		{"cars", c.Cars, 1},
		{"fog", c.Fog, spec.MaxFog},
		{"ambient", c.Ambient, 1},
		{"sun", c.Sun, 1},
		{"lights", c.Lights, 1},
		{"road_spacing", c.RoadSpacing, 1},
		{"world", c.World, 1},
	}

	for _, s := range sliders {
		if math.IsNaN(s.v) || s.v < 0 || s.v > s.max {
			r.AddError(Result{
				Level:       LevelConfig,
				Message:     fmt.Sprintf("%s must be within [0, %g]", s.path, s.max),
				Path:        s.path,
				ActualValue: s.v,
				Expected:    fmt.Sprintf("0 <= %s <= %g", s.path, s.max),
				Suggestions: []string{"the rebuild clamps this value; fix the config to silence the error"},
			})
		}
	}
}

func validateColors(c *spec.Config, r *Report) {
	for path, v := range map[string]string{"sky": c.Sky, "accent": c.Accent} {
		if v == "" {
			continue
		}
		if _, err := spec.ParseColor(v); err != nil {
			r.AddError(Result{
				Level:       LevelConfig,
				Message:     fmt.Sprintf("%s is not a #rrggbb color", path),
				Path:        path,
				ActualValue: v,
				Expected:    "#rrggbb",
			})
		}
	}
}

func validateWeather(c *spec.Config, r *Report) {
	if c.Weather == "" || spec.IsWeatherPreset(c.Weather) {
		return
	}
	r.AddError(Result{
		Level:       LevelConfig,
		Message:     fmt.Sprintf("unknown weather preset %q", c.Weather),
		Path:        "weather",
		ActualValue: c.Weather,
		Suggestions: spec.WeatherPresets,
	})
}

func validateBalance(c *spec.Config, r *Report) {
	if c.Buildings == 0 {
		r.AddWarning(Result{
			Level:   LevelConfig,
			Message: "buildings is 0; the city will have no structures",
			Path:    "buildings",
		})
	}
	if c.Mix >= 1 {
		r.AddWarning(Result{
			Level:   LevelConfig,
			Message: "mix is 1; no animals will spawn and building density is at its minimum",
			Path:    "mix",
		})
	}
}
