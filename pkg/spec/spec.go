package spec

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a world config from a YAML file. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return &cfg, nil
}

// LoadProject loads a world config from a project directory.
// It looks for city.yaml in the given directory.
func LoadProject(projectDir string) (*Config, error) {
	return Load(filepath.Join(projectDir, "city.yaml"))
}

// Clamped returns a copy of c with every input forced into its legal range.
// Malformed colors fall back to the defaults and unknown weather presets are
// cleared so a random one is picked.
func (c Config) Clamped() Config {
	out := c
	for _, f := range []*float64{
		&out.Mix, &out.Buildings, &out.Trees, &out.People, &out.Cars,
		&out.Ambient, &out.Sun, &out.Lights, &out.RoadSpacing, &out.World,
	} {
		*f = clamp01(*f)
	}
	out.Fog = clampRange(out.Fog, 0, MaxFog)

	if _, err := ParseColor(out.Sky); err != nil {
		out.Sky = DefaultSky
	}
	if _, err := ParseColor(out.Accent); err != nil {
		out.Accent = DefaultAccent
	}
	if out.Weather != "" && !IsWeatherPreset(out.Weather) {
		out.Weather = ""
	}
	return out
}

// IsWeatherPreset reports whether name is a known preset.
func IsWeatherPreset(name string) bool {
	for _, p := range WeatherPresets {
		if p == name {
			return true
		}
	}
	return false
}

// ParseColor converts "#rrggbb" into a packed 0xRRGGBB value.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
