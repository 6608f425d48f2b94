package spec

// Config is the live world configuration. Every numeric field except Fog and
// Seed is a normalized slider value in [0, 1].
type Config struct {
	Sky         string  `yaml:"sky" json:"sky,omitempty" jsonschema:"pattern=^#[0-9a-fA-F]{6}$,description=background and fog tint"`
	Mix         float64 `yaml:"mix" json:"mix" jsonschema:"minimum=0,maximum=1,description=urban (0) to park (1) balance"`
	Buildings   float64 `yaml:"buildings" json:"buildings" jsonschema:"minimum=0,maximum=1"`
	Trees       float64 `yaml:"trees" json:"trees" jsonschema:"minimum=0,maximum=1"`
	People      float64 `yaml:"people" json:"people" jsonschema:"minimum=0,maximum=1"`
	Cars        float64 `yaml:"cars" json:"cars" jsonschema:"minimum=0,maximum=1"`
	Fog         float64 `yaml:"fog" json:"fog" jsonschema:"minimum=0,maximum=0.2"`
	Ambient     float64 `yaml:"ambient" json:"ambient" jsonschema:"minimum=0,maximum=1"`
	Sun         float64 `yaml:"sun" json:"sun" jsonschema:"minimum=0,maximum=1"`
	Accent      string  `yaml:"accent" json:"accent,omitempty" jsonschema:"pattern=^#[0-9a-fA-F]{6}$"`
	Lights      float64 `yaml:"lights" json:"lights" jsonschema:"minimum=0,maximum=1"`
	RoadSpacing float64 `yaml:"road_spacing" json:"road_spacing" jsonschema:"minimum=0,maximum=1"`
	World       float64 `yaml:"world" json:"world" jsonschema:"minimum=0,maximum=1,description=city size"`
	Seed        int64   `yaml:"seed" json:"seed,omitempty" jsonschema:"description=generation seed; 0 picks one from the clock"`
	Weather     string  `yaml:"weather" json:"weather,omitempty" jsonschema:"description=weather preset; empty picks one at random"`
}

// Weather presets.
const (
	WeatherDayClear     = "day_clear"
	WeatherDuskOvercast = "dusk_overcast"
	WeatherNightClear   = "night_clear"
	WeatherNightRain    = "night_rain"
	WeatherMorningFog   = "morning_fog"
)

// WeatherPresets lists every preset in pick order.
var WeatherPresets = []string{
	WeatherDayClear,
	WeatherDuskOvercast,
	WeatherNightClear,
	WeatherNightRain,
	WeatherMorningFog,
}

const (
	DefaultSky    = "#ffc6a8"
	DefaultAccent = "#37b7ff"
	MaxFog        = 0.2
)

// Defaults returns the configuration the city starts with.
func Defaults() Config {
	return Config{
		Sky:         DefaultSky,
		Mix:         0.5,
		Buildings:   0.55,
		Trees:       0.8,
		People:      0.6,
		Cars:        0.5,
		Fog:         0.02,
		Ambient:     0.4,
		Sun:         0.8,
		Accent:      DefaultAccent,
		Lights:      0.8,
		RoadSpacing: 0.4,
		World:       0.5,
	}
}
