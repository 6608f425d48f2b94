package world

import (
	"math/rand"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
)

// Lighting is the live sky and light state.
type Lighting struct {
	Preset       string  `json:"preset,omitempty"`
	SkyColor     uint32  `json:"sky_color"`
	FogColor     uint32  `json:"fog_color"`
	FogDensity   float64 `json:"fog_density"`
	Ambient      float64 `json:"ambient"`
	Sun          float64 `json:"sun"`
	SunElevation float64 `json:"sun_elevation_deg"`
	SunAzimuth   float64 `json:"sun_azimuth_deg"`
	Accent       uint32  `json:"accent_color"`
}

type preset struct {
	ambient, sun, fog float64
	elevation         float64
	azimuth           float64 // fraction of 180°
	rain              bool
}

var presets = map[string]preset{
	spec.WeatherDayClear:     {ambient: 0.5, sun: 1.0, fog: 0.012, elevation: 60, azimuth: 0.2},
	spec.WeatherDuskOvercast: {ambient: 0.35, sun: 0.6, fog: 0.02, elevation: 20, azimuth: 0.8},
	spec.WeatherNightClear:   {ambient: 0.18, sun: 0.15, fog: 0.03, elevation: 5, azimuth: 0.05},
	spec.WeatherNightRain:    {ambient: 0.22, sun: 0.1, fog: 0.048, elevation: 8, azimuth: 0.1, rain: true},
	spec.WeatherMorningFog:   {ambient: 0.42, sun: 0.55, fog: 0.06, elevation: 12, azimuth: 0.25},
}

// applyPreset overwrites the intensities and sun position with a preset's.
// It reports whether the preset brings rain.
func (l *Lighting) applyPreset(name string) bool {
	p, ok := presets[name]
	if !ok {
		return false
	}
	l.Preset = name
	l.Ambient = p.ambient
	l.Sun = p.sun
	l.FogDensity = p.fog
	l.SunElevation = p.elevation
	l.SunAzimuth = 180 * p.azimuth
	return p.rain
}

const (
	RainDrops     = 4000
	rainArea      = 200.0
	rainFloor     = 10.0
	rainSpan      = 60.0
	rainRespawnY  = 60.0
	rainRespawnDY = 20.0
	minRainSpeed  = 30.0
	rainSpeedSpan = 40.0
)

// Drop is one raindrop.
type Drop struct {
	Position geo.Vec3
	Speed    float64
}

// Rain is the particle field of the night_rain preset.
type Rain struct {
	Drops []Drop
	rng   *rand.Rand
}

// NewRain scatters RainDrops drops over a 200×200 area around the origin.
func NewRain(rng *rand.Rand) *Rain {
	r := &Rain{Drops: make([]Drop, RainDrops), rng: rng}
	for i := range r.Drops {
		r.Drops[i] = Drop{
			Position: geo.V3(
				(rng.Float64()-0.5)*rainArea,
				rng.Float64()*rainSpan+rainFloor,
				(rng.Float64()-0.5)*rainArea,
			),
			Speed: minRainSpeed + rng.Float64()*rainSpeedSpan,
		}
	}
	return r
}

// Update drops every particle and respawns those below ground high above
// the camera.
func (r *Rain) Update(dt float64, camera geo.Vec3) {
	for i := range r.Drops {
		d := &r.Drops[i]
		d.Position.Y -= d.Speed * dt
		if d.Position.Y < 0 {
			d.Position = geo.V3(
				camera.X+(r.rng.Float64()-0.5)*rainArea,
				rainRespawnY+r.rng.Float64()*rainRespawnDY,
				camera.Z+(r.rng.Float64()-0.5)*rainArea,
			)
		}
	}
}
