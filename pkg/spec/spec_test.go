package spec

import (
	"math"
	"strings"
	"testing"
)

func TestLoadProject(t *testing.T) {
	c, err := LoadProject("../../examples/default-city")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	if c.Seed != 1337 {
		t.Errorf("seed = %d, want 1337", c.Seed)
	}
	if c.RoadSpacing != 0.4 {
		t.Errorf("road_spacing = %v, want 0.4", c.RoadSpacing)
	}
	if c.World != 0.5 {
		t.Errorf("world = %v, want 0.5", c.World)
	}
	if c.Weather != WeatherDuskOvercast {
		t.Errorf("weather = %q, want %q", c.Weather, WeatherDuskOvercast)
	}
	if c.Accent != "#37b7ff" {
		t.Errorf("accent = %q, want #37b7ff", c.Accent)
	}
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	if err == nil {
		t.Error("expected error for missing project directory")
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte("people: 0.1\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := Defaults()
	want.People = 0.1
	if *c != want {
		t.Errorf("got %+v, want %+v", *c, want)
	}
}

func TestClamped(t *testing.T) {
	c := Defaults()
	c.Mix = -0.5
	c.Buildings = 3
	c.Fog = 1
	c.World = math.NaN()
	c.Sky = "pink"
	c.Weather = "hail"

	got := c.Clamped()
	if got.Mix != 0 {
		t.Errorf("mix = %v, want 0", got.Mix)
	}
	if got.Buildings != 1 {
		t.Errorf("buildings = %v, want 1", got.Buildings)
	}
	if got.Fog != MaxFog {
		t.Errorf("fog = %v, want %v", got.Fog, MaxFog)
	}
	if got.World != 0 {
		t.Errorf("world = %v, want 0 for NaN", got.World)
	}
	if got.Sky != DefaultSky {
		t.Errorf("sky = %q, want default", got.Sky)
	}
	if got.Weather != "" {
		t.Errorf("weather = %q, want cleared", got.Weather)
	}
	if c.Mix != -0.5 {
		t.Error("Clamped must not modify the receiver")
	}
}

func TestParseColor(t *testing.T) {
	v, err := ParseColor("#37b7ff")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}
	if v != 0x37b7ff {
		t.Errorf("got %#x, want 0x37b7ff", v)
	}
	for _, bad := range []string{"", "37b7ff", "#37b7f", "#zzzzzz"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestValidateDocumentAcceptsProject(t *testing.T) {
	raw := []byte(`
sky: "#101820"
mix: 0.2
buildings: 1
road_spacing: 0
world: 1
seed: 99
weather: night_rain
`)
	if err := ValidateDocument(raw); err != nil {
		t.Errorf("expected valid document, got %v", err)
	}
}

func TestValidateDocumentRejects(t *testing.T) {
	cases := map[string]string{
		"out of range": "mix: 1.5\n",
		"wrong type":   "people: lots\n",
		"unknown key":  "skyscrapers: 1\n",
		"bad color":    "sky: orange\n",
	}
	for name, doc := range cases {
		if err := ValidateDocument([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSchemaMentionsEveryField(t *testing.T) {
	b, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	s := string(b)
	for _, key := range []string{"sky", "mix", "buildings", "trees", "people", "cars", "fog", "ambient", "sun", "accent", "lights", "road_spacing", "world", "seed", "weather"} {
		if !strings.Contains(s, `"`+key+`"`) {
			t.Errorf("schema missing property %q", key)
		}
	}
}
