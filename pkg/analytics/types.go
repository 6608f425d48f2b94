package analytics

// WorldParameters is the geometric configuration every generation pass reads.
type WorldParameters struct {
	Extent          float64 `json:"extent"`    // half-width of the city square
	RoadStep        float64 `json:"road_step"` // grid spacing between road centerlines
	LaneHalfWidth   float64 `json:"lane_half_width"`
	BuildingDensity float64 `json:"building_density"`
	ParkProbability float64 `json:"park_probability"`
	BaseTreeCount   int     `json:"base_tree_count"`
}

// Area returns the area of the city square.
func (w WorldParameters) Area() float64 {
	return (2 * w.Extent) * (2 * w.Extent)
}

// Populations holds the spawn counts derived from city area and density sliders.
type Populations struct {
	AreaScale   float64 `json:"area_scale"`
	Pedestrians int     `json:"pedestrians"`
	Vehicles    int     `json:"vehicles"`
	Animals     int     `json:"animals"`
	LightPoles  int     `json:"light_poles"`
}

// Environment holds the runtime lighting and atmosphere multipliers.
type Environment struct {
	SkyColor    uint32  `json:"sky_color"`
	FogColor    uint32  `json:"fog_color"`
	FogDensity  float64 `json:"fog_density"`
	Ambient     float64 `json:"ambient"`
	Sun         float64 `json:"sun"`
	AccentColor uint32  `json:"accent_color"`
}
