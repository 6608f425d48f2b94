package scene2d

// Scene2D is the top-down minimap summary of a generated world.
type Scene2D struct {
	Metadata  Metadata        `json:"metadata"`
	Roads     []float64       `json:"roads"` // centerline offsets, shared by both axes
	Buildings []Building2D    `json:"buildings"`
	Parks     [][2]float64    `json:"parks"`
	Lights    [][2]float64    `json:"lights"`
	Trees     TreeSummary     `json:"trees"`
	Agents    AgentSummary    `json:"agents"`
	Markers   []Marker        `json:"markers,omitempty"`
	Player    *[2]float64     `json:"player,omitempty"`
	Summary   BuildingSummary `json:"summary"`
}

// Metadata holds world-level data.
type Metadata struct {
	Seed          int64   `json:"seed"`
	Weather       string  `json:"weather,omitempty"`
	Extent        float64 `json:"extent"`
	RoadStep      float64 `json:"road_step"`
	LaneHalfWidth float64 `json:"lane_half_width"`
	GeneratedAt   string  `json:"generated_at"`
}

// Building2D is a building footprint.
type Building2D struct {
	ID       string     `json:"id"`
	Position [2]float64 `json:"position"`
	Width    float64    `json:"width"`
	Depth    float64    `json:"depth"`
	Height   float64    `json:"height"`
}

// TreeSummary counts trees by placement context.
type TreeSummary struct {
	Scatter   int `json:"scatter"`
	Park      int `json:"park"`
	Total     int `json:"total"`
	Requested int `json:"requested"`
}

// AgentSummary counts live agents by kind.
type AgentSummary struct {
	Pedestrians int `json:"pedestrians"`
	Vehicles    int `json:"vehicles"`
	Animals     int `json:"animals"`
}

// Marker is a single agent dot.
type Marker struct {
	Kind     string     `json:"kind"`
	Position [2]float64 `json:"position"`
}

// BuildingSummary aggregates building statistics.
type BuildingSummary struct {
	Count     int     `json:"count"`
	Cap       int     `json:"cap"`
	Bands     int     `json:"bands"`
	MaxHeight float64 `json:"max_height"`
	AvgHeight float64 `json:"avg_height"`
	Coverage  float64 `json:"coverage"` // footprint area over city area
}
