// Package world owns the live city: generated structures with their paired
// physics bodies, the agent population, the player, and the weather. All of
// it is rebuilt in place when the configuration changes.
package world

import (
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/agents"
	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/layout"
	"github.com/ChicagoDave/threadweaver/pkg/physics"
	"github.com/ChicagoDave/threadweaver/pkg/player"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

// Structure is one building: its render node and the static box that
// collides with it. Both are created and released together.
type Structure struct {
	Building layout.Building
	Node     string
	Body     physics.BodyID
}

// State is the whole live world. It is driven from a single frame thread;
// callers that share it across goroutines must serialize access.
type State struct {
	Scene   *scene.Graph
	Physics *physics.World
	Player  *player.Controller
	Agents  *agents.Population

	cfg        spec.Config
	params     *analytics.ResolvedParameters
	grid       layout.Grid
	structures []Structure
	placement  layout.Placement
	trees      layout.TreePlacement
	lights     layout.StreetLights
	roads      layout.RoadNetwork
	lighting   Lighting
	rain       *Rain
	ground     physics.BodyID
	nodes      map[string]*agents.Agent
	report     *validation.Report

	rng     *rand.Rand
	seedFn  func() int64
	clock   time.Duration
	builds  int
	logger  *log.Logger
	lastLog string
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger for rebuild summaries.
func WithLogger(l *log.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeedSource sets where seeds come from when the config leaves seed at 0.
func WithSeedSource(fn func() int64) Option {
	return func(s *State) {
		if fn != nil {
			s.seedFn = fn
		}
	}
}

// New builds the initial world from cfg into the given scene graph and
// physics world: a ground plane in both, the player body, and a full
// generation pass.
func New(cfg spec.Config, g *scene.Graph, phys *physics.World, opts ...Option) *State {
	s := &State{
		Scene:   g,
		Physics: phys,
		nodes:   make(map[string]*agents.Agent),
		seedFn:  func() int64 { return time.Now().UnixNano() },
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ground = phys.AddPlane(0)
	s.Player = player.New(phys)
	s.Rebuild(cfg)
	return s
}

// Config returns the clamped configuration the world was last built from.
func (s *State) Config() spec.Config { return s.cfg }

// Params returns the resolved parameters of the current world.
func (s *State) Params() *analytics.ResolvedParameters { return s.params }

// Grid returns the current road grid.
func (s *State) Grid() layout.Grid { return s.grid }

// Structures returns the live buildings.
func (s *State) Structures() []Structure { return s.structures }

// Parks returns the park cells of the current world.
func (s *State) Parks() int { return len(s.placement.Parks) }

// Lighting returns the live lighting.
func (s *State) Lighting() Lighting { return s.lighting }

// Rain returns the rain field, or nil when it is not raining.
func (s *State) Rain() *Rain { return s.rain }

// Report returns the validation report of the last rebuild.
func (s *State) Report() *validation.Report { return s.report }

// Clock returns the world time accumulated by Frame.
func (s *State) Clock() time.Duration { return s.clock }

// Builds returns how many times the world has been generated.
func (s *State) Builds() int { return s.builds }

// AgentByNode resolves an agent render node id.
func (s *State) AgentByNode(id string) (*agents.Agent, bool) {
	a, ok := s.nodes[id]
	return a, ok
}

// Stats is a count snapshot of the world.
type Stats struct {
	Builds        int                 `json:"builds"`
	Seed          int64               `json:"seed"`
	Weather       string              `json:"weather"`
	Structures    int                 `json:"structures"`
	PhysicsBodies int                 `json:"physics_bodies"`
	StaticBoxes   int                 `json:"static_boxes"`
	PhysicsCells  int                 `json:"physics_cells"`
	SceneNodes    map[scene.Group]int `json:"scene_nodes"`
	Pedestrians   int                 `json:"pedestrians"`
	Vehicles      int                 `json:"vehicles"`
	Animals       int                 `json:"animals"`
	Trees         int                 `json:"trees"`
	Parks         int                 `json:"parks"`
	LightPoles    int                 `json:"light_poles"`
	Raining       bool                `json:"raining"`
}

// Stats returns current counts.
func (s *State) Stats() Stats {
	nodes := make(map[scene.Group]int, len(scene.AllGroups))
	for _, g := range scene.AllGroups {
		nodes[g] = s.Scene.Count(g)
	}
	return Stats{
		Builds:        s.builds,
		Seed:          s.params.Seed,
		Weather:       s.lighting.Preset,
		Structures:    len(s.structures),
		PhysicsBodies: s.Physics.BodyCount(),
		StaticBoxes:   s.Physics.CountShape(physics.ShapeBox),
		PhysicsCells:  s.Physics.BroadphaseCells(),
		SceneNodes:    nodes,
		Pedestrians:   len(s.Agents.Pedestrians),
		Vehicles:      len(s.Agents.Vehicles),
		Animals:       len(s.Agents.Animals),
		Trees:         len(s.trees.Trees),
		Parks:         len(s.placement.Parks),
		LightPoles:    s.lights.Len(),
		Raining:       s.rain != nil,
	}
}
