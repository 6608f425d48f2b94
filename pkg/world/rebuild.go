package world

import (
	"math/rand"

	"github.com/ChicagoDave/threadweaver/pkg/agents"
	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/layout"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

// Rebuild tears the world down and regenerates it from cfg in one
// synchronous call. The config is clamped before anything reads it. Physics
// bodies of buildings are released before their render nodes, and every
// clear is safe on an empty world.
func (s *State) Rebuild(cfg spec.Config) {
	cfg = cfg.Clamped()
	seed := cfg.Seed
	if seed == 0 {
		seed = s.seedFn()
	}
	s.rng = rand.New(rand.NewSource(seed))

	removedAgents := s.clearAgents()
	s.Scene.ClearGroup(scene.GroupLights)
	s.Scene.ClearGroup(scene.GroupTrees)
	released := s.releaseStructures()
	s.Scene.ClearGroup(scene.GroupBuildings)
	s.Scene.ClearGroup(scene.GroupRoads)

	seeded := cfg
	seeded.Seed = seed
	params, report := analytics.Resolve(&seeded)
	if s.params == nil || s.params.World.Extent != params.World.Extent {
		s.sceneError(report, "ground", scene.SetGround(s.Scene, params.World.Extent))
	}

	report.Infof(validation.LevelRuntime, "released %d structures and %d agents", released, removedAgents)
	s.generate(params, report)
	s.spawnAgents(params.Populations)
	s.applyEnvironment(cfg, params)

	s.cfg = cfg
	s.params = params
	s.report = report
	s.builds++
	scene.Stamp(s.Scene, params)

	s.logger.Printf("rebuild #%d seed=%d weather=%s extent=%.0f step=%.0f: %d structures (%d released), %d parks, %d/%d trees, %d poles, agents %d->%d (%dp %dv %da)",
		s.builds, seed, s.lighting.Preset, params.World.Extent, params.World.RoadStep,
		len(s.structures), released, len(s.placement.Parks),
		len(s.trees.Trees), s.trees.Requested, s.lights.Len(),
		removedAgents, s.Agents.Len(),
		len(s.Agents.Pedestrians), len(s.Agents.Vehicles), len(s.Agents.Animals))
	if !report.Valid {
		s.logger.Printf("rebuild #%d: %s", s.builds, report.Summary)
	}
}

func (s *State) clearAgents() int {
	n := 0
	if s.Agents != nil {
		n = s.Agents.Len()
	}
	s.Scene.ClearGroup(scene.GroupNPCs)
	clear(s.nodes)
	return n
}

// releaseStructures removes every building's physics body and then the
// render nodes in one batch. It returns how many structures were released.
func (s *State) releaseStructures() int {
	n := len(s.structures)
	nodes := make([]string, 0, n)
	for _, st := range s.structures {
		s.Physics.RemoveBody(st.Body)
		nodes = append(nodes, st.Node)
	}
	s.Scene.RemoveAll(nodes)
	s.structures = nil
	return n
}

func (s *State) generate(params *analytics.ResolvedParameters, report *validation.Report) {
	s.grid = layout.NewGrid(params.World)

	s.roads = layout.Roads(s.grid)
	s.sceneError(report, "roads", scene.AddRoads(s.Scene, s.roads))

	placement, pr := layout.PlaceStructures(s.grid, s.rng)
	report.Merge(pr)
	s.placement = placement
	s.structures = make([]Structure, 0, len(placement.Buildings))
	for _, b := range placement.Buildings {
		node, err := scene.AddBuilding(s.Scene, b)
		s.sceneError(report, b.ID, err)
		if node == "" {
			// no render node, so no collision box either
			continue
		}
		body := s.Physics.AddStaticBox(b.Center(), b.HalfExtents())
		s.structures = append(s.structures, Structure{Building: b, Node: node, Body: body})
	}
	for _, band := range placement.Bands {
		s.sceneError(report, band.BuildingID, scene.AddBand(s.Scene, band, params.Environment.AccentColor))
	}

	s.lights = layout.PlaceStreetLights(s.grid, params.Populations.LightPoles)
	s.sceneError(report, "lights", scene.AddStreetLights(s.Scene, s.lights))

	trees, tr := layout.PlaceTrees(s.grid, placement.Parks, params.World.BaseTreeCount, s.rng)
	report.Merge(tr)
	s.trees = trees
	s.sceneError(report, "trees", scene.AddTrees(s.Scene, trees.Trees))
}

// sceneError records a failed render insert as a runtime error.
func (s *State) sceneError(report *validation.Report, path string, err error) {
	if err == nil {
		return
	}
	report.AddError(validation.Result{
		Level:   validation.LevelRuntime,
		Path:    path,
		Message: err.Error(),
	})
}

func (s *State) spawnAgents(pop analytics.Populations) {
	s.Agents = agents.NewPopulation(s.grid.Params, s.rng)
	s.Agents.SpawnPedestrians(pop.Pedestrians)
	s.Agents.SpawnVehicles(pop.Vehicles)
	s.Agents.SpawnAnimals(pop.Animals)
	s.Agents.Each(func(a *agents.Agent) {
		s.addAgentNode(a)
	})
}

var agentEntity = map[agents.Kind]scene.EntityType{
	agents.KindPedestrian: scene.EntityPedestrian,
	agents.KindVehicle:    scene.EntityVehicle,
	agents.KindAnimal:     scene.EntityAnimal,
}

func (s *State) addAgentNode(a *agents.Agent) {
	id := a.NodeID()
	err := s.Scene.Add(scene.Entity{
		ID:         id,
		Type:       agentEntity[a.Kind],
		Group:      scene.GroupNPCs,
		Position:   a.Position,
		Dimensions: a.Kind.Dimensions(),
		Yaw:        a.Heading,
		Material:   string(a.Kind),
	})
	if err != nil {
		s.logger.Printf("agent %s has no render node: %v", id, err)
		return
	}
	s.nodes[id] = a
}

// applyEnvironment sets sky, fog, and light intensities from the sliders.
// The first build applies the configured weather preset, or a random one
// when none is named; later builds re-apply a preset only when the config
// names a different one.
func (s *State) applyEnvironment(cfg spec.Config, params *analytics.ResolvedParameters) {
	env := params.Environment
	current := s.lighting.Preset
	s.lighting = Lighting{
		Preset:       current,
		SkyColor:     env.SkyColor,
		FogColor:     env.FogColor,
		FogDensity:   env.FogDensity,
		Ambient:      env.Ambient,
		Sun:          env.Sun,
		SunElevation: s.lighting.SunElevation,
		SunAzimuth:   s.lighting.SunAzimuth,
		Accent:       env.AccentColor,
	}

	name := cfg.Weather
	if s.builds == 0 && name == "" {
		name = spec.WeatherPresets[s.rng.Intn(len(spec.WeatherPresets))]
	}
	if name != "" && (s.builds == 0 || name != current) {
		if s.lighting.applyPreset(name) {
			if s.rain == nil {
				s.rain = NewRain(s.rng)
			}
		} else {
			s.rain = nil
		}
	}
	params.Weather = s.lighting.Preset
}
