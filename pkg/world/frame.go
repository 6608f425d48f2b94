package world

import (
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/agents"
	"github.com/ChicagoDave/threadweaver/pkg/scene2d"
)

// Frame advances the world by dt seconds. The player and physics only move
// while the controller is locked; agents, the punch arm, and rain always
// run. It returns the agent struck by a punch landing this frame, if any.
func (s *State) Frame(dt float64) *agents.Agent {
	if dt <= 0 {
		return nil
	}
	s.clock += time.Duration(dt * float64(time.Second))

	if s.Player.Locked() {
		s.Player.Update(dt)
	}

	s.Agents.Update(dt)
	s.syncAgentNodes()

	var struck *agents.Agent
	if s.Player.UpdateArm(s.clock) {
		if a, ok := s.Player.PunchHit(s.Scene, s); ok {
			struck = a
		}
	}

	if s.rain != nil {
		s.rain.Update(dt, s.Player.Camera())
	}
	return struck
}

func (s *State) syncAgentNodes() {
	s.Agents.Each(func(a *agents.Agent) {
		s.Scene.Move(a.NodeID(), a.Position, a.Heading)
	})
}

// Punch starts a punch swing at the current world time.
func (s *State) Punch() bool {
	return s.Player.Punch(s.clock)
}

// Interact picks the pedestrian the player is addressing. Opening a
// conversation releases the controller.
func (s *State) Interact() (*agents.Agent, bool) {
	a := s.Player.InteractTarget(s.Scene, s, s.Agents)
	if a == nil {
		return nil, false
	}
	s.Player.Unlock()
	return a, true
}

// Minimap summarizes the current world for the top-down map. Agents are
// included as markers when markers is set.
func (s *State) Minimap(markers bool) *scene2d.Scene2D {
	in := scene2d.Input{
		Params:    s.params,
		Grid:      s.grid,
		Placement: s.placement,
		Trees:     s.trees,
		Lights:    s.lights,
		Agents: scene2d.AgentSummary{
			Pedestrians: len(s.Agents.Pedestrians),
			Vehicles:    len(s.Agents.Vehicles),
			Animals:     len(s.Agents.Animals),
		},
	}
	if markers {
		in.Markers = make([]scene2d.Marker, 0, s.Agents.Len())
		s.Agents.Each(func(a *agents.Agent) {
			in.Markers = append(in.Markers, scene2d.Marker{
				Kind:     string(a.Kind),
				Position: [2]float64{a.Position.X, a.Position.Z},
			})
		})
	}
	cam := s.Player.Camera()
	in.Player = &cam
	return scene2d.Assemble2D(in)
}
