package world

import (
	"fmt"

	"github.com/ChicagoDave/threadweaver/pkg/physics"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
)

// Validate checks the live scene graph and that every structure still owns
// both halves of its render/physics pair.
func (s *State) Validate() *validation.Report {
	r := scene.ValidateGraph(s.Scene)
	for _, st := range s.structures {
		if _, ok := s.Scene.Get(st.Node); !ok {
			r.AddError(validation.Result{
				Level:   validation.LevelRuntime,
				Message: "structure has no render node",
				Path:    st.Node,
			})
		}
		if b, ok := s.Physics.Body(st.Body); !ok || b.Shape != physics.ShapeBox {
			r.AddError(validation.Result{
				Level:   validation.LevelRuntime,
				Message: "structure has no collision box",
				Path:    st.Node,
			})
		}
	}
	if boxes := s.Physics.CountShape(physics.ShapeBox); boxes != len(s.structures) {
		r.AddError(validation.Result{
			Level:       validation.LevelRuntime,
			Message:     "collision boxes do not match structures",
			ActualValue: boxes,
			Expected:    fmt.Sprintf("%d", len(s.structures)),
		})
	}
	if n := s.Scene.Count(scene.GroupNPCs); n != s.Agents.Len() {
		r.AddWarning(validation.Result{
			Level:       validation.LevelRuntime,
			Message:     "agent nodes do not match population",
			ActualValue: n,
			Expected:    fmt.Sprintf("%d", s.Agents.Len()),
		})
	}
	return r
}
