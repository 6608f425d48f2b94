// Package agents spawns and animates the city's pedestrians, vehicles, and
// animals.
package agents

import (
	"github.com/google/uuid"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/layout"
)

// Kind identifies an agent kind.
type Kind string

const (
	KindPedestrian Kind = "pedestrian"
	KindVehicle    Kind = "vehicle"
	KindAnimal     Kind = "animal"
)

// Punchable reports whether agents of this kind react to being struck.
func (k Kind) Punchable() bool {
	return k == KindPedestrian || k == KindAnimal
}

// Dimensions returns the bounding size of an agent of this kind, used for
// the render node and ray tests.
func (k Kind) Dimensions() geo.Vec3 {
	switch k {
	case KindPedestrian:
		return geo.V3(0.5, 1.35, 0.5)
	case KindVehicle:
		return geo.V3(1.6, 0.8, 3.2)
	case KindAnimal:
		return geo.V3(0.5, 0.46, 1.0)
	}
	return geo.Vec3{}
}

// Limbs holds the pedestrian limb swing angles, in radians about X.
type Limbs struct {
	LegL float64 `json:"leg_l"`
	LegR float64 `json:"leg_r"`
	ArmL float64 `json:"arm_l"`
	ArmR float64 `json:"arm_r"`
}

// Agent is one simulated mobile entity. Position is at the agent's feet.
type Agent struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Position geo.Vec3  `json:"position"`
	Velocity geo.Vec3  `json:"velocity"`
	Heading  float64   `json:"heading"`

	// Phase is the walk cycle for pedestrians and the wheel angle for
	// vehicles.
	Phase float64 `json:"phase"`
	Limbs Limbs   `json:"limbs"`

	// Recoil is the active strike displacement; zero means none.
	Recoil geo.Vec3 `json:"recoil"`

	// Vehicle lane state.
	Axis  layout.Axis `json:"axis,omitempty"`
	Dir   int         `json:"dir,omitempty"`
	Speed float64     `json:"speed,omitempty"`

	// Wander is the animal's time since its last heading change.
	Wander float64 `json:"wander,omitempty"`
}

// NodeID returns the render node id for the agent.
func (a *Agent) NodeID() string {
	return string(a.Kind) + "_" + a.ID.String()
}

// HasRecoil reports whether a strike is still displacing the agent.
func (a *Agent) HasRecoil() bool {
	return a.Recoil != (geo.Vec3{})
}

// AddRecoil adds a strike impulse.
func (a *Agent) AddRecoil(impulse geo.Vec3) {
	a.Recoil = a.Recoil.Add(impulse)
}

// stepRecoil displaces the agent by the active recoil and decays it.
func (a *Agent) stepRecoil(dt float64) {
	if !a.HasRecoil() {
		return
	}
	a.Position = a.Position.Add(a.Recoil.Scale(dt))
	a.Recoil = a.Recoil.Scale(RecoilDecay)
	if a.Recoil.Length() < RecoilCutoff {
		a.Recoil = geo.Vec3{}
	}
}

// bounce reverses any velocity component that carries the agent further
// past the wander bound.
func (a *Agent) bounce() {
	if (a.Position.X > WanderBound && a.Velocity.X > 0) || (a.Position.X < -WanderBound && a.Velocity.X < 0) {
		a.Velocity.X = -a.Velocity.X
	}
	if (a.Position.Z > WanderBound && a.Velocity.Z > 0) || (a.Position.Z < -WanderBound && a.Velocity.Z < 0) {
		a.Velocity.Z = -a.Velocity.Z
	}
}

func (a *Agent) face() {
	if a.Velocity.LengthSq() > 0.001 {
		a.Heading = a.Velocity.XZ().Heading()
	}
}
