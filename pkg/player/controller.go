// Package player implements the first-person controller: pointer-lock state,
// keyboard movement through a physics sphere, jumping, and the punch arm.
package player

import (
	"math"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/physics"
)

const (
	MoveSpeed    = 7.2
	JumpVelocity = 6.5
	EyeHeight    = 1.65
	Radius       = 0.5
	Mass         = 1.0

	// FixedStep is the physics substep; at most MaxSubSteps run per frame.
	FixedStep   = 1.0 / 60
	MaxSubSteps = 8

	groundNormalY = 0.5
	maxPitch      = math.Pi/2 - 0.01
)

// Spawn is where the player body starts.
var Spawn = geo.V3(0, EyeHeight, 8)

// State is the pointer-lock state.
type State int

const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}

// Keys is the set of held movement keys.
type Keys struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Jump     bool `json:"jump"`
}

// Controller couples the camera to a dynamic sphere in a physics world.
// Physics only advances while the controller is locked.
type Controller struct {
	Keys  Keys
	Yaw   float64
	Pitch float64

	state     State
	world     *physics.World
	body      physics.BodyID
	camera    geo.Vec3
	onGround  bool
	sawGround bool
	arm       Arm
}

// New adds the player sphere to world at Spawn and returns an unlocked
// controller.
func New(world *physics.World) *Controller {
	c := &Controller{world: world, camera: Spawn}
	c.body = world.AddSphere(Spawn, Radius, Mass)
	world.OnCollide(c.body, c.onContact)
	return c
}

func (c *Controller) onContact(ct physics.Contact) {
	if ct.Normal.Y > groundNormalY {
		c.sawGround = true
	}
}

// Lock captures the pointer and enables physics-driven movement.
func (c *Controller) Lock() { c.state = Locked }

// Unlock releases the pointer; the physics world pauses.
func (c *Controller) Unlock() {
	c.state = Unlocked
	c.Keys = Keys{}
}

// Locked reports whether input is captured.
func (c *Controller) Locked() bool { return c.state == Locked }

// State returns the current lock state.
func (c *Controller) State() State { return c.state }

// Body returns the player's physics body id.
func (c *Controller) Body() physics.BodyID { return c.body }

// OnGround reports whether the last physics step saw a floor contact.
func (c *Controller) OnGround() bool { return c.onGround }

// Camera returns the camera position.
func (c *Controller) Camera() geo.Vec3 { return c.camera }

// Forward returns the camera's unit facing direction.
func (c *Controller) Forward() geo.Vec3 {
	return geo.FromYawPitch(c.Yaw, c.Pitch)
}

// Look turns the camera by the given yaw and pitch deltas in radians.
// Pitch is clamped short of straight up or down.
func (c *Controller) Look(dYaw, dPitch float64) {
	if !c.Locked() {
		return
	}
	c.Yaw += dYaw
	c.Pitch = geo.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// DesiredVelocity returns the horizontal velocity the held keys ask for,
// composed in the camera's flattened forward/right basis.
func (c *Controller) DesiredVelocity() geo.Vec3 {
	dir := c.Forward().Flat().Normalize()
	right := dir.Cross(geo.Up).Normalize()

	var v geo.Vec3
	if c.Keys.Forward {
		v = v.Add(dir)
	}
	if c.Keys.Backward {
		v = v.Sub(dir)
	}
	if c.Keys.Left {
		v = v.Sub(right)
	}
	if c.Keys.Right {
		v = v.Add(right)
	}
	if v.LengthSq() > 0 {
		v = v.SetLength(MoveSpeed)
	}
	return v
}

// Update applies input to the body and steps physics. It does nothing while
// unlocked.
func (c *Controller) Update(dt float64) {
	if !c.Locked() {
		return
	}
	b, ok := c.world.Body(c.body)
	if !ok {
		return
	}
	v := c.DesiredVelocity()
	b.Velocity.X = v.X
	b.Velocity.Z = v.Z
	if c.Keys.Jump && c.onGround {
		b.Velocity.Y = JumpVelocity
		c.onGround = false
	}

	// The ground flag reflects only the substeps that actually ran.
	c.sawGround = false
	if c.world.Step(FixedStep, dt, MaxSubSteps) > 0 {
		c.onGround = c.sawGround
	}
	c.camera = b.Position
}

// Reset moves the body back to Spawn with zero velocity.
func (c *Controller) Reset() {
	if b, ok := c.world.Body(c.body); ok {
		b.Position = Spawn
		b.Velocity = geo.Vec3{}
	}
	c.camera = Spawn
	c.onGround = false
}
