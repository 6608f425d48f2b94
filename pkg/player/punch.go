package player

import (
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/agents"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
)

const (
	SwingDuration = 280 * time.Millisecond
	HitDelay      = 90 * time.Millisecond

	upperReach = 0.35
	fistReach  = 0.45
)

var (
	upperRest = geo.V3(0.28, -0.28, -0.6)
	fistRest  = geo.V3(0.28, -0.28, -0.92)
)

// Arm is the camera-space pose of the first-person arm.
type Arm struct {
	Upper geo.Vec3 `json:"upper"`
	Fist  geo.Vec3 `json:"fist"`

	active  bool
	start   time.Duration
	hitDone bool
}

// Swinging reports whether a punch animation is playing.
func (a Arm) Swinging() bool { return a.active }

// Arm returns the current arm pose.
func (c *Controller) Arm() Arm {
	if !c.arm.active {
		return Arm{Upper: upperRest, Fist: fistRest}
	}
	return c.arm
}

// Punch starts a swing at time now. It is ignored while unlocked or while a
// swing is already playing.
func (c *Controller) Punch(now time.Duration) bool {
	if !c.Locked() || c.arm.active {
		return false
	}
	c.arm = Arm{Upper: upperRest, Fist: fistRest, active: true, start: now}
	return true
}

// Ease is the two-phase swing curve: 0→1 over the first half, 1→0 over the
// second.
func Ease(k float64) float64 {
	if k < 0.5 {
		return k * 2
	}
	return 1 - (k-0.5)*2
}

// UpdateArm advances the swing animation to time now. It reports true
// exactly once per swing, when the hit test is due.
func (c *Controller) UpdateArm(now time.Duration) bool {
	if !c.arm.active {
		return false
	}
	elapsed := now - c.arm.start
	k := float64(elapsed) / float64(SwingDuration)
	if k > 1 {
		k = 1
	}
	e := Ease(k)
	c.arm.Upper = upperRest.Sub(geo.V3(0, 0, e*upperReach))
	c.arm.Fist = fistRest.Sub(geo.V3(0, 0, e*fistReach))

	due := false
	if !c.arm.hitDone && elapsed >= HitDelay {
		c.arm.hitDone = true
		due = true
	}
	if k >= 1 {
		c.arm.active = false
		c.arm.Upper, c.arm.Fist = upperRest, fistRest
	}
	return due
}

// AgentLookup resolves a render node id to the agent it draws.
type AgentLookup interface {
	AgentByNode(id string) (*agents.Agent, bool)
}

// PunchHit casts one ray from the camera along the facing direction against
// every scene group. If the nearest hit is a pedestrian or animal it receives
// a recoil impulse along the ray and is returned.
func (c *Controller) PunchHit(g *scene.Graph, lookup AgentLookup) (*agents.Agent, bool) {
	ray := geo.NewRay(c.camera, c.Forward())
	hit, ok := g.FirstHit(ray, 0)
	if !ok || !hit.Type.IsAgent() {
		return nil, false
	}
	a, ok := lookup.AgentByNode(hit.EntityID)
	if !ok || !agents.Strike(a, ray.Dir) {
		return nil, false
	}
	return a, true
}

// InteractTarget returns the pedestrian to talk to: the first pedestrian
// along the look ray, else the best candidate in the facing cone.
func (c *Controller) InteractTarget(g *scene.Graph, lookup AgentLookup, pop *agents.Population) *agents.Agent {
	ray := geo.NewRay(c.camera, c.Forward())
	for _, h := range g.Raycast(ray, 0, scene.GroupNPCs) {
		if h.Type != scene.EntityPedestrian {
			continue
		}
		if a, ok := lookup.AgentByNode(h.EntityID); ok {
			return a
		}
	}
	return pop.FindFacing(c.camera, c.Forward())
}
