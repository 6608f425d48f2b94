package agents

import (
	"math"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

const (
	minTalkDistance = 0.4
	maxTalkDistance = 6.0
	talkConeDeg     = 25.0
)

// FindFacing returns the pedestrian best in front of the viewer: within
// 0.4–6 units and 25° of the flattened forward direction, scored by
// distance + 2·angle. It returns nil when no pedestrian qualifies.
func (p *Population) FindFacing(eye, forward geo.Vec3) *Agent {
	fwd := forward.Flat().Normalize()
	if fwd.LengthSq() == 0 {
		return nil
	}
	cone := talkConeDeg * math.Pi / 180

	var best *Agent
	bestScore := math.Inf(1)
	for _, a := range p.Pedestrians {
		to := a.Position.Sub(eye)
		dist := to.Length()
		if dist > maxTalkDistance || dist < minTalkDistance {
			continue
		}
		dir := to.Flat().Normalize()
		angle := math.Acos(geo.Clamp(fwd.Dot(dir), -1, 1))
		if angle >= cone {
			continue
		}
		if score := dist + angle*2; score < bestScore {
			bestScore = score
			best = a
		}
	}
	return best
}

// Nearest returns the agent of one of the given kinds closest to pos on the
// ground plane. With no kinds given every agent is considered.
func (p *Population) Nearest(pos geo.Vec3, kinds ...Kind) (*Agent, float64) {
	want := func(k Kind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, kk := range kinds {
			if kk == k {
				return true
			}
		}
		return false
	}
	var best *Agent
	bestDist := math.Inf(1)
	p.Each(func(a *Agent) {
		if !want(a.Kind) {
			return
		}
		if d := a.Position.XZ().Distance(pos.XZ()); d < bestDist {
			best, bestDist = a, d
		}
	})
	return best, bestDist
}

// Strike applies a punch along dir to a punchable agent. It reports whether
// the agent reacted.
func Strike(a *Agent, dir geo.Vec3) bool {
	if a == nil || !a.Kind.Punchable() {
		return false
	}
	a.AddRecoil(dir.SetLength(PunchImpulse))
	return true
}
