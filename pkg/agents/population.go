package agents

import (
	"io"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/ChicagoDave/threadweaver/pkg/analytics"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/layout"
)

const (
	// WanderBound is where pedestrians and animals turn back.
	WanderBound = 300.0
	// WrapBound is where vehicles leave and re-enter the city.
	WrapBound = 320.0

	RecoilDecay  = 0.9
	RecoilCutoff = 0.05
	// PunchImpulse is the recoil added by one strike.
	PunchImpulse = 4.5

	laneSpread      = 24 // lanes are drawn from ±12 road steps
	sidewalkJitter  = 3.0
	minWalkSpeed    = 0.6
	walkSpeedRange  = 0.8
	redrawChance    = 0.003
	redrawSpeed     = 1.2
	walkCadence     = 6.0
	limbAmplitude   = 0.4
	minCarSpeed     = 8.0
	carSpeedRange   = 6.0
	carEntryMargin  = 20.0
	wheelSpinFactor = 2.5
	animalSpeed     = 0.8
	wanderPeriod    = 2.5
)

// Population owns the live agents of one world. All methods run on the
// frame thread.
type Population struct {
	Pedestrians []*Agent
	Vehicles    []*Agent
	Animals     []*Agent

	world analytics.WorldParameters
	rng   *rand.Rand
	ids   io.Reader
}

// Option configures a Population.
type Option func(*Population)

// WithIDSource draws agent ids from r instead of crypto/rand. Motion and
// placement always come from the population's rng.
func WithIDSource(r io.Reader) Option {
	return func(p *Population) { p.ids = r }
}

// NewPopulation creates an empty population for the given world. Agent ids
// are unique across populations even when rng is seeded the same way.
func NewPopulation(world analytics.WorldParameters, rng *rand.Rand, opts ...Option) *Population {
	p := &Population{world: world, rng: rng}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reset drops every agent and adopts new world parameters.
func (p *Population) Reset(world analytics.WorldParameters) int {
	n := p.Len()
	p.Pedestrians, p.Vehicles, p.Animals = nil, nil, nil
	p.world = world
	return n
}

// Len returns the total number of agents.
func (p *Population) Len() int {
	return len(p.Pedestrians) + len(p.Vehicles) + len(p.Animals)
}

// Each calls fn for every agent: pedestrians, then vehicles, then animals.
func (p *Population) Each(fn func(*Agent)) {
	for _, list := range [][]*Agent{p.Pedestrians, p.Vehicles, p.Animals} {
		for _, a := range list {
			fn(a)
		}
	}
}

func (p *Population) newAgent(kind Kind) *Agent {
	if p.ids == nil {
		return &Agent{ID: uuid.New(), Kind: kind}
	}
	id, err := uuid.NewRandomFromReader(p.ids)
	if err != nil {
		id = uuid.New()
	}
	return &Agent{ID: id, Kind: kind}
}

// lane returns a random road centerline offset.
func (p *Population) lane() float64 {
	return math.Round((p.rng.Float64()-0.5)*laneSpread) * p.world.RoadStep
}

func (p *Population) sign() float64 {
	if p.rng.Float64() < 0.5 {
		return -1
	}
	return 1
}

// SpawnPedestrians appends n pedestrians walking along random lanes.
func (p *Population) SpawnPedestrians(n int) []*Agent {
	out := make([]*Agent, 0, n)
	ext := p.world.Extent
	for i := 0; i < n; i++ {
		a := p.newAgent(KindPedestrian)
		lane := p.lane()
		alongX := p.rng.Float64() > 0.5
		along := -ext + p.rng.Float64()*ext*2
		across := lane + (p.rng.Float64()-0.5)*sidewalkJitter*2
		speed := (minWalkSpeed + p.rng.Float64()*walkSpeedRange) * p.sign()
		if alongX {
			a.Position = geo.V3(along, 0, across)
			a.Velocity = geo.V3(speed, 0, 0)
		} else {
			a.Position = geo.V3(across, 0, along)
			a.Velocity = geo.V3(0, 0, speed)
		}
		a.Phase = p.rng.Float64() * math.Pi * 2
		a.face()
		out = append(out, a)
	}
	p.Pedestrians = append(p.Pedestrians, out...)
	return out
}

// SpawnVehicles appends n vehicles entering from the negative edge of a
// random lane, offset to one side of its centerline.
func (p *Population) SpawnVehicles(n int) []*Agent {
	out := make([]*Agent, 0, n)
	start := -p.world.Extent - carEntryMargin
	for i := 0; i < n; i++ {
		a := p.newAgent(KindVehicle)
		alongX := p.rng.Float64() > 0.5
		lane := p.lane()
		side := p.world.LaneHalfWidth * p.sign()
		if alongX {
			a.Axis = layout.AxisX
			a.Position = geo.V3(start, 0, lane+side)
		} else {
			a.Axis = layout.AxisZ
			a.Position = geo.V3(lane+side, 0, start)
		}
		a.Speed = minCarSpeed + p.rng.Float64()*carSpeedRange
		a.Dir = 1
		a.Heading = vehicleHeading(a.Axis, a.Dir)
		out = append(out, a)
	}
	p.Vehicles = append(p.Vehicles, out...)
	return out
}

// SpawnAnimals appends n animals scattered over the city square.
func (p *Population) SpawnAnimals(n int) []*Agent {
	out := make([]*Agent, 0, n)
	ext := p.world.Extent
	for i := 0; i < n; i++ {
		a := p.newAgent(KindAnimal)
		a.Position = geo.V3((p.rng.Float64()-0.5)*ext*2, 0, (p.rng.Float64()-0.5)*ext*2)
		a.Velocity = geo.V3((p.rng.Float64()-0.5)*animalSpeed, 0, (p.rng.Float64()-0.5)*animalSpeed)
		a.face()
		out = append(out, a)
	}
	p.Animals = append(p.Animals, out...)
	return out
}

// Update advances every agent by dt seconds.
func (p *Population) Update(dt float64) {
	p.UpdatePedestrians(dt)
	p.UpdateVehicles(dt)
	p.UpdateAnimals(dt)
}

// UpdatePedestrians moves pedestrians, turns them at the wander bound,
// occasionally redraws their heading, and advances the walk cycle.
func (p *Population) UpdatePedestrians(dt float64) {
	for _, a := range p.Pedestrians {
		a.Position = a.Position.Add(a.Velocity.Scale(dt))
		a.bounce()
		if p.rng.Float64() < redrawChance {
			a.Velocity = geo.V3((p.rng.Float64()-0.5)*redrawSpeed, 0, (p.rng.Float64()-0.5)*redrawSpeed)
		}
		a.face()

		a.Phase += dt * walkCadence * (0.5 + a.Velocity.Length())
		s := math.Sin(a.Phase) * limbAmplitude
		c := math.Cos(a.Phase) * limbAmplitude
		a.Limbs = Limbs{LegL: s * 0.5, LegR: -s * 0.5, ArmL: -c * 0.4, ArmR: c * 0.4}

		a.stepRecoil(dt)
	}
}

// UpdateVehicles drives vehicles along their lane axis. A vehicle leaving
// past +WrapBound re-enters at -WrapBound heading positive, and one leaving
// past -WrapBound re-enters at +WrapBound heading negative.
func (p *Population) UpdateVehicles(dt float64) {
	for _, a := range p.Vehicles {
		step := a.Speed * dt * float64(a.Dir)
		pos := &a.Position.X
		if a.Axis == layout.AxisZ {
			pos = &a.Position.Z
		}
		*pos += step
		switch {
		case *pos > WrapBound:
			*pos = -WrapBound
			a.Dir = 1
		case *pos < -WrapBound:
			*pos = WrapBound
			a.Dir = -1
		}
		a.Heading = vehicleHeading(a.Axis, a.Dir)
		a.Velocity = axisVector(a.Axis).Scale(a.Speed * float64(a.Dir))
		a.Phase += a.Speed * dt * wheelSpinFactor
	}
}

// UpdateAnimals wanders animals, picking a new heading every wanderPeriod
// seconds.
func (p *Population) UpdateAnimals(dt float64) {
	for _, a := range p.Animals {
		a.Wander += dt
		if a.Wander > wanderPeriod {
			a.Wander = 0
			a.Velocity = geo.V3((p.rng.Float64()-0.5)*redrawSpeed, 0, (p.rng.Float64()-0.5)*redrawSpeed)
		}
		a.Position = a.Position.Add(a.Velocity.Scale(dt))
		a.bounce()
		a.face()
		a.stepRecoil(dt)
	}
}

func vehicleHeading(axis layout.Axis, dir int) float64 {
	if axis == layout.AxisX {
		if dir == -1 {
			return math.Pi
		}
		return 0
	}
	if dir == -1 {
		return -math.Pi / 2
	}
	return math.Pi / 2
}

func axisVector(axis layout.Axis) geo.Vec3 {
	if axis == layout.AxisX {
		return geo.V3(1, 0, 0)
	}
	return geo.V3(0, 0, 1)
}
