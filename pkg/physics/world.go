package physics

import (
	"math"
	"sort"

	"github.com/ChicagoDave/threadweaver/pkg/geo"
)

const (
	// DefaultGravity matches Earth gravity along -Y.
	DefaultGravity  = -9.82
	defaultCellSize = 16.0
	defaultDamping  = 0.01
)

// World is a minimal rigid-body world: static boxes, one or more infinite
// ground planes, and dynamic fixed-rotation spheres. It is driven from the
// frame thread and is not safe for concurrent use.
type World struct {
	Gravity geo.Vec3

	bodies      map[BodyID]*Body
	nextID      BodyID
	grid        *spatialGrid
	listeners   map[BodyID][]CollideFunc
	accumulator float64
	steps       int64
}

// Option configures a World.
type Option func(*World)

// WithGravity overrides the gravity vector.
func WithGravity(g geo.Vec3) Option {
	return func(w *World) { w.Gravity = g }
}

// WithCellSize sets the broadphase cell size.
func WithCellSize(size float64) Option {
	return func(w *World) {
		if size > 0 {
			w.grid = newSpatialGrid(size)
		}
	}
}

// NewWorld creates an empty world with default gravity.
func NewWorld(opts ...Option) *World {
	w := &World{
		Gravity:   geo.V3(0, DefaultGravity, 0),
		bodies:    make(map[BodyID]*Body),
		grid:      newSpatialGrid(defaultCellSize),
		listeners: make(map[BodyID][]CollideFunc),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) add(b *Body) BodyID {
	w.nextID++
	b.ID = w.nextID
	w.bodies[b.ID] = b
	return b.ID
}

// AddStaticBox adds an immovable box centered at center.
func (w *World) AddStaticBox(center, half geo.Vec3) BodyID {
	b := &Body{Shape: ShapeBox, Position: center, Half: half}
	id := w.add(b)
	w.grid.insert(id, b.AABB())
	return id
}

// AddPlane adds an infinite horizontal ground plane at height y.
func (w *World) AddPlane(y float64) BodyID {
	return w.add(&Body{Shape: ShapePlane, Position: geo.V3(0, y, 0)})
}

// AddSphere adds a dynamic sphere.
func (w *World) AddSphere(pos geo.Vec3, radius, mass float64) BodyID {
	return w.add(&Body{
		Shape:    ShapeSphere,
		Position: pos,
		Radius:   radius,
		Mass:     mass,
		Damping:  defaultDamping,
	})
}

// RemoveBody removes a body and its listeners. Removing an unknown or
// already-removed id is a no-op and reports false.
func (w *World) RemoveBody(id BodyID) bool {
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	if b.Shape == ShapeBox {
		w.grid.remove(id, b.AABB())
	}
	delete(w.bodies, id)
	delete(w.listeners, id)
	return true
}

// Body returns the body with the given id.
func (w *World) Body(id BodyID) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// BodyCount returns the number of bodies of any shape.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// CountShape returns the number of bodies with the given shape.
func (w *World) CountShape(s ShapeType) int {
	n := 0
	for _, b := range w.bodies {
		if b.Shape == s {
			n++
		}
	}
	return n
}

// BroadphaseCells returns the number of occupied broadphase cells.
func (w *World) BroadphaseCells() int {
	return w.grid.len()
}

// Steps returns how many internal fixed steps have run.
func (w *World) Steps() int64 {
	return w.steps
}

// OnCollide registers fn for contacts involving body id.
func (w *World) OnCollide(id BodyID, fn CollideFunc) {
	w.listeners[id] = append(w.listeners[id], fn)
}

// Step advances the simulation by dt seconds using fixed substeps of size
// fixed, running at most maxSubSteps of them. Leftover time below one fixed
// step carries over to the next call; time beyond maxSubSteps is dropped.
// It returns the number of substeps taken.
func (w *World) Step(fixed, dt float64, maxSubSteps int) int {
	if fixed <= 0 || dt <= 0 {
		return 0
	}
	w.accumulator += dt
	n := 0
	for w.accumulator >= fixed && n < maxSubSteps {
		w.internalStep(fixed)
		w.accumulator -= fixed
		n++
	}
	w.accumulator = math.Mod(w.accumulator, fixed)
	return n
}

func (w *World) internalStep(dt float64) {
	w.steps++
	for _, id := range w.dynamicIDs() {
		b := w.bodies[id]
		b.Velocity = b.Velocity.Add(w.Gravity.Scale(dt))
		if b.Damping > 0 {
			b.Velocity = b.Velocity.Scale(math.Pow(1-b.Damping, dt))
		}
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
		w.resolve(b)
	}
}

// dynamicIDs returns dynamic body ids in creation order so stepping is
// deterministic.
func (w *World) dynamicIDs() []BodyID {
	var ids []BodyID
	for id, b := range w.bodies {
		if !b.Static() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) resolve(b *Body) {
	for _, other := range w.bodies {
		if other.Shape == ShapePlane {
			if c, ok := spherePlane(b, other); ok {
				w.apply(b, c)
			}
		}
	}
	ids := w.grid.query(b.AABB())
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if c, ok := sphereBox(b, w.bodies[id]); ok {
			w.apply(b, c)
		}
	}
}

// apply pushes b out of the contact, removes the velocity component into
// the surface, and notifies listeners of both bodies.
func (w *World) apply(b *Body, c Contact) {
	b.Position = b.Position.Add(c.Normal.Scale(c.Penetration))
	if vn := b.Velocity.Dot(c.Normal); vn < 0 {
		b.Velocity = b.Velocity.Sub(c.Normal.Scale(vn))
	}
	for _, fn := range w.listeners[b.ID] {
		fn(c)
	}
	mirrored := Contact{Body: c.Other, Other: c.Body, Normal: c.Normal.Neg(), Penetration: c.Penetration, Point: c.Point}
	for _, fn := range w.listeners[c.Other] {
		fn(mirrored)
	}
}

func spherePlane(s, p *Body) (Contact, bool) {
	depth := s.Radius - (s.Position.Y - p.Position.Y)
	if depth <= 0 {
		return Contact{}, false
	}
	return Contact{
		Body:        s.ID,
		Other:       p.ID,
		Normal:      geo.Up,
		Penetration: depth,
		Point:       geo.V3(s.Position.X, p.Position.Y, s.Position.Z),
	}, true
}

func sphereBox(s, box *Body) (Contact, bool) {
	aabb := box.AABB()
	closest := aabb.ClosestPoint(s.Position)
	delta := s.Position.Sub(closest)
	distSq := delta.LengthSq()
	if distSq >= s.Radius*s.Radius {
		return Contact{}, false
	}

	c := Contact{Body: s.ID, Other: box.ID, Point: closest}
	if dist := math.Sqrt(distSq); dist > 0 {
		c.Normal = delta.Scale(1 / dist)
		c.Penetration = s.Radius - dist
		return c, true
	}

	// Center inside the box: leave through the nearest face.
	p := s.Position
	faces := []struct {
		depth  float64
		normal geo.Vec3
	}{
		{p.X - aabb.Min.X, geo.V3(-1, 0, 0)},
		{aabb.Max.X - p.X, geo.V3(1, 0, 0)},
		{p.Y - aabb.Min.Y, geo.V3(0, -1, 0)},
		{aabb.Max.Y - p.Y, geo.V3(0, 1, 0)},
		{p.Z - aabb.Min.Z, geo.V3(0, 0, -1)},
		{aabb.Max.Z - p.Z, geo.V3(0, 0, 1)},
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.depth < best.depth {
			best = f
		}
	}
	c.Normal = best.normal
	c.Penetration = best.depth + s.Radius
	return c, true
}
