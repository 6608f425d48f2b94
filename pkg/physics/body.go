package physics

import "github.com/ChicagoDave/threadweaver/pkg/geo"

// BodyID is a handle to a body in a World. The zero value is never issued.
type BodyID uint64

// ShapeType identifies a body's collision shape.
type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapePlane
)

func (s ShapeType) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	}
	return "unknown"
}

// Body is a rigid body. Static bodies have zero mass and never move.
// Dynamic bodies are spheres with fixed rotation.
type Body struct {
	ID       BodyID
	Shape    ShapeType
	Position geo.Vec3
	Velocity geo.Vec3
	Half     geo.Vec3 // box half extents
	Radius   float64  // sphere radius
	Mass     float64
	Damping  float64 // linear damping per second, as a fraction
}

// Static reports whether b has no mass.
func (b *Body) Static() bool {
	return b.Mass <= 0
}

// AABB returns b's bounding box. Planes are unbounded and return an empty box.
func (b *Body) AABB() geo.AABB {
	switch b.Shape {
	case ShapeBox:
		return geo.BoxAt(b.Position, b.Half)
	case ShapeSphere:
		return geo.BoxAt(b.Position, geo.V3(b.Radius, b.Radius, b.Radius))
	}
	return geo.AABB{}
}

// Contact is one collision seen from a body's side. Normal points from
// Other toward the body, so a body standing on the ground sees Normal.Y ≈ 1.
type Contact struct {
	Body        BodyID
	Other       BodyID
	Normal      geo.Vec3
	Penetration float64
	Point       geo.Vec3
}

// CollideFunc is called once per contact per internal step.
type CollideFunc func(Contact)
