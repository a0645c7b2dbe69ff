package rigid2d

// ShapeType tags the closed set of shape variants. The narrow-phase
// dispatches on the pair of tags rather than virtual double-dispatch.
type ShapeType uint8

const (
	ShapeCircle ShapeType = iota
	ShapePolygon
	shapeTypeCount
)

// MassData holds the mass properties computed for a shape at a given
// density. Center is in the shape's local frame; I is the rotational
// inertia about the local origin.
type MassData struct {
	Mass   float64
	Center Vec2
	I      float64
}

// Shape is the geometric description of a body. Implementations are the
// closed variant set {Circle, Polygon}; all queries are in the shape's
// local frame unless a transform is supplied.
type Shape interface {
	Type() ShapeType

	// ComputeAABB returns the world-space bounding box of the shape
	// under the given transform.
	ComputeAABB(xf Transform) AABB

	// ComputeMass returns mass, center and rotational inertia for the
	// given density.
	ComputeMass(density float64) MassData

	// Support returns the local-space vertex of the shape furthest
	// along the given direction.
	Support(dir Vec2) Vec2

	// Radius is the collision skin of the shape: the full radius for a
	// circle, a thin skin for a polygon.
	Radius() float64

	// Validate reports whether the shape is well formed (non-degenerate,
	// convex). Wraps ErrInvalidArgument on failure.
	Validate() error
}
