package rigid2d

import "fmt"

// BodyDef describes a body to be created. Create with MakeBodyDef to get
// the documented defaults, then override fields as needed.
type BodyDef struct {
	// Shape is owned exclusively by the body once added to a world.
	Shape Shape

	Position        Vec2
	Angle           float64
	LinearVelocity  Vec2
	AngularVelocity float64

	// Density is the mass per unit area used to derive mass and inertia.
	// Ignored for static bodies.
	Density float64

	Restitution     float64
	StaticFriction  float64
	DynamicFriction float64

	// Damping coefficients; 0 means no damping.
	LinearDamping  float64
	AngularDamping float64

	// Static bodies have infinite mass and never move.
	Static bool
}

func MakeBodyDef() BodyDef {
	return BodyDef{
		Density:         1.0,
		Restitution:     DefaultRestitution,
		StaticFriction:  DefaultStaticFriction,
		DynamicFriction: DefaultDynamicFriction,
	}
}

// Body is a rigid body. Bodies are owned by exactly one World and are
// created through World.AddBody; the zero Body is not usable. The body's
// position is its center of mass. Inverse mass and inverse inertia are
// precomputed at creation and never renormalized mid-step.
type Body struct {
	id    uint32
	world *World
	shape Shape

	xf              Transform
	position        Vec2
	angle           float64
	linearVelocity  Vec2
	angularVelocity float64

	force  Vec2
	torque float64

	mass    float64
	invMass float64
	inertia float64
	invI    float64

	restitution     float64
	staticFriction  float64
	dynamicFriction float64
	linearDamping   float64
	angularDamping  float64

	static bool

	// World-space AABB fattened by the broad-phase margin, refreshed at
	// the end of each step.
	fatAABB AABB
}

func newBody(def BodyDef, id uint32, world *World) (*Body, error) {
	if def.Shape == nil {
		return nil, fmt.Errorf("%w: body has no shape", ErrInvalidArgument)
	}
	if err := def.Shape.Validate(); err != nil {
		return nil, err
	}
	if !def.Position.IsValid() || !isValid(def.Angle) {
		return nil, fmt.Errorf("%w: invalid body transform", ErrInvalidArgument)
	}
	if def.Restitution < 0.0 || def.Restitution > 1.0 {
		return nil, fmt.Errorf("%w: restitution %v outside [0,1]", ErrInvalidArgument, def.Restitution)
	}

	b := &Body{
		id:              id,
		world:           world,
		shape:           def.Shape,
		position:        def.Position,
		angle:           def.Angle,
		linearVelocity:  def.LinearVelocity,
		angularVelocity: def.AngularVelocity,
		restitution:     def.Restitution,
		staticFriction:  def.StaticFriction,
		dynamicFriction: def.DynamicFriction,
		linearDamping:   def.LinearDamping,
		angularDamping:  def.AngularDamping,
		static:          def.Static,
	}

	if !def.Static {
		if !(def.Density > 0.0) || !isValid(def.Density) {
			return nil, fmt.Errorf("%w: dynamic body density %v must be positive", ErrInvalidArgument, def.Density)
		}
		md := def.Shape.ComputeMass(def.Density)
		if !(md.Mass > 0.0) {
			return nil, fmt.Errorf("%w: dynamic body has non-positive mass", ErrInvalidArgument)
		}
		b.mass = md.Mass
		b.invMass = 1.0 / md.Mass
		// Shapes are centered on their centroid, so md.I is already the
		// inertia about the center of mass.
		b.inertia = md.I
		if md.I > 0.0 {
			b.invI = 1.0 / md.I
		}
	}

	b.synchronizeTransform()
	b.fatAABB = b.shape.ComputeAABB(b.xf).Fattened(aabbMargin)
	return b, nil
}

func (b *Body) synchronizeTransform() {
	b.xf = MakeTransform(b.position, b.angle)
}

// ID returns the body's stable identity within its world.
func (b *Body) ID() uint32 { return b.id }

func (b *Body) Shape() Shape { return b.shape }

func (b *Body) Position() Vec2 { return b.position }

func (b *Body) Angle() float64 { return b.angle }

func (b *Body) Transform() Transform { return b.xf }

// SetTransform moves the body. Valid only between steps.
func (b *Body) SetTransform(position Vec2, angle float64) error {
	if b.world != nil && b.world.stepping {
		return fmt.Errorf("%w: SetTransform during step", ErrInvalidOperation)
	}
	if !position.IsValid() || !isValid(angle) {
		return fmt.Errorf("%w: invalid transform", ErrInvalidArgument)
	}
	b.position = position
	b.angle = angle
	b.synchronizeTransform()
	b.fatAABB = b.shape.ComputeAABB(b.xf).Fattened(aabbMargin)
	return nil
}

func (b *Body) LinearVelocity() Vec2 { return b.linearVelocity }

func (b *Body) SetLinearVelocity(v Vec2) {
	if b.static {
		return
	}
	b.linearVelocity = v
}

func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

func (b *Body) SetAngularVelocity(w float64) {
	if b.static {
		return
	}
	b.angularVelocity = w
}

func (b *Body) Mass() float64 { return b.mass }

func (b *Body) Inertia() float64 { return b.inertia }

func (b *Body) IsStatic() bool { return b.static }

func (b *Body) Restitution() float64 { return b.restitution }

func (b *Body) StaticFriction() float64 { return b.staticFriction }

func (b *Body) DynamicFriction() float64 { return b.dynamicFriction }

// WorldPoint maps a local point to world space.
func (b *Body) WorldPoint(local Vec2) Vec2 {
	return TransformVec(b.xf, local)
}

// LocalPoint maps a world point to the body's local frame.
func (b *Body) LocalPoint(world Vec2) Vec2 {
	return InvTransformVec(b.xf, world)
}

// VelocityAtPoint returns the velocity of the given world point as if it
// were attached to the body.
func (b *Body) VelocityAtPoint(world Vec2) Vec2 {
	return b.linearVelocity.Add(CrossSV(b.angularVelocity, world.Sub(b.position)))
}

// ComputeAABB returns the tight world-space bounding box of the body.
func (b *Body) ComputeAABB() AABB {
	return b.shape.ComputeAABB(b.xf)
}

// ApplyForce accumulates a force through the center of mass for the next
// step. Cleared after each step.
func (b *Body) ApplyForce(force Vec2) {
	if b.static {
		return
	}
	b.force = b.force.Add(force)
}

// ApplyForceAtPoint accumulates a force applied at a world point,
// generating torque about the center of mass.
func (b *Body) ApplyForceAtPoint(force, point Vec2) {
	if b.static {
		return
	}
	b.force = b.force.Add(force)
	b.torque += point.Sub(b.position).Cross(force)
}

// ApplyTorque accumulates a torque for the next step.
func (b *Body) ApplyTorque(torque float64) {
	if b.static {
		return
	}
	b.torque += torque
}

// ApplyImpulse changes the body's velocity immediately by an impulse
// applied at a world point.
func (b *Body) ApplyImpulse(impulse, point Vec2) {
	if b.static {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
	b.angularVelocity += b.invI * point.Sub(b.position).Cross(impulse)
}

// KineticEnergy returns the body's linear plus rotational kinetic energy.
func (b *Body) KineticEnergy() float64 {
	linear := 0.5 * b.mass * b.linearVelocity.LengthSquared()
	rotational := 0.5 * b.inertia * b.angularVelocity * b.angularVelocity
	return linear + rotational
}
