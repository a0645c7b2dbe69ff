package rigid2d

import "fmt"

// MouseJointDef describes a soft constraint dragging one body's anchor
// toward a world-space target, typically driven by a pointer. MaxForce
// bounds the pull so the body cannot be yanked through other bodies.
type MouseJointDef struct {
	Body   *Body
	Target Vec2

	MaxForce     float64
	Frequency    float64
	DampingRatio float64
}

func MakeMouseJointDef(body *Body, target Vec2) MouseJointDef {
	return MouseJointDef{
		Body:         body,
		Target:       target,
		Frequency:    5.0,
		DampingRatio: 0.7,
	}
}

func (def MouseJointDef) bodies() (*Body, *Body) { return nil, def.Body }

func (def MouseJointDef) build() (Joint, error) {
	if def.Body == nil {
		return nil, fmt.Errorf("%w: mouse joint needs a body", ErrInvalidArgument)
	}
	if def.Body.IsStatic() {
		return nil, fmt.Errorf("%w: mouse joint body must be dynamic", ErrInvalidArgument)
	}
	if !def.Target.IsValid() {
		return nil, fmt.Errorf("%w: invalid mouse joint target", ErrInvalidArgument)
	}
	if def.MaxForce < 0.0 || !isValid(def.MaxForce) {
		return nil, fmt.Errorf("%w: mouse joint max force %v", ErrInvalidArgument, def.MaxForce)
	}
	if def.Frequency <= 0.0 {
		return nil, fmt.Errorf("%w: mouse joint frequency %v must be positive", ErrInvalidArgument, def.Frequency)
	}

	maxForce := def.MaxForce
	if maxForce == 0.0 {
		maxForce = 1000.0 * def.Body.Mass()
	}

	return &MouseJoint{
		body:         def.Body,
		target:       def.Target,
		localAnchor:  def.Body.LocalPoint(def.Target),
		maxForce:     maxForce,
		frequency:    def.Frequency,
		dampingRatio: def.DampingRatio,
	}, nil
}

// MouseJoint pulls a body anchor toward a movable target with a critically
// dampable spring. It is soft by construction, so it has no position pass.
type MouseJoint struct {
	body *Body

	target       Vec2
	localAnchor  Vec2
	maxForce     float64
	frequency    float64
	dampingRatio float64

	impulse Vec2

	// Solver state.
	rB    Vec2
	mass  Mat22
	c     Vec2
	gamma float64
	dt    float64
}

func (j *MouseJoint) BodyA() *Body { return nil }

func (j *MouseJoint) BodyB() *Body { return j.body }

func (j *MouseJoint) AnchorA() Vec2 { return j.target }

func (j *MouseJoint) AnchorB() Vec2 { return j.body.WorldPoint(j.localAnchor) }

// Target returns the current drag target.
func (j *MouseJoint) Target() Vec2 { return j.target }

// SetTarget moves the drag target. Valid only between steps.
func (j *MouseJoint) SetTarget(target Vec2) error {
	if j.body.world != nil && j.body.world.stepping {
		return fmt.Errorf("%w: SetTarget during step", ErrInvalidOperation)
	}
	if !target.IsValid() {
		return fmt.Errorf("%w: invalid mouse joint target", ErrInvalidArgument)
	}
	j.target = target
	return nil
}

func (j *MouseJoint) initVelocity(ctx *solverContext) {
	b := j.body

	m := b.mass
	omega := 2.0 * pi * j.frequency
	d := 2.0 * m * j.dampingRatio * omega
	k := m * omega * omega

	h := ctx.dt
	j.dt = h
	j.gamma = h * (d + h*k)
	if j.gamma != 0.0 {
		j.gamma = 1.0 / j.gamma
	}
	beta := h * k * j.gamma

	j.rB = RotVec(b.xf.Q, j.localAnchor)

	// K = invMass + invI * skew(rB) * skew(rB)^T + gamma * I
	var km Mat22
	km.Ex.X = b.invMass + b.invI*j.rB.Y*j.rB.Y + j.gamma
	km.Ex.Y = -b.invI * j.rB.X * j.rB.Y
	km.Ey.X = km.Ex.Y
	km.Ey.Y = b.invMass + b.invI*j.rB.X*j.rB.X + j.gamma
	j.mass = km.Inverse()

	j.c = b.position.Add(j.rB).Sub(j.target).Mul(beta)

	if !ctx.warmOK {
		j.impulse = Vec2{}
	}
}

func (j *MouseJoint) warmStart() {
	b := j.body
	b.linearVelocity = b.linearVelocity.Add(j.impulse.Mul(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(j.impulse)
}

func (j *MouseJoint) solveVelocity() {
	b := j.body

	cdot := b.linearVelocity.Add(CrossSV(b.angularVelocity, j.rB))
	impulse := j.mass.MulVec(cdot.Add(j.c).Add(j.impulse.Mul(j.gamma)).Neg())

	// Clamp the accumulated impulse to the force budget for this step.
	oldImpulse := j.impulse
	j.impulse = j.impulse.Add(impulse)
	maxImpulse := j.dt * j.maxForce
	if j.impulse.LengthSquared() > maxImpulse*maxImpulse {
		j.impulse = j.impulse.Mul(maxImpulse / j.impulse.Length())
	}
	impulse = j.impulse.Sub(oldImpulse)

	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(impulse)
}

func (j *MouseJoint) solvePosition(ctx *solverContext) bool {
	return true
}
