package rigid2d

import "fmt"

// RevoluteJointDef describes a pin joint: both bodies share one world
// anchor point and remain free to rotate about it.
type RevoluteJointDef struct {
	BodyA, BodyB *Body
	Anchor       Vec2
}

func MakeRevoluteJointDef(bodyA, bodyB *Body, anchor Vec2) RevoluteJointDef {
	return RevoluteJointDef{BodyA: bodyA, BodyB: bodyB, Anchor: anchor}
}

func (def RevoluteJointDef) bodies() (*Body, *Body) { return def.BodyA, def.BodyB }

func (def RevoluteJointDef) build() (Joint, error) {
	if def.BodyA == nil || def.BodyB == nil {
		return nil, fmt.Errorf("%w: revolute joint needs two bodies", ErrInvalidArgument)
	}
	if def.BodyA == def.BodyB {
		return nil, fmt.Errorf("%w: revolute joint bodies must differ", ErrInvalidArgument)
	}
	if !def.Anchor.IsValid() {
		return nil, fmt.Errorf("%w: invalid revolute joint anchor", ErrInvalidArgument)
	}

	return &RevoluteJoint{
		bodyA:        def.BodyA,
		bodyB:        def.BodyB,
		localAnchorA: def.BodyA.LocalPoint(def.Anchor),
		localAnchorB: def.BodyB.LocalPoint(def.Anchor),
	}, nil
}

// RevoluteJoint pins two bodies together at a point. The two translational
// constraints are coupled, so both solver passes solve the full 2x2 system
// rather than two independent axes.
type RevoluteJoint struct {
	bodyA, bodyB *Body

	localAnchorA Vec2
	localAnchorB Vec2

	impulse Vec2

	// Solver state.
	rA Vec2
	rB Vec2
	k  Mat22
}

func (j *RevoluteJoint) BodyA() *Body { return j.bodyA }

func (j *RevoluteJoint) BodyB() *Body { return j.bodyB }

func (j *RevoluteJoint) AnchorA() Vec2 { return j.bodyA.WorldPoint(j.localAnchorA) }

func (j *RevoluteJoint) AnchorB() Vec2 { return j.bodyB.WorldPoint(j.localAnchorB) }

// pointMassMatrix builds the 2x2 effective mass matrix of the
// point-to-point constraint for the given anchor offsets.
func pointMassMatrix(a, b *Body, rA, rB Vec2) Mat22 {
	var k Mat22
	k.Ex.X = a.invMass + b.invMass + a.invI*rA.Y*rA.Y + b.invI*rB.Y*rB.Y
	k.Ex.Y = -a.invI*rA.X*rA.Y - b.invI*rB.X*rB.Y
	k.Ey.X = k.Ex.Y
	k.Ey.Y = a.invMass + b.invMass + a.invI*rA.X*rA.X + b.invI*rB.X*rB.X
	return k
}

func (j *RevoluteJoint) initVelocity(ctx *solverContext) {
	a, b := j.bodyA, j.bodyB

	j.rA = RotVec(a.xf.Q, j.localAnchorA)
	j.rB = RotVec(b.xf.Q, j.localAnchorB)
	j.k = pointMassMatrix(a, b, j.rA, j.rB)

	if !ctx.warmOK {
		j.impulse = Vec2{}
	}
}

func (j *RevoluteJoint) warmStart() {
	a, b := j.bodyA, j.bodyB
	a.linearVelocity = a.linearVelocity.Sub(j.impulse.Mul(a.invMass))
	a.angularVelocity -= a.invI * j.rA.Cross(j.impulse)
	b.linearVelocity = b.linearVelocity.Add(j.impulse.Mul(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(j.impulse)
}

func (j *RevoluteJoint) solveVelocity() {
	a, b := j.bodyA, j.bodyB

	cdot := b.linearVelocity.Add(CrossSV(b.angularVelocity, j.rB)).
		Sub(a.linearVelocity).Sub(CrossSV(a.angularVelocity, j.rA))
	impulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)

	a.linearVelocity = a.linearVelocity.Sub(impulse.Mul(a.invMass))
	a.angularVelocity -= a.invI * j.rA.Cross(impulse)
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(impulse)
}

func (j *RevoluteJoint) solvePosition(ctx *solverContext) bool {
	a, b := j.bodyA, j.bodyB
	qA := MakeRot(a.angle)
	qB := MakeRot(b.angle)

	rA := RotVec(qA, j.localAnchorA)
	rB := RotVec(qB, j.localAnchorB)

	c := b.position.Add(rB).Sub(a.position).Sub(rA)
	positionError := c.Length()

	k := pointMassMatrix(a, b, rA, rB)
	impulse := k.Solve(c).Neg()

	a.position = a.position.Sub(impulse.Mul(a.invMass))
	a.angle -= a.invI * rA.Cross(impulse)
	b.position = b.position.Add(impulse.Mul(b.invMass))
	b.angle += b.invI * rB.Cross(impulse)

	return positionError <= ctx.def.PositionSlop
}
