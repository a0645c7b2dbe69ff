package rigid2d

import (
	"fmt"
	"math"
)

// WeldJointDef describes a joint that locks two bodies together: the
// shared anchor and the bodies' relative angle at creation time are both
// held fixed.
type WeldJointDef struct {
	BodyA, BodyB *Body
	Anchor       Vec2
}

func MakeWeldJointDef(bodyA, bodyB *Body, anchor Vec2) WeldJointDef {
	return WeldJointDef{BodyA: bodyA, BodyB: bodyB, Anchor: anchor}
}

func (def WeldJointDef) bodies() (*Body, *Body) { return def.BodyA, def.BodyB }

func (def WeldJointDef) build() (Joint, error) {
	if def.BodyA == nil || def.BodyB == nil {
		return nil, fmt.Errorf("%w: weld joint needs two bodies", ErrInvalidArgument)
	}
	if def.BodyA == def.BodyB {
		return nil, fmt.Errorf("%w: weld joint bodies must differ", ErrInvalidArgument)
	}
	if !def.Anchor.IsValid() {
		return nil, fmt.Errorf("%w: invalid weld joint anchor", ErrInvalidArgument)
	}

	return &WeldJoint{
		bodyA:          def.BodyA,
		bodyB:          def.BodyB,
		localAnchorA:   def.BodyA.LocalPoint(def.Anchor),
		localAnchorB:   def.BodyB.LocalPoint(def.Anchor),
		referenceAngle: def.BodyB.angle - def.BodyA.angle,
	}, nil
}

// WeldJoint removes all relative motion between two bodies. The two
// translational constraints and the angular one are coupled, so both
// solver passes solve the full 3x3 system.
type WeldJoint struct {
	bodyA, bodyB *Body

	localAnchorA   Vec2
	localAnchorB   Vec2
	referenceAngle float64

	impulse Vec3

	// Solver state.
	rA   Vec2
	rB   Vec2
	mass Mat33
}

func (j *WeldJoint) BodyA() *Body { return j.bodyA }

func (j *WeldJoint) BodyB() *Body { return j.bodyB }

func (j *WeldJoint) AnchorA() Vec2 { return j.bodyA.WorldPoint(j.localAnchorA) }

func (j *WeldJoint) AnchorB() Vec2 { return j.bodyB.WorldPoint(j.localAnchorB) }

// ReferenceAngle returns the locked relative angle (angleB - angleA).
func (j *WeldJoint) ReferenceAngle() float64 { return j.referenceAngle }

// weldMassMatrix builds the 3x3 effective mass matrix coupling the point
// constraint with the angular one.
func weldMassMatrix(a, b *Body, rA, rB Vec2) Mat33 {
	var k Mat33
	k.Ex.X = a.invMass + b.invMass + a.invI*rA.Y*rA.Y + b.invI*rB.Y*rB.Y
	k.Ey.X = -a.invI*rA.Y*rA.X - b.invI*rB.Y*rB.X
	k.Ez.X = -a.invI*rA.Y - b.invI*rB.Y
	k.Ex.Y = k.Ey.X
	k.Ey.Y = a.invMass + b.invMass + a.invI*rA.X*rA.X + b.invI*rB.X*rB.X
	k.Ez.Y = a.invI*rA.X + b.invI*rB.X
	k.Ex.Z = k.Ez.X
	k.Ey.Z = k.Ez.Y
	k.Ez.Z = a.invI + b.invI
	return k
}

func (j *WeldJoint) initVelocity(ctx *solverContext) {
	a, b := j.bodyA, j.bodyB

	j.rA = RotVec(a.xf.Q, j.localAnchorA)
	j.rB = RotVec(b.xf.Q, j.localAnchorB)
	j.mass = weldMassMatrix(a, b, j.rA, j.rB)

	if !ctx.warmOK {
		j.impulse = Vec3{}
	}
}

func (j *WeldJoint) warmStart() {
	a, b := j.bodyA, j.bodyB
	p := Vec2{j.impulse.X, j.impulse.Y}

	a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
	a.angularVelocity -= a.invI * (j.rA.Cross(p) + j.impulse.Z)
	b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
	b.angularVelocity += b.invI * (j.rB.Cross(p) + j.impulse.Z)
}

func (j *WeldJoint) solveVelocity() {
	a, b := j.bodyA, j.bodyB

	cdot1 := relativeVelocity(a, b, j.rA, j.rB)
	cdot2 := b.angularVelocity - a.angularVelocity

	impulse := j.mass.Solve(Vec3{cdot1.X, cdot1.Y, cdot2}).Neg()
	j.impulse = j.impulse.Add(impulse)

	p := Vec2{impulse.X, impulse.Y}
	a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
	a.angularVelocity -= a.invI * (j.rA.Cross(p) + impulse.Z)
	b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
	b.angularVelocity += b.invI * (j.rB.Cross(p) + impulse.Z)
}

func (j *WeldJoint) solvePosition(ctx *solverContext) bool {
	a, b := j.bodyA, j.bodyB
	qA := MakeRot(a.angle)
	qB := MakeRot(b.angle)

	rA := RotVec(qA, j.localAnchorA)
	rB := RotVec(qB, j.localAnchorB)

	c1 := b.position.Add(rB).Sub(a.position).Sub(rA)
	c2 := b.angle - a.angle - j.referenceAngle

	positionError := c1.Length()
	angularError := math.Abs(c2)

	k := weldMassMatrix(a, b, rA, rB)
	impulse := k.Solve(Vec3{c1.X, c1.Y, c2}).Neg()

	p := Vec2{impulse.X, impulse.Y}
	a.position = a.position.Sub(p.Mul(a.invMass))
	a.angle -= a.invI * (rA.Cross(p) + impulse.Z)
	b.position = b.position.Add(p.Mul(b.invMass))
	b.angle += b.invI * (rB.Cross(p) + impulse.Z)

	return positionError <= ctx.def.PositionSlop && angularError <= angularSlop
}
