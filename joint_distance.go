package rigid2d

import (
	"fmt"
	"math"
)

// DistanceJointDef describes a joint holding two anchor points at a fixed
// distance. Anchors are given in world space at definition time. A zero
// Length means "use the current anchor distance". With Frequency > 0 the
// constraint becomes a damped spring and skips position correction.
type DistanceJointDef struct {
	BodyA, BodyB     *Body
	AnchorA, AnchorB Vec2
	Length           float64
	Frequency        float64
	DampingRatio     float64
}

func MakeDistanceJointDef(bodyA, bodyB *Body, anchorA, anchorB Vec2) DistanceJointDef {
	return DistanceJointDef{
		BodyA:   bodyA,
		BodyB:   bodyB,
		AnchorA: anchorA,
		AnchorB: anchorB,
	}
}

func (def DistanceJointDef) bodies() (*Body, *Body) { return def.BodyA, def.BodyB }

func (def DistanceJointDef) build() (Joint, error) {
	if def.BodyA == nil || def.BodyB == nil {
		return nil, fmt.Errorf("%w: distance joint needs two bodies", ErrInvalidArgument)
	}
	if def.BodyA == def.BodyB {
		return nil, fmt.Errorf("%w: distance joint bodies must differ", ErrInvalidArgument)
	}
	if def.Length < 0.0 || !isValid(def.Length) {
		return nil, fmt.Errorf("%w: distance joint length %v", ErrInvalidArgument, def.Length)
	}

	j := &DistanceJoint{
		bodyA:        def.BodyA,
		bodyB:        def.BodyB,
		localAnchorA: def.BodyA.LocalPoint(def.AnchorA),
		localAnchorB: def.BodyB.LocalPoint(def.AnchorB),
		length:       def.Length,
		frequency:    def.Frequency,
		dampingRatio: def.DampingRatio,
	}
	if j.length == 0.0 {
		j.length = Vec2Distance(def.AnchorA, def.AnchorB)
	}
	return j, nil
}

// DistanceJoint keeps two anchor points a fixed distance apart, rigid by
// default or springy when a frequency is set.
type DistanceJoint struct {
	bodyA, bodyB *Body

	localAnchorA Vec2
	localAnchorB Vec2
	length       float64
	frequency    float64
	dampingRatio float64

	impulse float64

	// Solver state.
	u     Vec2
	rA    Vec2
	rB    Vec2
	mass  float64
	gamma float64
	bias  float64
}

func (j *DistanceJoint) BodyA() *Body { return j.bodyA }

func (j *DistanceJoint) BodyB() *Body { return j.bodyB }

func (j *DistanceJoint) AnchorA() Vec2 { return j.bodyA.WorldPoint(j.localAnchorA) }

func (j *DistanceJoint) AnchorB() Vec2 { return j.bodyB.WorldPoint(j.localAnchorB) }

// Length returns the joint's rest length.
func (j *DistanceJoint) Length() float64 { return j.length }

func (j *DistanceJoint) initVelocity(ctx *solverContext) {
	a, b := j.bodyA, j.bodyB

	j.rA = RotVec(a.xf.Q, j.localAnchorA)
	j.rB = RotVec(b.xf.Q, j.localAnchorB)
	j.u = b.position.Add(j.rB).Sub(a.position).Sub(j.rA)

	// Handle singularity: anchors coincident means no defined axis.
	length := j.u.Length()
	if length > ctx.def.PositionSlop {
		j.u = j.u.Mul(1.0 / length)
	} else {
		j.u = Vec2{}
	}

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := a.invMass + b.invMass + a.invI*crA*crA + b.invI*crB*crB

	j.gamma = 0.0
	j.bias = 0.0
	if j.frequency > 0.0 {
		c := length - j.length
		m := 0.0
		if invMass > 0.0 {
			m = 1.0 / invMass
		}
		omega := 2.0 * pi * j.frequency
		d := 2.0 * m * j.dampingRatio * omega
		k := m * omega * omega

		h := ctx.dt
		j.gamma = h * (d + h*k)
		if j.gamma != 0.0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * h * k * j.gamma
		invMass += j.gamma
	}

	j.mass = 0.0
	if invMass > 0.0 {
		j.mass = 1.0 / invMass
	}

	if !ctx.warmOK {
		j.impulse = 0.0
	}
}

func (j *DistanceJoint) warmStart() {
	a, b := j.bodyA, j.bodyB
	p := j.u.Mul(j.impulse)
	a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
	a.angularVelocity -= a.invI * j.rA.Cross(p)
	b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(p)
}

func (j *DistanceJoint) solveVelocity() {
	a, b := j.bodyA, j.bodyB

	vpA := a.linearVelocity.Add(CrossSV(a.angularVelocity, j.rA))
	vpB := b.linearVelocity.Add(CrossSV(b.angularVelocity, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	p := j.u.Mul(impulse)
	a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
	a.angularVelocity -= a.invI * j.rA.Cross(p)
	b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(p)
}

func (j *DistanceJoint) solvePosition(ctx *solverContext) bool {
	if j.frequency > 0.0 {
		// Springs carry their positional error in the velocity bias.
		return true
	}

	a, b := j.bodyA, j.bodyB
	qA := MakeRot(a.angle)
	qB := MakeRot(b.angle)

	rA := RotVec(qA, j.localAnchorA)
	rB := RotVec(qB, j.localAnchorB)
	u := b.position.Add(rB).Sub(a.position).Sub(rA)

	length := u.Length()
	u = u.Normalized()
	c := clamp(length-j.length, -maxLinearCorrection, maxLinearCorrection)

	impulse := -j.mass * c
	p := u.Mul(impulse)

	a.position = a.position.Sub(p.Mul(a.invMass))
	a.angle -= a.invI * rA.Cross(p)
	b.position = b.position.Add(p.Mul(b.invMass))
	b.angle += b.invI * rB.Cross(p)

	return math.Abs(c) < ctx.def.PositionSlop
}
