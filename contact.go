package rigid2d

import "math"

// velocityPoint is the per-contact-point solver state.
type velocityPoint struct {
	rA, rB         Vec2
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

// Contact is the persistent collision constraint between one body pair.
// It owns the pair's manifold across steps and implements the constraint
// capability for the solver. Within the contact, bodyA always owns the
// reference frame for mixed pairs (polygon before circle) regardless of
// the canonical pair order used for the map key.
type Contact struct {
	pair  BodyPair
	bodyA *Body
	bodyB *Body

	manifold Manifold

	// Transforms at which the manifold was last recorded; persistence
	// matches old contact points where they were, not where the bodies
	// have since moved.
	prevXfA, prevXfB Transform

	staticFriction  float64
	dynamicFriction float64
	restitution     float64

	// Velocity solver state, rebuilt each step.
	normal     Vec2
	friction   float64
	points     [maxManifoldPoints]velocityPoint
	pointCount int
}

func newContact(pair BodyPair) *Contact {
	a, b := pair.A, pair.B
	// The reference shape (polygon for mixed pairs) is always bodyA so
	// that the face-contact manifold types stay meaningful.
	if a.shape.Type() == ShapeCircle && b.shape.Type() == ShapePolygon {
		a, b = b, a
	}
	return &Contact{
		pair:            pair,
		bodyA:           a,
		bodyB:           b,
		staticFriction:  mixFriction(a.staticFriction, b.staticFriction),
		dynamicFriction: mixFriction(a.dynamicFriction, b.dynamicFriction),
		restitution:     mixRestitution(a.restitution, b.restitution),
	}
}

// BodyA returns the contact's reference body; the manifold normal points
// from BodyA to BodyB.
func (c *Contact) BodyA() *Body { return c.bodyA }

func (c *Contact) BodyB() *Body { return c.bodyB }

// Manifold returns the persisted manifold.
func (c *Contact) Manifold() *Manifold { return &c.manifold }

// WorldManifold evaluates the manifold at the bodies' current transforms.
func (c *Contact) WorldManifold() WorldManifold {
	var wm WorldManifold
	wm.Initialize(&c.manifold, c.bodyA.xf, c.bodyA.shape.Radius(), c.bodyB.xf, c.bodyB.shape.Radius())
	return wm
}

// update re-runs the narrow-phase for the pair and merges the persisted
// impulses into the new manifold. Returns false when the shapes no longer
// overlap and the contact should be destroyed.
func (c *Contact) update(persistenceThreshold float64) bool {
	var newManifold Manifold
	collideShapes(&newManifold, c.bodyA, c.bodyB)

	if newManifold.Count == 0 {
		return false
	}

	mergeManifold(&newManifold, &c.manifold,
		c.bodyA.xf, c.bodyB.xf, c.prevXfA, c.prevXfB,
		c.bodyA.shape.Radius(), c.bodyB.shape.Radius(),
		persistenceThreshold)
	c.manifold = newManifold
	c.prevXfA = c.bodyA.xf
	c.prevXfB = c.bodyB.xf
	return true
}

// collideShapes dispatches on the pair of shape tags. bodyA's shape is
// never a circle when bodyB's is a polygon (newContact orders them).
func collideShapes(m *Manifold, a, b *Body) {
	switch {
	case a.shape.Type() == ShapeCircle && b.shape.Type() == ShapeCircle:
		CollideCircles(m, a.shape.(*Circle), a.xf, b.shape.(*Circle), b.xf)
	case a.shape.Type() == ShapePolygon && b.shape.Type() == ShapeCircle:
		CollidePolygonAndCircle(m, a.shape.(*Polygon), a.xf, b.shape.(*Circle), b.xf)
	case a.shape.Type() == ShapePolygon && b.shape.Type() == ShapePolygon:
		CollidePolygons(m, a.shape.(*Polygon), a.xf, b.shape.(*Polygon), b.xf)
	default:
		assert(false)
	}
}

func (c *Contact) initVelocity(ctx *solverContext) {
	a, b := c.bodyA, c.bodyB

	wm := c.WorldManifold()
	c.normal = wm.Normal
	c.pointCount = c.manifold.Count

	tangent := CrossVS(c.normal, 1.0)

	// Static friction holds while the contact is not sliding; once the
	// tangential speed exceeds the resting threshold the pair is sliding
	// and dynamic friction takes over.
	relTangentSpeed := 0.0
	if c.pointCount > 0 {
		dv := b.VelocityAtPoint(wm.Points[0]).Sub(a.VelocityAtPoint(wm.Points[0]))
		relTangentSpeed = math.Abs(dv.Dot(tangent))
	}
	if relTangentSpeed < ctx.def.RestingThreshold {
		c.friction = c.staticFriction
	} else {
		c.friction = c.dynamicFriction
	}

	for i := 0; i < c.pointCount; i++ {
		vp := &c.points[i]

		if ctx.warmOK {
			vp.normalImpulse = c.manifold.Points[i].NormalImpulse
			vp.tangentImpulse = c.manifold.Points[i].TangentImpulse
		} else {
			vp.normalImpulse = 0.0
			vp.tangentImpulse = 0.0
		}

		vp.rA = wm.Points[i].Sub(a.position)
		vp.rB = wm.Points[i].Sub(b.position)

		rnA := vp.rA.Cross(c.normal)
		rnB := vp.rB.Cross(c.normal)
		kNormal := a.invMass + b.invMass + a.invI*rnA*rnA + b.invI*rnB*rnB
		vp.normalMass = 0.0
		if kNormal > 0.0 {
			vp.normalMass = 1.0 / kNormal
		}

		rtA := vp.rA.Cross(tangent)
		rtB := vp.rB.Cross(tangent)
		kTangent := a.invMass + b.invMass + a.invI*rtA*rtA + b.invI*rtB*rtB
		vp.tangentMass = 0.0
		if kTangent > 0.0 {
			vp.tangentMass = 1.0 / kTangent
		}

		// Restitution applies only above the resting threshold; a resting
		// contact targets zero relative normal velocity, so no energy is
		// pumped into bodies already at rest.
		vp.velocityBias = 0.0
		vRel := c.normal.Dot(relativeVelocity(a, b, vp.rA, vp.rB))
		if vRel < -ctx.def.RestingThreshold {
			vp.velocityBias = -c.restitution * vRel
		}
	}
}

func relativeVelocity(a, b *Body, rA, rB Vec2) Vec2 {
	return b.linearVelocity.Add(CrossSV(b.angularVelocity, rB)).
		Sub(a.linearVelocity).Sub(CrossSV(a.angularVelocity, rA))
}

func (c *Contact) warmStart() {
	a, b := c.bodyA, c.bodyB
	tangent := CrossVS(c.normal, 1.0)

	for i := 0; i < c.pointCount; i++ {
		vp := &c.points[i]
		p := c.normal.Mul(vp.normalImpulse).Add(tangent.Mul(vp.tangentImpulse))

		a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
		a.angularVelocity -= a.invI * vp.rA.Cross(p)
		b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
		b.angularVelocity += b.invI * vp.rB.Cross(p)
	}
}

func (c *Contact) solveVelocity() {
	a, b := c.bodyA, c.bodyB
	normal := c.normal
	tangent := CrossVS(normal, 1.0)

	// Friction first: non-penetration is more important, so the normal
	// solve gets the last word within the iteration.
	for i := 0; i < c.pointCount; i++ {
		vp := &c.points[i]

		dv := relativeVelocity(a, b, vp.rA, vp.rB)
		vt := dv.Dot(tangent)
		lambda := vp.tangentMass * (-vt)

		// Coulomb cone: |tangent impulse| <= friction * normal impulse,
		// clamped on the accumulated total.
		maxFriction := c.friction * vp.normalImpulse
		newImpulse := clamp(vp.tangentImpulse+lambda, -maxFriction, maxFriction)
		lambda = newImpulse - vp.tangentImpulse
		vp.tangentImpulse = newImpulse

		p := tangent.Mul(lambda)
		a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
		a.angularVelocity -= a.invI * vp.rA.Cross(p)
		b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
		b.angularVelocity += b.invI * vp.rB.Cross(p)
	}

	for i := 0; i < c.pointCount; i++ {
		vp := &c.points[i]

		dv := relativeVelocity(a, b, vp.rA, vp.rB)
		vn := dv.Dot(normal)
		lambda := -vp.normalMass * (vn - vp.velocityBias)

		// Accumulated normal impulse stays non-negative: contacts push,
		// never pull.
		newImpulse := math.Max(vp.normalImpulse+lambda, 0.0)
		lambda = newImpulse - vp.normalImpulse
		vp.normalImpulse = newImpulse

		p := normal.Mul(lambda)
		a.linearVelocity = a.linearVelocity.Sub(p.Mul(a.invMass))
		a.angularVelocity -= a.invI * vp.rA.Cross(p)
		b.linearVelocity = b.linearVelocity.Add(p.Mul(b.invMass))
		b.angularVelocity += b.invI * vp.rB.Cross(p)
	}
}

// storeImpulses writes the accumulated impulses back into the manifold so
// the next step can warm-start from them.
func (c *Contact) storeImpulses() {
	for i := 0; i < c.pointCount; i++ {
		c.manifold.Points[i].NormalImpulse = c.points[i].normalImpulse
		c.manifold.Points[i].TangentImpulse = c.points[i].tangentImpulse
	}
}

// positionManifold re-evaluates one contact point's normal, location and
// separation at the bodies' current (partially corrected) positions.
func (c *Contact) positionManifold(index int, xfA, xfB Transform) (normal, point Vec2, separation float64) {
	radiusA := c.bodyA.shape.Radius()
	radiusB := c.bodyB.shape.Radius()

	switch c.manifold.Type {
	case ManifoldCircles:
		pointA := TransformVec(xfA, c.manifold.LocalPoint)
		pointB := TransformVec(xfB, c.manifold.Points[0].LocalPoint)
		normal = Vec2{1.0, 0.0}
		if Vec2DistanceSquared(pointA, pointB) > epsilon*epsilon {
			normal = pointB.Sub(pointA).Normalized()
		}
		point = pointA.Add(pointB).Mul(0.5)
		separation = pointB.Sub(pointA).Dot(normal) - radiusA - radiusB

	case ManifoldFaceA:
		normal = RotVec(xfA.Q, c.manifold.LocalNormal)
		planePoint := TransformVec(xfA, c.manifold.LocalPoint)
		clipPoint := TransformVec(xfB, c.manifold.Points[index].LocalPoint)
		separation = clipPoint.Sub(planePoint).Dot(normal) - radiusA - radiusB
		point = clipPoint

	case ManifoldFaceB:
		normal = RotVec(xfB.Q, c.manifold.LocalNormal)
		planePoint := TransformVec(xfB, c.manifold.LocalPoint)
		clipPoint := TransformVec(xfA, c.manifold.Points[index].LocalPoint)
		separation = clipPoint.Sub(planePoint).Dot(normal) - radiusA - radiusB
		point = clipPoint
		normal = normal.Neg()
	}
	return normal, point, separation
}

// solvePosition resolves residual penetration beyond the slop margin by a
// direct positional nudge through the effective contact mass. It never
// touches velocities, so it cannot inject kinetic energy.
func (c *Contact) solvePosition(ctx *solverContext) bool {
	a, b := c.bodyA, c.bodyB
	minSeparation := 0.0

	for i := 0; i < c.manifold.Count; i++ {
		xfA := MakeTransform(a.position, a.angle)
		xfB := MakeTransform(b.position, b.angle)

		normal, point, separation := c.positionManifold(i, xfA, xfB)

		rA := point.Sub(a.position)
		rB := point.Sub(b.position)

		minSeparation = math.Min(minSeparation, separation)

		// Correct only beyond the slop margin, and never by more than
		// maxLinearCorrection per iteration to prevent overshoot.
		correction := clamp(ctx.def.Baumgarte*(separation+ctx.def.PositionSlop), -maxLinearCorrection, 0.0)

		rnA := rA.Cross(normal)
		rnB := rB.Cross(normal)
		k := a.invMass + b.invMass + a.invI*rnA*rnA + b.invI*rnB*rnB

		impulse := 0.0
		if k > 0.0 {
			impulse = -correction / k
		}
		p := normal.Mul(impulse)

		a.position = a.position.Sub(p.Mul(a.invMass))
		a.angle -= a.invI * rA.Cross(p)
		b.position = b.position.Add(p.Mul(b.invMass))
		b.angle += b.invI * rB.Cross(p)
	}

	// The correction stops inside the slop margin, so full resolution is
	// not expected; within 3x slop counts as solved.
	return minSeparation >= -3.0*ctx.def.PositionSlop
}
