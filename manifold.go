package rigid2d

// ManifoldType selects how the manifold's local data is interpreted when
// projected into world space.
type ManifoldType uint8

const (
	// ManifoldCircles: LocalPoint is the center of circle A, each point's
	// LocalPoint the center of circle B. The normal is derived from the
	// two centers.
	ManifoldCircles ManifoldType = iota
	// ManifoldFaceA: LocalNormal and LocalPoint are the reference face on
	// shape A; point LocalPoints are clip points on shape B.
	ManifoldFaceA
	// ManifoldFaceB: the reference face belongs to shape B.
	ManifoldFaceB
)

// ManifoldPoint is one contact point of a manifold. The accumulated
// impulses are carried across steps to warm-start the solver.
type ManifoldPoint struct {
	LocalPoint     Vec2
	NormalImpulse  float64
	TangentImpulse float64
}

// Manifold describes how two shapes touch: 1-2 contact points plus a
// normal, stored in local frames so penetration can be re-evaluated as
// the bodies move during position correction.
type Manifold struct {
	Type        ManifoldType
	LocalNormal Vec2
	LocalPoint  Vec2
	Points      [maxManifoldPoints]ManifoldPoint
	Count       int
}

// WorldManifold is a manifold evaluated at a concrete pair of transforms:
// world-space normal (pointing from A to B), contact points, and signed
// separations (negative = overlapping).
type WorldManifold struct {
	Normal      Vec2
	Points      [maxManifoldPoints]Vec2
	Separations [maxManifoldPoints]float64
}

// Initialize evaluates m under the given transforms and shape radii.
func (wm *WorldManifold) Initialize(m *Manifold, xfA Transform, radiusA float64, xfB Transform, radiusB float64) {
	if m.Count == 0 {
		return
	}

	switch m.Type {
	case ManifoldCircles:
		wm.Normal = Vec2{1.0, 0.0}
		pointA := TransformVec(xfA, m.LocalPoint)
		pointB := TransformVec(xfB, m.Points[0].LocalPoint)
		if Vec2DistanceSquared(pointA, pointB) > epsilon*epsilon {
			wm.Normal = pointB.Sub(pointA).Normalized()
		}
		cA := pointA.Add(wm.Normal.Mul(radiusA))
		cB := pointB.Sub(wm.Normal.Mul(radiusB))
		wm.Points[0] = cA.Add(cB).Mul(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = RotVec(xfA.Q, m.LocalNormal)
		planePoint := TransformVec(xfA, m.LocalPoint)
		for i := 0; i < m.Count; i++ {
			clipPoint := TransformVec(xfB, m.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Mul(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Mul(radiusB))
			wm.Points[i] = cA.Add(cB).Mul(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		wm.Normal = RotVec(xfB.Q, m.LocalNormal)
		planePoint := TransformVec(xfB, m.LocalPoint)
		for i := 0; i < m.Count; i++ {
			clipPoint := TransformVec(xfA, m.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Mul(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Mul(radiusA))
			wm.Points[i] = cA.Add(cB).Mul(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}
		// Keep the published normal pointing from A to B.
		wm.Normal = wm.Normal.Neg()
	}
}

// mergeManifold carries the accumulated impulses of oldM forward into
// newM. Points are matched by world-space proximity: a new point closer
// than threshold to an old point inherits its impulses as a warm-start
// seed; unmatched points start cold. The old manifold is evaluated at the
// transforms it was recorded under, so a body that jumped between steps
// leaves its impulses behind.
func mergeManifold(newM, oldM *Manifold, xfA, xfB, oldXfA, oldXfB Transform, radiusA, radiusB, threshold float64) {
	if oldM.Count == 0 || newM.Count == 0 {
		return
	}

	var oldW, newW WorldManifold
	oldW.Initialize(oldM, oldXfA, radiusA, oldXfB, radiusB)
	newW.Initialize(newM, xfA, radiusA, xfB, radiusB)

	thresholdSq := threshold * threshold
	var taken [maxManifoldPoints]bool
	for i := 0; i < newM.Count; i++ {
		best := -1
		bestDistSq := thresholdSq
		for j := 0; j < oldM.Count; j++ {
			if taken[j] {
				continue
			}
			d := Vec2DistanceSquared(newW.Points[i], oldW.Points[j])
			if d < bestDistSq {
				bestDistSq = d
				best = j
			}
		}
		if best >= 0 {
			taken[best] = true
			newM.Points[i].NormalImpulse = oldM.Points[best].NormalImpulse
			newM.Points[i].TangentImpulse = oldM.Points[best].TangentImpulse
		}
	}
}
