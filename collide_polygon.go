package rigid2d

// clipVertex is a candidate contact point during face clipping.
type clipVertex struct {
	v Vec2
}

// findMaxSeparation finds the face of poly1 with the greatest separation
// from poly2, testing every face normal of poly1 as a candidate
// separating axis. A positive return beyond the shape radii means the
// polygons are disjoint.
func findMaxSeparation(poly1 *Polygon, xf1 Transform, poly2 *Polygon, xf2 Transform) (int, float64) {
	// Work in poly2's frame so poly2's vertices stay untransformed.
	xf := Transform{
		P: InvRotVec(xf2.Q, xf1.P.Sub(xf2.P)),
		Q: Rot{S: xf2.Q.C*xf1.Q.S - xf2.Q.S*xf1.Q.C, C: xf2.Q.C*xf1.Q.C + xf2.Q.S*xf1.Q.S},
	}

	bestIndex := 0
	maxSeparation := -maxFloat
	for i := 0; i < poly1.Count; i++ {
		n := RotVec(xf.Q, poly1.Normals[i])
		v1 := TransformVec(xf, poly1.Vertices[i])

		// Deepest poly2 vertex along this normal.
		si := maxFloat
		for j := 0; j < poly2.Count; j++ {
			sij := n.Dot(poly2.Vertices[j].Sub(v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}

	return bestIndex, maxSeparation
}

// findIncidentEdge returns the edge of poly2 most anti-parallel to the
// given reference edge of poly1, in world space.
func findIncidentEdge(poly1 *Polygon, xf1 Transform, edge1 int, poly2 *Polygon, xf2 Transform) [2]clipVertex {
	assert(0 <= edge1 && edge1 < poly1.Count)

	// Reference normal in poly2's frame.
	normal1 := InvRotVec(xf2.Q, RotVec(xf1.Q, poly1.Normals[edge1]))

	index := 0
	minDot := maxFloat
	for i := 0; i < poly2.Count; i++ {
		dot := normal1.Dot(poly2.Normals[i])
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	i1 := index
	i2 := 0
	if i1+1 < poly2.Count {
		i2 = i1 + 1
	}

	return [2]clipVertex{
		{v: TransformVec(xf2, poly2.Vertices[i1])},
		{v: TransformVec(xf2, poly2.Vertices[i2])},
	}
}

// clipSegmentToLine clips the segment vIn against the half-plane
// dot(normal, p) <= offset (Sutherland-Hodgman restricted to one plane).
// Returns the number of points kept.
func clipSegmentToLine(vOut *[2]clipVertex, vIn [2]clipVertex, normal Vec2, offset float64) int {
	numOut := 0

	distance0 := normal.Dot(vIn[0].v) - offset
	distance1 := normal.Dot(vIn[1].v) - offset

	if distance0 <= 0.0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0.0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	// Endpoints on opposite sides: keep the crossing point.
	if distance0*distance1 < 0.0 {
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].v = vIn[0].v.Add(vIn[1].v.Sub(vIn[0].v).Mul(interp))
		numOut++
	}

	return numOut
}

// CollidePolygons computes the SAT manifold between two convex polygons.
// The face of minimum overlap becomes the reference face (normal owner);
// the other polygon's most anti-parallel edge is clipped against the
// reference face's side planes, yielding up to two contact points.
func CollidePolygons(m *Manifold, polyA *Polygon, xfA Transform, polyB *Polygon, xfB Transform) {
	m.Count = 0
	totalRadius := 2.0 * polygonSkin

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return
	}
	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return
	}

	var poly1, poly2 *Polygon // reference, incident
	var xf1, xf2 Transform
	var edge1 int

	// Prefer face A unless face B is distinctly less penetrated; the
	// small tolerance keeps the choice stable frame to frame.
	const relTol = 0.98
	const absTol = 0.001
	if separationB > relTol*separationA+absTol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		m.Type = ManifoldFaceB
	} else {
		poly1, poly2 = polyA, polyB
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
		m.Type = ManifoldFaceA
	}

	incidentEdge := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	iv2 := 0
	if edge1+1 < poly1.Count {
		iv2 = edge1 + 1
	}
	v11 := poly1.Vertices[edge1]
	v12 := poly1.Vertices[iv2]

	localTangent := v12.Sub(v11).Normalized()
	localNormal := CrossVS(localTangent, 1.0)
	planePoint := v11.Add(v12).Mul(0.5)

	tangent := RotVec(xf1.Q, localTangent)
	normal := CrossVS(tangent, 1.0)

	v11w := TransformVec(xf1, v11)
	v12w := TransformVec(xf1, v12)

	frontOffset := normal.Dot(v11w)

	// Side planes, extruded by the skin so grazing points survive.
	sideOffset1 := -tangent.Dot(v11w) + totalRadius
	sideOffset2 := tangent.Dot(v12w) + totalRadius

	var clipPoints1, clipPoints2 [2]clipVertex

	if clipSegmentToLine(&clipPoints1, incidentEdge, tangent.Neg(), sideOffset1) < 2 {
		return
	}
	if clipSegmentToLine(&clipPoints2, clipPoints1, tangent, sideOffset2) < 2 {
		return
	}

	m.LocalNormal = localNormal
	m.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < maxManifoldPoints; i++ {
		separation := normal.Dot(clipPoints2[i].v) - frontOffset
		if separation <= totalRadius {
			m.Points[pointCount] = ManifoldPoint{
				LocalPoint: InvTransformVec(xf2, clipPoints2[i].v),
			}
			pointCount++
		}
	}

	m.Count = pointCount
}
