package rigid2d

// CollideCircles computes the manifold between two circles. No overlap
// leaves m.Count at zero.
func CollideCircles(m *Manifold, circleA *Circle, xfA Transform, circleB *Circle, xfB Transform) {
	m.Count = 0

	d := xfB.P.Sub(xfA.P)
	distSqr := d.Dot(d)
	radius := circleA.R + circleB.R
	if distSqr > radius*radius {
		return
	}

	m.Type = ManifoldCircles
	m.LocalPoint = Vec2{}
	m.LocalNormal = Vec2{}
	m.Count = 1
	m.Points[0] = ManifoldPoint{LocalPoint: Vec2{}}
}

// CollidePolygonAndCircle computes the manifold between a polygon (A) and
// a circle (B). The circle center is classified against the polygon: a
// center projecting onto a face yields a face contact with that face's
// normal; a center beyond a face's ends yields a vertex contact with the
// normal from the nearest vertex to the center.
func CollidePolygonAndCircle(m *Manifold, polyA *Polygon, xfA Transform, circleB *Circle, xfB Transform) {
	m.Count = 0

	// Circle center in the polygon's frame.
	c := InvTransformVec(xfA, xfB.P)

	normalIndex := 0
	separation := -maxFloat
	radius := polygonSkin + circleB.R

	for i := 0; i < polyA.Count; i++ {
		s := polyA.Normals[i].Dot(c.Sub(polyA.Vertices[i]))
		if s > radius {
			return
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := polyA.Vertices[normalIndex]
	i2 := 0
	if normalIndex+1 < polyA.Count {
		i2 = normalIndex + 1
	}
	v2 := polyA.Vertices[i2]

	// Center inside the polygon: face contact with the deepest face.
	if separation < epsilon {
		m.Count = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = polyA.Normals[normalIndex]
		m.LocalPoint = v1.Add(v2).Mul(0.5)
		m.Points[0] = ManifoldPoint{}
		return
	}

	// Classify against the face's Voronoi regions.
	u1 := c.Sub(v1).Dot(v2.Sub(v1))
	u2 := c.Sub(v2).Dot(v1.Sub(v2))
	switch {
	case u1 <= 0.0:
		if Vec2DistanceSquared(c, v1) > radius*radius {
			return
		}
		m.Count = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = c.Sub(v1).Normalized()
		m.LocalPoint = v1
		m.Points[0] = ManifoldPoint{}

	case u2 <= 0.0:
		if Vec2DistanceSquared(c, v2) > radius*radius {
			return
		}
		m.Count = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = c.Sub(v2).Normalized()
		m.LocalPoint = v2
		m.Points[0] = ManifoldPoint{}

	default:
		faceCenter := v1.Add(v2).Mul(0.5)
		if c.Sub(faceCenter).Dot(polyA.Normals[normalIndex]) > radius {
			return
		}
		m.Count = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = polyA.Normals[normalIndex]
		m.LocalPoint = faceCenter
		m.Points[0] = ManifoldPoint{}
	}
}
