package rigid2d

import "fmt"

// Polygon is a convex polygon shape. Vertices are stored in local space
// in counter-clockwise order, with the centroid at the local origin so
// that a body's position is its center of mass. Construct through
// NewPolygon or NewBox; a hand-assembled Polygon must pass Validate.
type Polygon struct {
	Vertices [maxPolygonVertices]Vec2
	Normals  [maxPolygonVertices]Vec2
	Count    int
}

// NewBox returns a box polygon with the given half-extents, centered on
// the body origin.
func NewBox(hx, hy float64) *Polygon {
	p := &Polygon{Count: 4}
	p.Vertices[0] = Vec2{-hx, -hy}
	p.Vertices[1] = Vec2{hx, -hy}
	p.Vertices[2] = Vec2{hx, hy}
	p.Vertices[3] = Vec2{-hx, hy}
	p.Normals[0] = Vec2{0.0, -1.0}
	p.Normals[1] = Vec2{1.0, 0.0}
	p.Normals[2] = Vec2{0.0, 1.0}
	p.Normals[3] = Vec2{-1.0, 0.0}
	return p
}

// NewPolygon builds a convex polygon from the given points. The convex
// hull of the points is computed by gift wrapping, so the input may be
// unordered and may contain interior points; collinear and near-
// coincident points are welded away. The hull is recentered on its
// centroid. Returns ErrInvalidArgument when fewer than three distinct
// hull vertices remain.
func NewPolygon(points []Vec2) (*Polygon, error) {
	if len(points) < 3 || len(points) > maxPolygonVertices {
		return nil, fmt.Errorf("%w: polygon needs 3..%d vertices, got %d",
			ErrInvalidArgument, maxPolygonVertices, len(points))
	}

	// Weld near-coincident points.
	const weldDistSq = 0.0025 * 0.0025
	var ps [maxPolygonVertices]Vec2
	n := 0
	for _, v := range points {
		unique := true
		for j := 0; j < n; j++ {
			if Vec2DistanceSquared(v, ps[j]) < weldDistSq {
				unique = false
				break
			}
		}
		if unique {
			ps[n] = v
			n++
		}
	}
	if n < 3 {
		return nil, fmt.Errorf("%w: degenerate polygon", ErrInvalidArgument)
	}

	// Gift wrapping: start from the rightmost point and walk the hull.
	i0 := 0
	x0 := ps[0].X
	for i := 1; i < n; i++ {
		x := ps[i].X
		if x > x0 || (x == x0 && ps[i].Y < ps[i0].Y) {
			i0 = i
			x0 = x
		}
	}

	var hull [maxPolygonVertices]int
	m := 0
	ih := i0
	for {
		hull[m] = ih

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}
			r := ps[ie].Sub(ps[hull[m]])
			v := ps[j].Sub(ps[hull[m]])
			c := r.Cross(v)
			if c < 0.0 {
				ie = j
			}
			// Collinear: keep the furthest point.
			if c == 0.0 && v.LengthSquared() > r.LengthSquared() {
				ie = j
			}
		}

		m++
		ih = ie
		if ie == i0 {
			break
		}
	}
	if m < 3 {
		return nil, fmt.Errorf("%w: degenerate polygon", ErrInvalidArgument)
	}

	p := &Polygon{Count: m}
	for i := 0; i < m; i++ {
		p.Vertices[i] = ps[hull[i]]
	}

	// Shift the centroid to the local origin.
	centroid := polygonCentroid(p.Vertices[:m])
	for i := 0; i < m; i++ {
		p.Vertices[i] = p.Vertices[i].Sub(centroid)
	}

	for i := 0; i < m; i++ {
		i2 := 0
		if i+1 < m {
			i2 = i + 1
		}
		edge := p.Vertices[i2].Sub(p.Vertices[i])
		if edge.LengthSquared() <= epsilon {
			return nil, fmt.Errorf("%w: zero-length polygon edge", ErrInvalidArgument)
		}
		p.Normals[i] = CrossVS(edge, 1.0).Normalized()
	}

	return p, nil
}

func polygonCentroid(vs []Vec2) Vec2 {
	assert(len(vs) >= 3)

	c := Vec2{}
	area := 0.0

	// Triangulate from the first vertex; the area-weighted sum of the
	// triangle centroids is the polygon centroid.
	ref := vs[0]
	const inv3 = 1.0 / 3.0
	for i := 1; i < len(vs)-1; i++ {
		e1 := vs[i].Sub(ref)
		e2 := vs[i+1].Sub(ref)
		triangleArea := 0.5 * e1.Cross(e2)
		area += triangleArea
		c = c.Add(e1.Add(e2).Mul(triangleArea * inv3))
	}

	assert(area > epsilon)
	return ref.Add(c.Mul(1.0 / area))
}

func (p *Polygon) Type() ShapeType {
	return ShapePolygon
}

func (p *Polygon) ComputeAABB(xf Transform) AABB {
	lower := TransformVec(xf, p.Vertices[0])
	upper := lower
	for i := 1; i < p.Count; i++ {
		v := TransformVec(xf, p.Vertices[i])
		lower = Vec2Min(lower, v)
		upper = Vec2Max(upper, v)
	}
	r := Vec2{polygonSkin, polygonSkin}
	return AABB{Lower: lower.Sub(r), Upper: upper.Add(r)}
}

func (p *Polygon) ComputeMass(density float64) MassData {
	assert(p.Count >= 3)

	center := Vec2{}
	area := 0.0
	inertia := 0.0

	// Sum triangle integrals around the local origin. Since vertices are
	// centered on the centroid, the origin is inside the polygon.
	const inv3 = 1.0 / 3.0
	for i := 0; i < p.Count; i++ {
		e1 := p.Vertices[i]
		var e2 Vec2
		if i+1 < p.Count {
			e2 = p.Vertices[i+1]
		} else {
			e2 = p.Vertices[0]
		}

		d := e1.Cross(e2)
		triangleArea := 0.5 * d
		area += triangleArea

		center = center.Add(e1.Add(e2).Mul(triangleArea * inv3))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}

	assert(area > epsilon)
	return MassData{
		Mass:   density * area,
		Center: center.Mul(1.0 / area),
		I:      density * inertia,
	}
}

func (p *Polygon) Support(dir Vec2) Vec2 {
	best := 0
	bestDot := p.Vertices[0].Dot(dir)
	for i := 1; i < p.Count; i++ {
		d := p.Vertices[i].Dot(dir)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return p.Vertices[best]
}

func (p *Polygon) Radius() float64 {
	return polygonSkin
}

func (p *Polygon) Validate() error {
	if p.Count < 3 || p.Count > maxPolygonVertices {
		return fmt.Errorf("%w: polygon has %d vertices", ErrInvalidArgument, p.Count)
	}
	// Convexity and winding: every vertex must lie on the inner side of
	// every edge.
	for i := 0; i < p.Count; i++ {
		i2 := 0
		if i+1 < p.Count {
			i2 = i + 1
		}
		edge := p.Vertices[i2].Sub(p.Vertices[i])
		if edge.LengthSquared() <= epsilon {
			return fmt.Errorf("%w: zero-length polygon edge", ErrInvalidArgument)
		}
		for j := 0; j < p.Count; j++ {
			if j == i || j == i2 {
				continue
			}
			r := p.Vertices[j].Sub(p.Vertices[i])
			if edge.Cross(r) < 0.0 {
				return fmt.Errorf("%w: polygon is non-convex or wound clockwise", ErrInvalidArgument)
			}
		}
	}
	// The centroid must sit on the local origin: a body's position is its
	// center of mass, and the mass properties are computed about the
	// origin. An off-origin centroid would simulate with the wrong frame.
	const centroidTolerance = 1e-8
	if centroid := polygonCentroid(p.Vertices[:p.Count]); centroid.Length() > centroidTolerance {
		return fmt.Errorf("%w: polygon centroid %v is off the local origin", ErrInvalidArgument, centroid)
	}
	return nil
}
