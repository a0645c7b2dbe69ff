package rigid2d

import "math"

// Vec2 is a 2D column vector. It is an immutable value type: every
// operation returns a new vector.
type Vec2 struct {
	X, Y float64
}

func MakeVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{s * v.X, s * v.Y}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the 2D cross product, a scalar.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// CrossSV computes the cross product of a scalar and a vector, a vector
// perpendicular to v. Used for velocity at a point: v + w x r.
func CrossSV(s float64, v Vec2) Vec2 {
	return Vec2{-s * v.Y, s * v.X}
}

// CrossVS computes the cross product of a vector and a scalar.
func CrossVS(v Vec2, s float64) Vec2 {
	return Vec2{s * v.Y, -s * v.X}
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalized returns the unit vector in the direction of v. By explicit
// policy a zero-length vector normalizes to the zero vector; it never
// produces NaN.
func (v Vec2) Normalized() Vec2 {
	length := v.Length()
	if length < epsilon {
		return Vec2{}
	}
	inv := 1.0 / length
	return Vec2{v.X * inv, v.Y * inv}
}

// Skew returns the perpendicular such that Skew(v).Dot(w) == v.Cross(w).
func (v Vec2) Skew() Vec2 {
	return Vec2{-v.Y, v.X}
}

func (v Vec2) IsValid() bool {
	return isValid(v.X) && isValid(v.Y)
}

func Vec2Min(a, b Vec2) Vec2 {
	return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
}

func Vec2Max(a, b Vec2) Vec2 {
	return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

func Vec2Distance(a, b Vec2) float64 {
	return a.Sub(b).Length()
}

func Vec2DistanceSquared(a, b Vec2) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Rot is a rotation stored as sine and cosine, cheaper to apply
// repeatedly than an angle.
type Rot struct {
	S, C float64
}

func MakeRot(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

// XAxis returns the rotated x axis.
func (q Rot) XAxis() Vec2 {
	return Vec2{q.C, q.S}
}

// YAxis returns the rotated y axis.
func (q Rot) YAxis() Vec2 {
	return Vec2{-q.S, q.C}
}

// RotVec rotates a vector.
func RotVec(q Rot, v Vec2) Vec2 {
	return Vec2{q.C*v.X - q.S*v.Y, q.S*v.X + q.C*v.Y}
}

// InvRotVec applies the inverse rotation.
func InvRotVec(q Rot, v Vec2) Vec2 {
	return Vec2{q.C*v.X + q.S*v.Y, -q.S*v.X + q.C*v.Y}
}

// Transform carries the position and orientation of a rigid frame.
type Transform struct {
	P Vec2
	Q Rot
}

func MakeTransform(position Vec2, angle float64) Transform {
	return Transform{P: position, Q: MakeRot(angle)}
}

// TransformVec maps a local point into the parent frame.
func TransformVec(t Transform, v Vec2) Vec2 {
	return Vec2{
		t.Q.C*v.X - t.Q.S*v.Y + t.P.X,
		t.Q.S*v.X + t.Q.C*v.Y + t.P.Y,
	}
}

// InvTransformVec maps a parent-frame point into the local frame.
func InvTransformVec(t Transform, v Vec2) Vec2 {
	px := v.X - t.P.X
	py := v.Y - t.P.Y
	return Vec2{t.Q.C*px + t.Q.S*py, -t.Q.S*px + t.Q.C*py}
}

// Mat22 is a 2-by-2 matrix stored in column-major order.
type Mat22 struct {
	Ex, Ey Vec2
}

func MakeMat22(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{Ex: Vec2{a11, a21}, Ey: Vec2{a12, a22}}
}

func (m Mat22) MulVec(v Vec2) Vec2 {
	return Vec2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}
	return Mat22{
		Ex: Vec2{det * d, -det * c},
		Ey: Vec2{-det * b, det * a},
	}
}

// Solve solves m * x = b without forming the inverse. Returns the zero
// vector when m is singular.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

// Vec3 is a 3D column vector, used by constraints that couple two
// translational axes with a rotational one.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Mat33 is a 3-by-3 matrix stored in column-major order.
type Mat33 struct {
	Ex, Ey, Ez Vec3
}

// Solve solves m * x = b by Cramer's rule. Returns the zero vector when m
// is singular.
func (m Mat33) Solve(b Vec3) Vec3 {
	det := m.Ex.Dot(m.Ey.Cross(m.Ez))
	if det != 0.0 {
		det = 1.0 / det
	}
	return Vec3{
		X: det * b.Dot(m.Ey.Cross(m.Ez)),
		Y: det * m.Ex.Dot(b.Cross(m.Ez)),
		Z: det * m.Ex.Dot(m.Ey.Cross(b)),
	}
}
