package rigid2d

// AABB is an axis-aligned bounding box in world space. It is derived
// from a body's transformed shape every step and never independently
// mutated.
type AABB struct {
	Lower Vec2
	Upper Vec2
}

func (bb AABB) Center() Vec2 {
	return bb.Lower.Add(bb.Upper).Mul(0.5)
}

func (bb AABB) Extents() Vec2 {
	return bb.Upper.Sub(bb.Lower).Mul(0.5)
}

func (bb AABB) Perimeter() float64 {
	wx := bb.Upper.X - bb.Lower.X
	wy := bb.Upper.Y - bb.Lower.Y
	return 2.0 * (wx + wy)
}

// Fattened returns the AABB grown by margin on every side.
func (bb AABB) Fattened(margin float64) AABB {
	r := Vec2{margin, margin}
	return AABB{Lower: bb.Lower.Sub(r), Upper: bb.Upper.Add(r)}
}

func (bb AABB) Combine(other AABB) AABB {
	return AABB{
		Lower: Vec2Min(bb.Lower, other.Lower),
		Upper: Vec2Max(bb.Upper, other.Upper),
	}
}

func (bb AABB) Contains(other AABB) bool {
	return bb.Lower.X <= other.Lower.X &&
		bb.Lower.Y <= other.Lower.Y &&
		other.Upper.X <= bb.Upper.X &&
		other.Upper.Y <= bb.Upper.Y
}

func (bb AABB) IsValid() bool {
	d := bb.Upper.Sub(bb.Lower)
	return d.X >= 0.0 && d.Y >= 0.0 && bb.Lower.IsValid() && bb.Upper.IsValid()
}

// TestOverlap reports whether two AABBs overlap, boundaries included.
func TestOverlap(a, b AABB) bool {
	if b.Lower.X > a.Upper.X || b.Lower.Y > a.Upper.Y {
		return false
	}
	if a.Lower.X > b.Upper.X || a.Lower.Y > b.Upper.Y {
		return false
	}
	return true
}
