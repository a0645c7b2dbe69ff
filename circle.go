package rigid2d

import "fmt"

// Circle is a circle shape centered on the body origin.
type Circle struct {
	R float64
}

func NewCircle(radius float64) *Circle {
	return &Circle{R: radius}
}

func (c *Circle) Type() ShapeType {
	return ShapeCircle
}

func (c *Circle) ComputeAABB(xf Transform) AABB {
	r := Vec2{c.R, c.R}
	return AABB{Lower: xf.P.Sub(r), Upper: xf.P.Add(r)}
}

func (c *Circle) ComputeMass(density float64) MassData {
	mass := density * pi * c.R * c.R
	return MassData{
		Mass:   mass,
		Center: Vec2{},
		// Inertia of a disc about its center: 1/2 m r^2.
		I: 0.5 * mass * c.R * c.R,
	}
}

func (c *Circle) Support(dir Vec2) Vec2 {
	return dir.Normalized().Mul(c.R)
}

func (c *Circle) Radius() float64 {
	return c.R
}

func (c *Circle) Validate() error {
	if !(c.R > 0.0) || !isValid(c.R) {
		return fmt.Errorf("%w: circle radius %v must be positive", ErrInvalidArgument, c.R)
	}
	return nil
}
