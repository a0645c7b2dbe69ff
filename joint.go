package rigid2d

// Joint is a constraint between two bodies (or one body and a fixed world
// point). Joints are created through World.AddJoint and solved together
// with contacts each step.
type Joint interface {
	constraint

	// BodyA returns the first constrained body, or nil for joints anchored
	// directly to the world (the mouse joint).
	BodyA() *Body
	BodyB() *Body

	// AnchorA and AnchorB return the joint's anchor points in world space
	// at the bodies' current transforms.
	AnchorA() Vec2
	AnchorB() Vec2
}

// JointDef describes a joint to be created. Each concrete def validates
// itself and builds its joint; World.AddJoint checks body ownership.
type JointDef interface {
	bodies() (*Body, *Body)
	build() (Joint, error)
}
