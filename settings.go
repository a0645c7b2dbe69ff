package rigid2d

import "math"

func assert(a bool) {
	if !a {
		panic("rigid2d: assertion failed")
	}
}

const maxFloat = math.MaxFloat64
const pi = math.Pi

// epsilon below which a vector is considered to have zero length.
const epsilon = 1e-12

// The maximum number of contact points between two convex shapes.
// Two points are sufficient for a stable polygon-polygon contact in 2D.
const maxManifoldPoints = 2

// The maximum number of vertices on a convex polygon.
const maxPolygonVertices = 8

// AABBs used by the broad-phase are fattened by this margin so that
// near-touching pairs are admitted before they actually overlap.
const aabbMargin = 0.1

// Polygons carry a thin skin so that resting contacts survive the small
// separation left behind by position correction.
const polygonSkin = 0.01

// The maximum positional correction applied in a single position
// iteration. Prevents overshoot.
const maxLinearCorrection = 0.2

// Angular error tolerated by joints that constrain relative rotation.
const angularSlop = 2.0 / 180.0 * pi

// Per-step integration clamps. A body may not translate more than
// maxTranslation or rotate more than maxRotation in one step.
const maxTranslation = 2.0
const maxTranslationSquared = maxTranslation * maxTranslation
const maxRotation = 0.5 * pi
const maxRotationSquared = maxRotation * maxRotation

// Documented default tuning parameters. Every one of these may be
// overridden per world through WorldDef.
const (
	DefaultVelocityIterations   = 40
	DefaultPositionIterations   = 15
	DefaultBaumgarte            = 0.2
	DefaultPositionSlop         = 0.02
	DefaultPersistenceThreshold = 0.05
	DefaultRestingThreshold     = 1.0
	DefaultStaticFriction       = 0.6
	DefaultDynamicFriction      = 0.4
	DefaultRestitution          = 0.0
)

func isValid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clamp(a, low, high float64) float64 {
	return math.Max(low, math.Min(a, high))
}

// mixFriction blends the friction of two touching bodies. The geometric
// mean keeps a frictionless body frictionless against anything.
func mixFriction(f1, f2 float64) float64 {
	return math.Sqrt(f1 * f2)
}

// mixRestitution lets the bouncier body win, so an inelastic ground does
// not kill the bounce of a ball.
func mixRestitution(r1, r2 float64) float64 {
	return math.Max(r1, r2)
}
