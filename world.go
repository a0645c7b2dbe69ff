package rigid2d

import "fmt"

// WorldDef configures a world. Every tuning parameter of the engine lives
// here; there are no package-level knobs. Create with MakeWorldDef for the
// documented defaults and override fields as needed.
type WorldDef struct {
	Gravity Vec2

	VelocityIterations int
	PositionIterations int

	// Baumgarte scales how much residual penetration is corrected per
	// position iteration; PositionSlop is the penetration depth tolerated
	// without correction, which keeps resting contacts from jittering.
	Baumgarte    float64
	PositionSlop float64

	// PersistenceThreshold is the world-space distance within which a new
	// contact point inherits the previous step's accumulated impulses.
	PersistenceThreshold float64

	// RestingThreshold separates impacts from resting contact: restitution
	// applies only to approach speeds above it, and static friction holds
	// only below it.
	RestingThreshold float64

	WarmStarting bool

	// SpeedAlarm, when positive, flags any body whose linear speed (m/s)
	// or angular speed (rad/s) exceeds it at the end of a step through the
	// divergence handler and counter. Zero disables the check.
	SpeedAlarm float64
}

func MakeWorldDef() WorldDef {
	return WorldDef{
		Gravity:              Vec2{0.0, -9.81},
		VelocityIterations:   DefaultVelocityIterations,
		PositionIterations:   DefaultPositionIterations,
		Baumgarte:            DefaultBaumgarte,
		PositionSlop:         DefaultPositionSlop,
		PersistenceThreshold: DefaultPersistenceThreshold,
		RestingThreshold:     DefaultRestingThreshold,
		WarmStarting:         true,
	}
}

// ContactInfo is a read-only world-space snapshot of one touching contact,
// suitable for debug drawing and queries.
type ContactInfo struct {
	BodyA, BodyB *Body
	Normal       Vec2
	Points       [maxManifoldPoints]Vec2
	Separations  [maxManifoldPoints]float64
	Count        int
}

// World owns a set of bodies, the joints between them, and the persistent
// contacts discovered while stepping. Worlds are not safe for concurrent
// use. Topology (bodies, joints) may only change between steps.
type World struct {
	def WorldDef

	bodies     []*Body
	joints     []Joint
	contacts   map[uint64]*Contact
	broadPhase broadPhase

	nextBodyID uint32
	stepping   bool

	divergenceHandler func(*Body, float64)
	divergenceCount   int
}

func NewWorld(def WorldDef) (*World, error) {
	if !def.Gravity.IsValid() {
		return nil, fmt.Errorf("%w: invalid gravity", ErrInvalidArgument)
	}
	if def.VelocityIterations < 1 || def.PositionIterations < 1 {
		return nil, fmt.Errorf("%w: iteration counts must be at least 1", ErrInvalidArgument)
	}
	if def.Baumgarte < 0.0 || def.Baumgarte > 1.0 || !isValid(def.Baumgarte) {
		return nil, fmt.Errorf("%w: baumgarte %v outside [0,1]", ErrInvalidArgument, def.Baumgarte)
	}
	if def.PositionSlop < 0.0 || !isValid(def.PositionSlop) {
		return nil, fmt.Errorf("%w: negative position slop", ErrInvalidArgument)
	}
	if def.PersistenceThreshold < 0.0 || !isValid(def.PersistenceThreshold) {
		return nil, fmt.Errorf("%w: negative persistence threshold", ErrInvalidArgument)
	}
	if def.RestingThreshold < 0.0 || !isValid(def.RestingThreshold) {
		return nil, fmt.Errorf("%w: negative resting threshold", ErrInvalidArgument)
	}
	if def.SpeedAlarm < 0.0 || !isValid(def.SpeedAlarm) {
		return nil, fmt.Errorf("%w: negative speed alarm", ErrInvalidArgument)
	}

	return &World{
		def:      def,
		contacts: make(map[uint64]*Contact),
	}, nil
}

// Def returns the world's configuration.
func (w *World) Def() WorldDef { return w.def }

// AddBody creates a body from def and adds it to the world. Valid only
// between steps.
func (w *World) AddBody(def BodyDef) (*Body, error) {
	if w.stepping {
		return nil, fmt.Errorf("%w: AddBody during step", ErrInvalidOperation)
	}

	b, err := newBody(def, w.nextBodyID, w)
	if err != nil {
		return nil, err
	}
	w.nextBodyID++
	w.bodies = append(w.bodies, b)
	return b, nil
}

// RemoveBody removes a body, purging every contact and joint that
// references it. Valid only between steps.
func (w *World) RemoveBody(b *Body) error {
	if w.stepping {
		return fmt.Errorf("%w: RemoveBody during step", ErrInvalidOperation)
	}
	if b == nil || b.world != w {
		return fmt.Errorf("%w: body not in this world", ErrUnknownBody)
	}

	for k, c := range w.contacts {
		if c.pair.A == b || c.pair.B == b {
			delete(w.contacts, k)
		}
	}

	joints := w.joints[:0]
	for _, j := range w.joints {
		if j.BodyA() == b || j.BodyB() == b {
			continue
		}
		joints = append(joints, j)
	}
	w.joints = joints

	for i, candidate := range w.bodies {
		if candidate == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.world = nil
	return nil
}

// AddJoint creates a joint from def. Both referenced bodies must belong to
// this world. Valid only between steps.
func (w *World) AddJoint(def JointDef) (Joint, error) {
	if w.stepping {
		return nil, fmt.Errorf("%w: AddJoint during step", ErrInvalidOperation)
	}

	bodyA, bodyB := def.bodies()
	if bodyA != nil && bodyA.world != w {
		return nil, fmt.Errorf("%w: joint body A not in this world", ErrUnknownBody)
	}
	if bodyB == nil || bodyB.world != w {
		return nil, fmt.Errorf("%w: joint body B not in this world", ErrUnknownBody)
	}

	j, err := def.build()
	if err != nil {
		return nil, err
	}
	w.joints = append(w.joints, j)
	return j, nil
}

// RemoveJoint removes a joint. Valid only between steps.
func (w *World) RemoveJoint(j Joint) error {
	if w.stepping {
		return fmt.Errorf("%w: RemoveJoint during step", ErrInvalidOperation)
	}
	for i, candidate := range w.joints {
		if candidate == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: joint not in this world", ErrUnknownJoint)
}

// Step advances the simulation by dt seconds. Fixed timesteps give the
// most stable results. Step is not reentrant.
func (w *World) Step(dt float64) error {
	if !(dt > 0.0) || !isValid(dt) {
		return fmt.Errorf("%w: step dt %v must be positive", ErrInvalidArgument, dt)
	}
	if w.stepping {
		return fmt.Errorf("%w: Step is not reentrant", ErrInvalidOperation)
	}

	// Restore the flag even if a user callback panics out of the step, so
	// the world is not left permanently locked.
	w.stepping = true
	defer func() { w.stepping = false }()
	w.step(dt)
	return nil
}

// Bodies returns the world's bodies in insertion order. The slice is a
// copy; the bodies are live.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Joints returns the world's joints in creation order.
func (w *World) Joints() []Joint {
	out := make([]Joint, len(w.joints))
	copy(out, w.joints)
	return out
}

// Contacts returns a world-space snapshot of all touching contacts, in
// ascending canonical pair key order.
func (w *World) Contacts() []ContactInfo {
	contacts := w.sortedContacts()
	out := make([]ContactInfo, 0, len(contacts))
	for _, c := range contacts {
		wm := c.WorldManifold()
		out = append(out, ContactInfo{
			BodyA:       c.bodyA,
			BodyB:       c.bodyB,
			Normal:      wm.Normal,
			Points:      wm.Points,
			Separations: wm.Separations,
			Count:       c.manifold.Count,
		})
	}
	return out
}

func (w *World) BodyCount() int { return len(w.bodies) }

func (w *World) JointCount() int { return len(w.joints) }

func (w *World) ContactCount() int { return len(w.contacts) }

// Clear removes every body, joint and contact, returning the world to its
// freshly constructed state. The configuration is kept.
func (w *World) Clear() {
	for _, b := range w.bodies {
		b.world = nil
	}
	w.bodies = nil
	w.joints = nil
	w.contacts = make(map[uint64]*Contact)
	w.nextBodyID = 0
}

// SetDivergenceHandler installs a callback invoked once per offending body
// per step whenever a body's speed exceeds WorldDef.SpeedAlarm. The
// handler runs inside Step and must not mutate the world.
func (w *World) SetDivergenceHandler(fn func(body *Body, speed float64)) {
	w.divergenceHandler = fn
}

// DivergenceCount returns the total number of speed alarm hits since the
// world was created.
func (w *World) DivergenceCount() int { return w.divergenceCount }
