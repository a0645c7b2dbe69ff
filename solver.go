package rigid2d

import (
	"math"
	"sort"
)

// The per-step pipeline: broad-phase, narrow-phase with manifold
// persistence, force integration, warm-started velocity iterations,
// position integration with per-step clamps, position correction, and the
// divergence sweep. Constraint order is deterministic: contacts ascend by
// canonical pair key, joints keep creation order.

func (w *World) step(dt float64) {
	ctx := &solverContext{
		dt:     dt,
		invDt:  1.0 / dt,
		def:    &w.def,
		warmOK: w.def.WarmStarting,
	}

	w.updateContacts()
	contacts := w.sortedContacts()

	w.integrateForces(dt)

	for _, j := range w.joints {
		j.initVelocity(ctx)
	}
	for _, c := range contacts {
		c.initVelocity(ctx)
	}

	if w.def.WarmStarting {
		for _, j := range w.joints {
			j.warmStart()
		}
		for _, c := range contacts {
			c.warmStart()
		}
	}

	for it := 0; it < w.def.VelocityIterations; it++ {
		for _, j := range w.joints {
			j.solveVelocity()
		}
		for _, c := range contacts {
			c.solveVelocity()
		}
	}

	for _, c := range contacts {
		c.storeImpulses()
	}

	w.integratePositions(dt)

	for it := 0; it < w.def.PositionIterations; it++ {
		contactsOK := true
		for _, c := range contacts {
			if !c.solvePosition(ctx) {
				contactsOK = false
			}
		}
		jointsOK := true
		for _, j := range w.joints {
			if !j.solvePosition(ctx) {
				jointsOK = false
			}
		}
		if contactsOK && jointsOK {
			break
		}
	}

	for _, b := range w.bodies {
		b.synchronizeTransform()
		b.force = Vec2{}
		b.torque = 0.0
	}

	w.checkDivergence()
}

// updateContacts runs the broad-phase, re-collides every surviving pair,
// and retires contacts whose shapes separated or whose AABBs no longer
// overlap. New pairs start with a cold manifold; persisting pairs carry
// their impulses forward through the merge.
func (w *World) updateContacts() {
	pairs := w.broadPhase.updatePairs(w.bodies)

	alive := make(map[uint64]struct{}, len(pairs))
	for _, p := range pairs {
		// Jointed bodies do not collide with each other; the joint owns
		// their relative motion.
		if w.connectedByJoint(p.A, p.B) {
			continue
		}
		k := p.key()
		alive[k] = struct{}{}
		if _, ok := w.contacts[k]; !ok {
			w.contacts[k] = newContact(p)
		}
	}

	for k, c := range w.contacts {
		if _, ok := alive[k]; !ok {
			delete(w.contacts, k)
			continue
		}
		if !c.update(w.def.PersistenceThreshold) {
			delete(w.contacts, k)
		}
	}
}

func (w *World) connectedByJoint(a, b *Body) bool {
	for _, j := range w.joints {
		ja, jb := j.BodyA(), j.BodyB()
		if (ja == a && jb == b) || (ja == b && jb == a) {
			return true
		}
	}
	return false
}

// sortedContacts returns the touching contacts in ascending canonical pair
// key order. Map iteration order is randomized, so the sort is what makes
// the solve deterministic.
func (w *World) sortedContacts() []*Contact {
	keys := make([]uint64, 0, len(w.contacts))
	for k := range w.contacts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	contacts := make([]*Contact, len(keys))
	for i, k := range keys {
		contacts[i] = w.contacts[k]
	}
	return contacts
}

// integrateForces advances velocities by gravity and the accumulated
// forces (semi-implicit Euler), then applies damping. The damping factor
// 1/(1+h*d) is a Pade approximation of exp(-h*d) that is stable for any
// timestep.
func (w *World) integrateForces(dt float64) {
	for _, b := range w.bodies {
		if b.static {
			continue
		}

		b.linearVelocity = b.linearVelocity.Add(
			w.def.Gravity.Add(b.force.Mul(b.invMass)).Mul(dt))
		b.angularVelocity += dt * b.invI * b.torque

		b.linearVelocity = b.linearVelocity.Mul(1.0 / (1.0 + dt*b.linearDamping))
		b.angularVelocity *= 1.0 / (1.0 + dt*b.angularDamping)
	}
}

// integratePositions advances positions by the solved velocities, clamping
// per-step translation and rotation so one wild velocity cannot tunnel a
// body across the world.
func (w *World) integratePositions(dt float64) {
	for _, b := range w.bodies {
		if b.static {
			continue
		}

		translation := b.linearVelocity.Mul(dt)
		if translation.LengthSquared() > maxTranslationSquared {
			b.linearVelocity = b.linearVelocity.Mul(maxTranslation / translation.Length())
		}
		rotation := dt * b.angularVelocity
		if rotation*rotation > maxRotationSquared {
			b.angularVelocity *= maxRotation / math.Abs(rotation)
		}

		b.position = b.position.Add(b.linearVelocity.Mul(dt))
		b.angle += dt * b.angularVelocity
	}
}

// checkDivergence flags bodies moving or spinning faster than the
// configured alarm bound. A joint blow-up can be purely rotational, so the
// angular speed is checked against the same bound. Advisory only: the step
// result stands, the caller decides what to do about the runaway body.
func (w *World) checkDivergence() {
	if w.def.SpeedAlarm <= 0.0 {
		return
	}
	for _, b := range w.bodies {
		speed := b.linearVelocity.Length()
		if s := math.Abs(b.angularVelocity); s > speed {
			speed = s
		}
		if speed > w.def.SpeedAlarm {
			w.divergenceCount++
			if w.divergenceHandler != nil {
				w.divergenceHandler(b, speed)
			}
		}
	}
}
