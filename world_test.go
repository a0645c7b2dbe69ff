package rigid2d

import (
	"errors"
	"math"
	"testing"
)

const stepDt = 1.0 / 60.0

func mustWorld(t *testing.T, def WorldDef) *World {
	t.Helper()
	w, err := NewWorld(def)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func mustBody(t *testing.T, w *World, def BodyDef) *Body {
	t.Helper()
	b, err := w.AddBody(def)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func addGround(t *testing.T, w *World) *Body {
	t.Helper()
	def := MakeBodyDef()
	def.Shape = NewBox(50.0, 1.0)
	def.Static = true
	return mustBody(t, w, def)
}

func stepN(t *testing.T, w *World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := w.Step(stepDt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNewWorldValidation(t *testing.T) {
	def := MakeWorldDef()
	def.VelocityIterations = 0
	if _, err := NewWorld(def); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero velocity iterations accepted: %v", err)
	}

	def = MakeWorldDef()
	def.Baumgarte = 1.5
	if _, err := NewWorld(def); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("baumgarte 1.5 accepted: %v", err)
	}

	def = MakeWorldDef()
	def.Gravity = Vec2{math.NaN(), 0}
	if _, err := NewWorld(def); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NaN gravity accepted: %v", err)
	}
}

func TestStepValidatesDt(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	for _, dt := range []float64{0.0, -0.01, math.NaN(), math.Inf(1)} {
		if err := w.Step(dt); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("dt %v accepted: %v", dt, err)
		}
	}
}

func TestAddBodyValidation(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())

	def := MakeBodyDef()
	if _, err := w.AddBody(def); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("body without shape accepted: %v", err)
	}

	def = MakeBodyDef()
	def.Shape = NewCircle(1.0)
	def.Restitution = 1.5
	if _, err := w.AddBody(def); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("restitution 1.5 accepted: %v", err)
	}

	def = MakeBodyDef()
	def.Shape = NewCircle(1.0)
	def.Density = 0.0
	if _, err := w.AddBody(def); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero density dynamic body accepted: %v", err)
	}

	// Static bodies ignore density.
	def = MakeBodyDef()
	def.Shape = NewCircle(1.0)
	def.Density = 0.0
	def.Static = true
	if _, err := w.AddBody(def); err != nil {
		t.Errorf("static body rejected: %v", err)
	}
}

func TestMutationGuardDuringStep(t *testing.T) {
	def := MakeWorldDef()
	def.SpeedAlarm = 1.0
	w := mustWorld(t, def)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewCircle(0.5)
	bodyDef.LinearVelocity = Vec2{50.0, 0}
	b := mustBody(t, w, bodyDef)

	// The divergence handler runs inside Step; every mutation must be
	// rejected there.
	var addErr, removeErr, xfErr, stepErr error
	w.SetDivergenceHandler(func(*Body, float64) {
		d := MakeBodyDef()
		d.Shape = NewCircle(0.1)
		_, addErr = w.AddBody(d)
		removeErr = w.RemoveBody(b)
		xfErr = b.SetTransform(Vec2{}, 0)
		stepErr = w.Step(stepDt)
	})

	if err := w.Step(stepDt); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(addErr, ErrInvalidOperation) {
		t.Errorf("AddBody during step: %v", addErr)
	}
	if !errors.Is(removeErr, ErrInvalidOperation) {
		t.Errorf("RemoveBody during step: %v", removeErr)
	}
	if !errors.Is(xfErr, ErrInvalidOperation) {
		t.Errorf("SetTransform during step: %v", xfErr)
	}
	if !errors.Is(stepErr, ErrInvalidOperation) {
		t.Errorf("reentrant Step: %v", stepErr)
	}
}

func TestDropAndSettle(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 3.0}
	box := mustBody(t, w, def)

	stepN(t, w, 300)

	// Ground top is y=1; the box half-extent is 0.5. At rest the box
	// center sits at 1.5 give or take the skin and the slop margin.
	if math.Abs(box.Position().Y-1.5) > 0.03 {
		t.Errorf("settled at y=%v, want about 1.5", box.Position().Y)
	}
	if v := box.LinearVelocity().Length(); v > 0.05 {
		t.Errorf("residual speed %v after settling", v)
	}
	if math.Abs(box.Position().X) > 0.01 {
		t.Errorf("box drifted sideways to x=%v", box.Position().X)
	}
}

func TestRestingCircleHoldsHeight(t *testing.T) {
	// Tightened slop for a tight height assertion: the slop margin
	// dominates the settle error at the defaults.
	def := MakeWorldDef()
	def.PositionSlop = 0.005
	w := mustWorld(t, def)
	addGround(t, w)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewCircle(1.0)
	bodyDef.Position = Vec2{0, 2.0} // exactly at contact distance
	ball := mustBody(t, w, bodyDef)

	stepN(t, w, 300)

	if vy := math.Abs(ball.LinearVelocity().Y); vy > 0.1 {
		t.Errorf("vertical speed %v at rest", vy)
	}
	if math.Abs(ball.Position().Y-2.0) > 0.01 {
		t.Errorf("resting height %v, want 2 within 0.01", ball.Position().Y)
	}
}

func TestWarmStartIdempotence(t *testing.T) {
	// Once converged, further steps are a fixed point: one more step must
	// not produce a meaningful correcting impulse.
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 3.0}
	box := mustBody(t, w, def)

	stepN(t, w, 300)

	before := box.LinearVelocity()
	beforeW := box.AngularVelocity()
	stepN(t, w, 1)

	if dv := box.LinearVelocity().Sub(before).Length(); dv > 0.01 {
		t.Errorf("converged step changed velocity by %v", dv)
	}
	if dw := math.Abs(box.AngularVelocity() - beforeW); dw > 0.01 {
		t.Errorf("converged step changed angular velocity by %v", dw)
	}
}

func TestRestingContactNoEnergyInjection(t *testing.T) {
	// A resting body with full restitution must stay at rest: restitution
	// only applies above the resting speed threshold.
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 1.5}
	def.Restitution = 1.0
	box := mustBody(t, w, def)

	stepN(t, w, 120)

	maxEnergy := 0.0
	for i := 0; i < 120; i++ {
		if err := w.Step(stepDt); err != nil {
			t.Fatal(err)
		}
		if e := box.KineticEnergy(); e > maxEnergy {
			maxEnergy = e
		}
	}
	if maxEnergy > 0.01 {
		t.Errorf("resting box accumulated %v J of kinetic energy", maxEnergy)
	}
	if math.Abs(box.Position().Y-1.5) > 0.05 {
		t.Errorf("resting box moved to y=%v", box.Position().Y)
	}
}

func TestBounce(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewCircle(0.5)
	def.Position = Vec2{0, 6.0}
	def.Restitution = 0.8
	ball := mustBody(t, w, def)

	// Track the apex after the first bounce.
	descended := false
	apex := 0.0
	for i := 0; i < 600; i++ {
		if err := w.Step(stepDt); err != nil {
			t.Fatal(err)
		}
		if !descended && ball.LinearVelocity().Y > 0.1 {
			descended = true
		}
		if descended {
			if y := ball.Position().Y; y > apex {
				apex = y
			}
			if ball.LinearVelocity().Y < -0.1 && apex > 0 {
				break
			}
		}
	}
	if !descended {
		t.Fatal("ball never bounced")
	}

	// Drop height 4.5 above rest; a 0.8 restitution bounce returns to
	// roughly 0.64 of it. Allow generous solver losses.
	rebound := apex - 1.5
	if rebound < 1.5 || rebound > 4.5 {
		t.Errorf("rebound height %v, want roughly 2.9", rebound)
	}
}

func TestStackingStable(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	var boxes []*Body
	for i := 0; i < 3; i++ {
		def := MakeBodyDef()
		def.Shape = NewBox(0.5, 0.5)
		def.Position = Vec2{0, 1.5 + float64(i)*1.0}
		boxes = append(boxes, mustBody(t, w, def))
	}

	stepN(t, w, 600)

	for i, b := range boxes {
		wantY := 1.5 + float64(i)*1.0
		if math.Abs(b.Position().Y-wantY) > 0.1 {
			t.Errorf("box %d at y=%v, want about %v", i, b.Position().Y, wantY)
		}
		if math.Abs(b.Position().X) > 0.1 {
			t.Errorf("box %d drifted to x=%v", i, b.Position().X)
		}
		if v := b.LinearVelocity().Length(); v > 0.1 {
			t.Errorf("box %d still moving at %v", i, v)
		}
	}
}

func TestFrictionStopsSlidingBox(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{-5.0, 1.5}
	def.LinearVelocity = Vec2{4.0, 0}
	box := mustBody(t, w, def)

	stepN(t, w, 600)

	if v := box.LinearVelocity().Length(); v > 0.05 {
		t.Errorf("box still sliding at %v", v)
	}
	// mu*g decelerates at about 4-6 m/s^2; from 4 m/s the box stops well
	// within a few meters.
	if box.Position().X < -4.9 || box.Position().X > 5.0 {
		t.Errorf("box stopped at x=%v", box.Position().X)
	}
}

func TestRemoveBodyPurges(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 1.5}
	box := mustBody(t, w, def)

	other := mustBody(t, w, func() BodyDef {
		d := MakeBodyDef()
		d.Shape = NewCircle(0.5)
		d.Position = Vec2{5, 1.5}
		return d
	}())

	if _, err := w.AddJoint(MakeDistanceJointDef(box, other, box.Position(), other.Position())); err != nil {
		t.Fatal(err)
	}

	stepN(t, w, 10)
	if w.ContactCount() == 0 {
		t.Fatal("expected contacts before removal")
	}

	if err := w.RemoveBody(box); err != nil {
		t.Fatal(err)
	}

	for _, ci := range w.Contacts() {
		if ci.BodyA == box || ci.BodyB == box {
			t.Error("contact referencing removed body survived")
		}
	}
	if w.JointCount() != 0 {
		t.Errorf("joint referencing removed body survived (%d joints)", w.JointCount())
	}
	for _, b := range w.Bodies() {
		if b == box {
			t.Error("removed body still listed")
		}
	}
	// Removing twice is an error.
	if err := w.RemoveBody(box); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("double remove: %v", err)
	}
}

func TestDivergenceCallback(t *testing.T) {
	def := MakeWorldDef()
	def.Gravity = Vec2{}
	def.SpeedAlarm = 10.0
	w := mustWorld(t, def)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewCircle(0.5)
	bodyDef.LinearVelocity = Vec2{100.0, 0}
	fast := mustBody(t, w, bodyDef)

	slowDef := MakeBodyDef()
	slowDef.Shape = NewCircle(0.5)
	slowDef.Position = Vec2{0, 5}
	slowDef.LinearVelocity = Vec2{1.0, 0}
	mustBody(t, w, slowDef)

	var flagged []*Body
	w.SetDivergenceHandler(func(b *Body, speed float64) {
		if speed <= 10.0 {
			t.Errorf("handler called with speed %v", speed)
		}
		flagged = append(flagged, b)
	})

	stepN(t, w, 3)

	if len(flagged) != 3 {
		t.Fatalf("handler called %d times, want once per step", len(flagged))
	}
	for _, b := range flagged {
		if b != fast {
			t.Error("wrong body flagged")
		}
	}
	if w.DivergenceCount() != 3 {
		t.Errorf("DivergenceCount = %d, want 3", w.DivergenceCount())
	}
	// Advisory only: the body keeps its state.
	if !fast.Position().IsValid() {
		t.Error("flagged body has invalid position")
	}
}

func TestStepUnlocksAfterHandlerPanic(t *testing.T) {
	def := MakeWorldDef()
	def.Gravity = Vec2{}
	def.SpeedAlarm = 1.0
	w := mustWorld(t, def)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewCircle(0.5)
	bodyDef.LinearVelocity = Vec2{10, 0}
	mustBody(t, w, bodyDef)

	w.SetDivergenceHandler(func(*Body, float64) {
		panic("handler failure")
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the handler panic to propagate")
			}
		}()
		_ = w.Step(stepDt)
	}()

	// The world must not stay locked in the stepping state.
	w.SetDivergenceHandler(nil)
	if err := w.Step(stepDt); err != nil {
		t.Fatalf("world locked after handler panic: %v", err)
	}
}

func TestDivergenceAngularAlarm(t *testing.T) {
	def := MakeWorldDef()
	def.Gravity = Vec2{}
	def.SpeedAlarm = 10.0
	w := mustWorld(t, def)

	// Purely rotational blow-up: no linear motion at all.
	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewBox(0.5, 0.5)
	bodyDef.AngularVelocity = 100.0
	spinner := mustBody(t, w, bodyDef)

	var flagged *Body
	var reported float64
	w.SetDivergenceHandler(func(b *Body, speed float64) {
		flagged = b
		reported = speed
	})

	stepN(t, w, 1)

	if flagged != spinner {
		t.Fatal("spinning body not flagged")
	}
	if reported < 10.0 {
		t.Errorf("reported speed %v, want the angular magnitude", reported)
	}
	if w.DivergenceCount() != 1 {
		t.Errorf("DivergenceCount = %d, want 1", w.DivergenceCount())
	}
}

func TestContactsSnapshot(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 1.5}
	mustBody(t, w, def)

	stepN(t, w, 60)

	infos := w.Contacts()
	if len(infos) != 1 {
		t.Fatalf("got %d contacts, want 1", len(infos))
	}
	ci := infos[0]
	if ci.Count == 0 {
		t.Fatal("contact has no points")
	}
	if math.Abs(math.Abs(ci.Normal.Y)-1.0) > 1e-6 {
		t.Errorf("contact normal = %v, want vertical", ci.Normal)
	}
}

func TestWorldClear(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 1.5}
	a := mustBody(t, w, def)

	def.Position = Vec2{3, 1.5}
	b := mustBody(t, w, def)

	if _, err := w.AddJoint(MakeDistanceJointDef(a, b, a.Position(), b.Position())); err != nil {
		t.Fatal(err)
	}
	stepN(t, w, 10)

	w.Clear()
	if w.BodyCount() != 0 || w.JointCount() != 0 || w.ContactCount() != 0 {
		t.Fatalf("clear left %d bodies, %d joints, %d contacts",
			w.BodyCount(), w.JointCount(), w.ContactCount())
	}

	// The world stays usable; ids restart.
	fresh := mustBody(t, w, func() BodyDef {
		d := MakeBodyDef()
		d.Shape = NewCircle(1.0)
		return d
	}())
	if fresh.ID() != 0 {
		t.Errorf("first body after clear has id %d", fresh.ID())
	}
	stepN(t, w, 1)
}

func TestApplyForceAndImpulse(t *testing.T) {
	def := MakeWorldDef()
	def.Gravity = Vec2{}
	w := mustWorld(t, def)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewCircle(0.5)
	b := mustBody(t, w, bodyDef)
	mass := b.Mass()

	// A force of m newtons for one second yields 1 m/s.
	for i := 0; i < 60; i++ {
		b.ApplyForce(Vec2{mass, 0})
		if err := w.Step(stepDt); err != nil {
			t.Fatal(err)
		}
	}
	if vx := b.LinearVelocity().X; math.Abs(vx-1.0) > 1e-9 {
		t.Errorf("velocity after 1 N*s/kg = %v, want 1", vx)
	}

	// Forces are cleared after each step.
	stepN(t, w, 60)
	if vx := b.LinearVelocity().X; math.Abs(vx-1.0) > 1e-9 {
		t.Errorf("force leaked across steps: velocity %v", vx)
	}

	// An impulse of 2*m kg*m/s adds 2 m/s immediately.
	b.ApplyImpulse(Vec2{2.0 * mass, 0}, b.Position())
	if vx := b.LinearVelocity().X; math.Abs(vx-3.0) > 1e-9 {
		t.Errorf("velocity after impulse = %v, want 3", vx)
	}

	// An off-center impulse spins the body.
	b.ApplyImpulse(Vec2{0, mass}, b.Position().Add(Vec2{0.5, 0}))
	if b.AngularVelocity() <= 0 {
		t.Errorf("off-center impulse gave angular velocity %v", b.AngularVelocity())
	}
}

func TestDamping(t *testing.T) {
	def := MakeWorldDef()
	def.Gravity = Vec2{}
	w := mustWorld(t, def)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewCircle(0.5)
	bodyDef.LinearVelocity = Vec2{10, 0}
	bodyDef.AngularVelocity = 10
	bodyDef.LinearDamping = 1.0
	bodyDef.AngularDamping = 1.0
	b := mustBody(t, w, bodyDef)

	stepN(t, w, 300)

	if v := b.LinearVelocity().Length(); v > 0.1 {
		t.Errorf("linear damping left %v m/s after 5 s", v)
	}
	if wv := math.Abs(b.AngularVelocity()); wv > 0.1 {
		t.Errorf("angular damping left %v rad/s after 5 s", wv)
	}
}

func TestSettlesWithoutWarmStarting(t *testing.T) {
	def := MakeWorldDef()
	def.WarmStarting = false
	w := mustWorld(t, def)
	addGround(t, w)

	bodyDef := MakeBodyDef()
	bodyDef.Shape = NewBox(0.5, 0.5)
	bodyDef.Position = Vec2{0, 3.0}
	box := mustBody(t, w, bodyDef)

	stepN(t, w, 300)

	// Cold-started solves converge slower but must still settle.
	if math.Abs(box.Position().Y-1.5) > 0.05 {
		t.Errorf("settled at y=%v, want about 1.5", box.Position().Y)
	}
	if v := box.LinearVelocity().Length(); v > 0.1 {
		t.Errorf("residual speed %v", v)
	}
}

func TestStaticBodyImmovable(t *testing.T) {
	w := mustWorld(t, MakeWorldDef())
	ground := addGround(t, w)

	def := MakeBodyDef()
	def.Shape = NewBox(0.5, 0.5)
	def.Position = Vec2{0, 1.5}
	mustBody(t, w, def)

	ground.ApplyForce(Vec2{1000, 0})
	ground.ApplyImpulse(Vec2{1000, 0}, ground.Position())
	ground.SetLinearVelocity(Vec2{5, 0})

	stepN(t, w, 120)

	if ground.Position() != (Vec2{}) {
		t.Errorf("static body moved to %v", ground.Position())
	}
	if ground.LinearVelocity() != (Vec2{}) {
		t.Errorf("static body has velocity %v", ground.LinearVelocity())
	}
}
