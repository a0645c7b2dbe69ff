package rigid2d

// solverContext carries the per-step quantities every constraint needs.
type solverContext struct {
	dt     float64
	invDt  float64
	def    *WorldDef
	warmOK bool
}

// constraint is the capability shared by contacts and joints: a velocity
// correction applied through impulses, and a position correction applied
// as a direct positional nudge. The solver drives both passes; within a
// step constraints are visited in a deterministic order (contacts by
// canonical pair key, joints in creation order).
type constraint interface {
	// initVelocity precomputes effective masses and biases from the
	// bodies' current state.
	initVelocity(ctx *solverContext)

	// warmStart applies the impulses carried from the previous step once,
	// before the iteration loop.
	warmStart()

	// solveVelocity runs one Gauss-Seidel velocity iteration, applying
	// incremental impulses to both bodies immediately.
	solveVelocity()

	// solvePosition runs one position-correction iteration and reports
	// whether the positional error is within tolerance.
	solvePosition(ctx *solverContext) bool
}
