package rigid2d

import "errors"

// Errors returned by the public API. Expected geometric outcomes (no
// overlap, no manifold) are modeled as empty results, never as errors.
var (
	// ErrInvalidArgument reports malformed configuration: a non-positive
	// time step, a non-positive mass on a dynamic body, or a degenerate
	// shape. Detected at construction or step entry, never silently
	// clamped.
	ErrInvalidArgument = errors.New("rigid2d: invalid argument")

	// ErrInvalidOperation reports a topology mutation while a step is in
	// progress, or a re-entrant Step call.
	ErrInvalidOperation = errors.New("rigid2d: invalid operation")

	// ErrUnknownBody reports a body that is not registered in this world.
	ErrUnknownBody = errors.New("rigid2d: unknown body")

	// ErrUnknownJoint reports a joint that is not registered in this world.
	ErrUnknownJoint = errors.New("rigid2d: unknown joint")
)
