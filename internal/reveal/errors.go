package reveal

import "errors"

var (
	// ErrAlreadyArmed is returned when Arm is called on a section that left
	// the unarmed state.
	ErrAlreadyArmed = errors.New("section already armed")

	// ErrConfigNotFound is returned by LoadConfig when the file does not exist.
	ErrConfigNotFound = errors.New("sequence config not found")

	// ErrLoopStopped is returned by LoopScheduler.Run once the loop has
	// already run to completion.
	ErrLoopStopped = errors.New("loop scheduler stopped")

	ErrInvalidThreshold = errors.New("invalid threshold: must be in (0, 1]")
	ErrInvalidDelay     = errors.New("invalid delay: must be non-negative")
	ErrInvalidDuration  = errors.New("invalid duration: must be positive")
)
