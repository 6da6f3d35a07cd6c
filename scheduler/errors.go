package scheduler

import "errors"

var (
	// ErrWorkerFailure wraps errors returned, or panics raised, by a worker's game
	ErrWorkerFailure = errors.New("worker failure")
	// ErrAborted is returned to workers evaluating after the run was aborted
	ErrAborted = errors.New("run aborted")
	// ErrDeadlockRisk reports a broken round invariant or a stalled run
	ErrDeadlockRisk = errors.New("deadlock risk")
)
