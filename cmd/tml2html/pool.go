package main

import (
	"fmt"
	"runtime"
)

// MaxWorkers caps the worker count accepted from flags.
const MaxWorkers = 32

// resolvePoolSize determines the number of batch workers.
// Priority: explicit flag > GOMAXPROCS (adjusted by automaxprocs for containers).
func resolvePoolSize(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	return min(max(runtime.GOMAXPROCS(0), 1), MaxWorkers)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}
