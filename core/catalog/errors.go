package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable wraps failures of the persistence collaborator.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStatisticsDiverged reports running statistics that disagree with a recount.
	ErrStatisticsDiverged = errors.New("statistics diverged")
)

// IntegrityError carries both sides of a statistics divergence.
type IntegrityError struct {
	Running    Statistics
	Recomputed Statistics
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: running total %d items, recount %d items",
		ErrStatisticsDiverged, e.Running.TotalCount, e.Recomputed.TotalCount)
}

func (e *IntegrityError) Unwrap() error {
	return ErrStatisticsDiverged
}

func storeErr(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("failed to %s %q: %w: %w", op, key, ErrStoreUnavailable, err)
}
