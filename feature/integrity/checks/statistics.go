package checks

import (
	"context"
	"errors"
	"fmt"

	engine "dat-catalog/core/catalog"
)

// StatisticsReport is the result of recounting the catalog.
type StatisticsReport struct {
	Matched    bool              `json:"matched"`
	Running    engine.Statistics `json:"running"`
	Recomputed engine.Statistics `json:"recomputed"`
}

// CheckStatistics rebuilds the statistics from the store and compares them
// with the running counters. The rebuilt statistics replace the running ones.
func CheckStatistics(ctx context.Context, c *engine.Catalog) (*StatisticsReport, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	running := c.Statistics()
	err := c.CheckStatistics(ctx)

	var ie *engine.IntegrityError
	switch {
	case errors.As(err, &ie):
		return &StatisticsReport{Running: ie.Running, Recomputed: ie.Recomputed}, nil
	case err != nil:
		return nil, err
	}
	return &StatisticsReport{Matched: true, Running: running, Recomputed: c.Statistics()}, nil
}
