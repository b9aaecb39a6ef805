package tests

import (
	"context"
	"fmt"

	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// minGroupSize is the smallest group an omnibus test will accept; smaller
// groups are statistically degenerate and get excluded with a warning
const minGroupSize = 2

// lowNThreshold marks totals small enough to warrant a fragility warning
const lowNThreshold = 30

// Runner dispatches one omnibus test over the grouped target. Degenerate
// groups never crash a run: they are dropped and surfaced as warnings on
// the result.
type Runner struct{}

// NewRunner creates an omnibus runner
func NewRunner() *Runner {
	return &Runner{}
}

// Run partitions the frame and executes the configured method
func (r *Runner) Run(ctx context.Context, frame *housing.Frame, targetColumn, groupColumn string, method stats.Method) (*stats.OmnibusResult, error) {
	groups, err := frame.Partition(targetColumn, groupColumn)
	if err != nil {
		return nil, err
	}

	usable, warnings := splitDegenerate(groups)
	if len(usable) < 2 {
		return nil, fmt.Errorf("%w: column %q", core.ErrInsufficientGroups, groupColumn)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *stats.OmnibusResult
	switch method {
	case stats.MethodANOVA:
		result, err = OneWayANOVA(usable, groupColumn)
	case stats.MethodKruskalWallis:
		result, err = KruskalWallis(usable)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		result.AddWarning(w)
	}
	if result.SampleSize < lowNThreshold {
		result.AddWarning(stats.NewLowNWarning(result.SampleSize))
	}
	return result, nil
}

// splitDegenerate separates testable groups from ones too small to test
func splitDegenerate(groups []housing.Group) ([]housing.Group, []stats.Warning) {
	usable := make([]housing.Group, 0, len(groups))
	var warnings []stats.Warning
	for _, g := range groups {
		if len(g.Values) < minGroupSize {
			warnings = append(warnings, stats.NewDegenerateGroupWarning(g.Label, len(g.Values)))
			continue
		}
		usable = append(usable, g)
	}
	return usable, warnings
}
