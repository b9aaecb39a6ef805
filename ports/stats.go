package ports

import (
	"context"

	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// AssumptionChecker runs the diagnostic pair behind every analysis:
// residual normality and variance homogeneity across groups.
type AssumptionChecker interface {
	Check(ctx context.Context, frame *housing.Frame, targetColumn, groupColumn string) (*stats.AssumptionReport, error)
}

// OmnibusRunner executes one omnibus test over the grouped target.
// Degenerate groups (< 2 observations) are excluded and reported as
// warnings on the result, never as a failure.
type OmnibusRunner interface {
	Run(ctx context.Context, frame *housing.Frame, targetColumn, groupColumn string, method stats.Method) (*stats.OmnibusResult, error)
}
