package tests

import (
	"context"

	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// Checker runs the diagnostic pair for one grouping: Shapiro-Wilk on the
// residuals of the group-mean fit, and Levene across the raw partitions.
// Diagnostics only - the omnibus method choice lives in configuration,
// not here.
type Checker struct{}

// NewChecker creates an assumption checker
func NewChecker() *Checker {
	return &Checker{}
}

// Check fits target ~ group and computes both assumption p-values
func (c *Checker) Check(ctx context.Context, frame *housing.Frame, targetColumn, groupColumn string) (*stats.AssumptionReport, error) {
	groups, err := frame.Partition(targetColumn, groupColumn)
	if err != nil {
		return nil, err
	}

	fit, err := fitOneWay(groups)
	if err != nil {
		return nil, err
	}

	normStat, normP, err := ShapiroWilk(fit.Residuals)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	varStat, varP, err := Levene(groups)
	if err != nil {
		return nil, err
	}

	return stats.NewAssumptionReport(normStat, normP, varStat, varP, len(fit.Residuals), len(groups))
}
