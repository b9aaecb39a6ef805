package tests

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// OneWayANOVA runs the parametric omnibus test: a group-mean fit followed
// by the Type II sum-of-squares decomposition. With a single factor the
// Type II table is the plain between/within split, one factor row plus the
// residual row.
func OneWayANOVA(groups []housing.Group, factorName string) (*stats.OmnibusResult, error) {
	fit, err := fitOneWay(groups)
	if err != nil {
		return nil, err
	}

	msBetween := fit.SSBetween / float64(fit.DFBetween)
	msWithin := fit.SSWithin / float64(fit.DFWithin)

	if msWithin <= 0 {
		// Every group is constant: the F ratio is undefined.
		return nil, fmt.Errorf("%w: zero within-group variance", core.ErrInsufficientData)
	}

	fStat := msBetween / msWithin
	fDist := distuv.F{D1: float64(fit.DFBetween), D2: float64(fit.DFWithin)}
	pValue := clampP(1 - fDist.CDF(fStat))

	result, err := stats.NewOmnibusResult(stats.MethodANOVA, fStat, pValue, fit.N, len(groups))
	if err != nil {
		return nil, err
	}
	result.DF = fit.DFBetween
	result.DFResidual = fit.DFWithin

	f := fStat
	p := pValue
	result.Table = &stats.AnovaTable{Rows: []stats.AnovaRow{
		{Term: factorName, SumSq: fit.SSBetween, DF: fit.DFBetween, F: &f, PValue: &p},
		{Term: "Residual", SumSq: fit.SSWithin, DF: fit.DFWithin},
	}}

	return result, nil
}

// clampP keeps floating point noise out of the [0,1] contract
func clampP(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
