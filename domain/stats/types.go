package stats

import (
	"fmt"
	"strings"

	"amesdash/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Alpha is the significance level every assumption and omnibus decision uses
const Alpha = 0.05

// Method defines the omnibus test performed over the groups
type Method string

const (
	MethodANOVA         Method = "anova"          // One-way analysis of variance
	MethodKruskalWallis Method = "kruskal_wallis" // Kruskal-Wallis rank H-test
)

// ParseMethod parses a configured method name
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodANOVA, MethodKruskalWallis:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownMethod, s)
}

// String returns the wire form of the method
func (m Method) String() string { return string(m) }

// Label returns the human-facing name of the method
func (m Method) Label() string {
	switch m {
	case MethodANOVA:
		return "One-way ANOVA"
	case MethodKruskalWallis:
		return "Kruskal-Wallis H"
	}
	return string(m)
}

// Parametric reports whether the method assumes normal residuals
func (m Method) Parametric() bool { return m == MethodANOVA }

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningDegenerateGroup WarningCode = "DEGENERATE_GROUP" // Group with < 2 observations, excluded from the test
	WarningLowN            WarningCode = "LOW_N"            // Total sample size < 30
	WarningAssumptionSkip  WarningCode = "ASSUMPTION_SKIP"  // Diagnostics could not run, test ran anyway
)

// Warning pairs a code with the concrete context it fired in
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// NewDegenerateGroupWarning reports a group too small to test
func NewDegenerateGroupWarning(label string, size int) Warning {
	return Warning{
		Code:    WarningDegenerateGroup,
		Message: fmt.Sprintf("group %q has %d observation(s), excluded from the test", label, size),
	}
}

// NewLowNWarning reports a thin total sample
func NewLowNWarning(n int) Warning {
	return Warning{
		Code:    WarningLowN,
		Message: fmt.Sprintf("only %d observations in total, results are fragile", n),
	}
}

// ============================================================================
// ASSUMPTION DIAGNOSTICS
// ============================================================================

// AssumptionReport carries both diagnostic p-values for one grouping.
// INVARIANTS:
// - NormalityP and VarianceP always in [0.0, 1.0]
// - ResidualCount > 0, GroupCount >= 2
type AssumptionReport struct {
	NormalityStat float64        `json:"normality_stat"` // Shapiro-Wilk W
	NormalityP    float64        `json:"normality_p"`
	VarianceStat  float64        `json:"variance_stat"` // Levene W
	VarianceP     float64        `json:"variance_p"`
	ResidualCount int            `json:"residual_count"`
	GroupCount    int            `json:"group_count"`
	ComputedAt    core.Timestamp `json:"computed_at"`
}

// NewAssumptionReport creates a report with validation
func NewAssumptionReport(normStat, normP, varStat, varP float64, residuals, groups int) (*AssumptionReport, error) {
	if err := validatePValue("normality_p", normP); err != nil {
		return nil, err
	}
	if err := validatePValue("variance_p", varP); err != nil {
		return nil, err
	}
	if residuals <= 0 {
		return nil, fmt.Errorf("ResidualCount must be > 0, got %d", residuals)
	}
	if groups < 2 {
		return nil, fmt.Errorf("GroupCount must be >= 2, got %d", groups)
	}
	return &AssumptionReport{
		NormalityStat: normStat,
		NormalityP:    normP,
		VarianceStat:  varStat,
		VarianceP:     varP,
		ResidualCount: residuals,
		GroupCount:    groups,
		ComputedAt:    core.Now(),
	}, nil
}

// NormalityMet reports whether the residuals look normal at Alpha
func (r *AssumptionReport) NormalityMet() bool { return r.NormalityP > Alpha }

// HomogeneityMet reports whether group variances look equal at Alpha
func (r *AssumptionReport) HomogeneityMet() bool { return r.VarianceP > Alpha }

// ParametricOK reports whether both ANOVA preconditions hold
func (r *AssumptionReport) ParametricOK() bool {
	return r.NormalityMet() && r.HomogeneityMet()
}

// ============================================================================
// OMNIBUS RESULTS
// ============================================================================

// AnovaRow is one term of a Type II ANOVA table. F and PValue are nil on
// the residual row, matching the usual table shape.
type AnovaRow struct {
	Term   string   `json:"term"`
	SumSq  float64  `json:"sum_sq"`
	DF     int      `json:"df"`
	F      *float64 `json:"f,omitempty"`
	PValue *float64 `json:"p_value,omitempty"`
}

// AnovaTable is the per-term decomposition behind an ANOVA result
type AnovaTable struct {
	Rows []AnovaRow `json:"rows"`
}

// TotalSumSq sums the table's SumSq column
func (t *AnovaTable) TotalSumSq() float64 {
	var total float64
	for _, row := range t.Rows {
		total += row.SumSq
	}
	return total
}

// OmnibusResult is the outcome of one omnibus test over the groups.
// INVARIANTS:
// - PValue always in [0.0, 1.0]
// - Statistic >= 0 (F and H are both non-negative)
// - SampleSize > 0, GroupCount >= 2
type OmnibusResult struct {
	Method     Method         `json:"method"`
	Statistic  float64        `json:"statistic"` // F for ANOVA, H for Kruskal-Wallis
	PValue     float64        `json:"p_value"`
	DF         int            `json:"df"`                    // numerator / between-groups df
	DFResidual int            `json:"df_residual,omitempty"` // ANOVA only
	SampleSize int            `json:"sample_size"`
	GroupCount int            `json:"group_count"`
	Table      *AnovaTable    `json:"table,omitempty"` // ANOVA only
	Warnings   []Warning      `json:"warnings,omitempty"`
	ComputedAt core.Timestamp `json:"computed_at"`
}

// NewOmnibusResult creates a result with validation
func NewOmnibusResult(method Method, statistic, pValue float64, sampleSize, groupCount int) (*OmnibusResult, error) {
	if err := validateOmnibusResult(statistic, pValue, sampleSize, groupCount); err != nil {
		return nil, err
	}
	return &OmnibusResult{
		Method:     method,
		Statistic:  statistic,
		PValue:     pValue,
		SampleSize: sampleSize,
		GroupCount: groupCount,
		ComputedAt: core.Now(),
	}, nil
}

// MustNewOmnibusResult creates a result (panics on invalid input)
// Use only in tests - production code should handle validation errors
func MustNewOmnibusResult(method Method, statistic, pValue float64, sampleSize, groupCount int) *OmnibusResult {
	result, err := NewOmnibusResult(method, statistic, pValue, sampleSize, groupCount)
	if err != nil {
		panic(err)
	}
	return result
}

// Significant reports whether the omnibus test rejects at Alpha
func (r *OmnibusResult) Significant() bool { return r.PValue < Alpha }

// AddWarning appends a structured warning to the result
func (r *OmnibusResult) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

func validateOmnibusResult(statistic, pValue float64, sampleSize, groupCount int) error {
	if statistic < 0 {
		return fmt.Errorf("Statistic must be >= 0, got %f", statistic)
	}
	if err := validatePValue("p_value", pValue); err != nil {
		return err
	}
	if sampleSize <= 0 {
		return fmt.Errorf("SampleSize must be > 0, got %d", sampleSize)
	}
	if groupCount < 2 {
		return fmt.Errorf("GroupCount must be >= 2, got %d", groupCount)
	}
	return nil
}

func validatePValue(field string, p float64) error {
	if p < 0.0 || p > 1.0 {
		return fmt.Errorf("%s must be in [0.0, 1.0], got %f", field, p)
	}
	return nil
}

// ============================================================================
// GROUP SUMMARIES
// ============================================================================

// GroupSummary is one row of the descriptive table shown beside each plot
type GroupSummary struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// FormatPValue renders a p-value the way results tables print them
func FormatPValue(p float64) string {
	if p < 0.001 {
		return "< 0.001"
	}
	return fmt.Sprintf("%.4f", p)
}
