package app

import (
	"fmt"
	"strings"

	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// BuildConclusion writes the markdown interpretation of one analysis
// pass: which method ran and why it is defensible given the diagnostics,
// what the omnibus test says, and any caveats picked up along the way.
func BuildConclusion(a *housing.AttributeAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### Conclusion\n\n")
	fmt.Fprintf(&b, "**%s** across %d %s groups (n = %d).\n\n",
		a.Method.Label(), a.Omnibus.GroupCount, a.Attribute.Label, a.Omnibus.SampleSize)

	b.WriteString(methodRationale(a.Assumptions, a.Method))
	b.WriteString("\n\n")
	b.WriteString(significanceReading(a.Omnibus))
	b.WriteString("\n")

	if a.Filtered() {
		fmt.Fprintf(&b, "\nPrice filter active: log price at most %.3f, %d of %d rows analyzed.\n",
			a.MaxLogPrice, a.FilteredRows, a.TotalRows)
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "\n*%s*\n", w.Message)
	}

	return b.String()
}

// methodRationale mirrors the written judgment of the per-attribute method
// policy: ANOVA when its preconditions hold, robustness language when
// normality alone slips, and the rank test when the parametric route is
// off the table.
func methodRationale(report *stats.AssumptionReport, method stats.Method) string {
	if report == nil {
		return "Assumption diagnostics were skipped for this view; read the result with care."
	}

	norm := fmt.Sprintf("residual normality (Shapiro-Wilk) p = %s", stats.FormatPValue(report.NormalityP))
	vari := fmt.Sprintf("variance homogeneity (Levene) p = %s", stats.FormatPValue(report.VarianceP))
	diag := fmt.Sprintf("Diagnostics: %s, %s.", norm, vari)

	switch {
	case method == stats.MethodKruskalWallis:
		if report.ParametricOK() {
			return diag + " The rank-based Kruskal-Wallis test is configured for this attribute and needs neither precondition."
		}
		return diag + " With parametric preconditions violated, classical ANOVA is unreliable here; the non-parametric Kruskal-Wallis test is the appropriate method."
	case report.ParametricOK():
		return diag + " Both preconditions hold, so classical ANOVA is appropriate."
	case report.HomogeneityMet():
		return diag + " Despite the normality violation, ANOVA is robust to it at this sample size; with homogeneity met the parametric test stands."
	default:
		return diag + " Parametric preconditions are violated; treat the ANOVA result as indicative only."
	}
}

// significanceReading states what the omnibus outcome means for prices
func significanceReading(r *stats.OmnibusResult) string {
	stat := fmt.Sprintf("F = %.2f", r.Statistic)
	target := "mean log prices"
	if r.Method == stats.MethodKruskalWallis {
		stat = fmt.Sprintf("H = %.2f", r.Statistic)
		target = "median prices"
	}

	if r.Significant() {
		return fmt.Sprintf("%s, p %s: the groups differ significantly, so this attribute carries real price information (%s are not all equal).",
			stat, pInline(r.PValue), target)
	}
	return fmt.Sprintf("%s, p %s: no significant difference between groups at the 0.05 level; this attribute shows no detectable price effect in this view.",
		stat, pInline(r.PValue))
}

// pInline renders a p-value for mid-sentence use
func pInline(p float64) string {
	formatted := stats.FormatPValue(p)
	if strings.HasPrefix(formatted, "<") {
		return formatted
	}
	return "= " + formatted
}
