package app

import (
	"fmt"
	"strings"

	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// RenderReport composes the full markdown report the headless CLI prints:
// a dataset summary followed by one section per attribute.
func RenderReport(overview *DatasetOverview, analyses []*housing.AttributeAnalysis) string {
	var b strings.Builder

	b.WriteString("# Ames Housing Price Analysis\n\n")
	fmt.Fprintf(&b, "Dataset: `%s` (fingerprint %s)\n\n", overview.SourcePath, overview.Fingerprint)
	fmt.Fprintf(&b, "%d rows, %d columns. Sale price %s to %s, median %s.\n",
		overview.RowCount, overview.ColumnCount,
		formatPrice(overview.PriceMin), formatPrice(overview.PriceMax), formatPrice(overview.PriceMedian))

	for _, a := range analyses {
		b.WriteString("\n---\n\n")
		writeAnalysisSection(&b, a)
	}
	return b.String()
}

func writeAnalysisSection(b *strings.Builder, a *housing.AttributeAnalysis) {
	fmt.Fprintf(b, "## %s\n\n", a.Attribute.Label)
	fmt.Fprintf(b, "%s\n\n", a.Attribute.Caption)
	fmt.Fprintf(b, "Method: **%s**\n", a.Method.Label())

	if a.Assumptions != nil {
		b.WriteString("\n### Assumption diagnostics\n\n")
		b.WriteString("| Diagnostic | Statistic | p-value | At 0.05 |\n")
		b.WriteString("|---|---|---|---|\n")
		fmt.Fprintf(b, "| Shapiro-Wilk residual normality | W = %.4f | %s | %s |\n",
			a.Assumptions.NormalityStat, stats.FormatPValue(a.Assumptions.NormalityP),
			metBadge(a.Assumptions.NormalityMet()))
		fmt.Fprintf(b, "| Levene variance homogeneity | W = %.4f | %s | %s |\n",
			a.Assumptions.VarianceStat, stats.FormatPValue(a.Assumptions.VarianceP),
			metBadge(a.Assumptions.HomogeneityMet()))
	}

	b.WriteString("\n### Omnibus result\n\n")
	if a.Omnibus.Table != nil {
		writeAnovaTable(b, a.Omnibus.Table)
	} else {
		fmt.Fprintf(b, "Kruskal-Wallis H = %.2f, df = %d, p = %s\n",
			a.Omnibus.Statistic, a.Omnibus.DF, stats.FormatPValue(a.Omnibus.PValue))
	}

	if len(a.Groups) > 0 {
		b.WriteString("\n### Groups (log price, ascending median)\n\n")
		b.WriteString("| Group | n | Mean | Median | SD | Min | Max |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, g := range a.Groups {
			fmt.Fprintf(b, "| %s | %d | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
				g.Label, g.Count, g.Mean, g.Median, g.StdDev, g.Min, g.Max)
		}
	}

	b.WriteString("\n")
	b.WriteString(a.ConclusionMarkdown)
}

func writeAnovaTable(b *strings.Builder, table *stats.AnovaTable) {
	b.WriteString("| Term | Sum Sq | df | F | PR(>F) |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range table.Rows {
		f, p := "", ""
		if row.F != nil {
			f = fmt.Sprintf("%.2f", *row.F)
		}
		if row.PValue != nil {
			p = stats.FormatPValue(*row.PValue)
		}
		fmt.Fprintf(b, "| %s | %.4f | %d | %s | %s |\n", row.Term, row.SumSq, row.DF, f, p)
	}
}

func metBadge(met bool) string {
	if met {
		return "met"
	}
	return "violated"
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}
