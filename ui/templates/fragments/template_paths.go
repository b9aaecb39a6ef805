// Package fragments provides template name constants for organized template management
package fragments

import "strings"

// Template names as parsed from the embedded FS, keyed by base filename
const (
	// Page templates
	Dashboard = "dashboard.html"

	// Fragment templates swapped by HTMX
	TabBar         = "tabbar.html"
	Analysis       = "analysis.html"
	AnalysisUpdate = "analysis_update.html"
)

// All returns every template name for registration checks
func All() []string {
	return []string{
		// Pages
		Dashboard,

		// Fragments
		TabBar,
		Analysis,
		AnalysisUpdate,
	}
}

// IsFragment reports whether a template is an HTMX swap target rather
// than a full page
func IsFragment(name string) bool {
	return !strings.EqualFold(name, Dashboard)
}
