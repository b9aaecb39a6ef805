package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"amesdash/app"
	"amesdash/domain/stats"
	"amesdash/internal/logging"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App is the dashboard web application: a tab bar over the grouping
// attributes, a log-price filter slider, and one analysis panel that is
// recomputed and swapped on every interaction.
type App struct {
	router    *chi.Mux
	analysis  *app.AnalysisService
	templates *template.Template
	config    Config
	logger    zerolog.Logger
}

// Config holds dashboard server settings
type Config struct {
	Port string
}

// NewApp creates the dashboard application around an analysis service
func NewApp(analysis *app.AnalysisService, config Config) (*App, error) {
	if analysis == nil {
		return nil, fmt.Errorf("analysis service is required")
	}

	funcMap := template.FuncMap{
		"usd":    formatUSD,
		"pvalue": stats.FormatPValue,
		"f2":     func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"f3":     func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		analysis:  analysis,
		templates: templates,
		config:    config,
		logger:    logging.Component("ui"),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", http.StripPrefix("/", staticFS))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleDashboard)
	a.router.Get("/attributes/{attribute}", a.handleAttribute)

	// HTMX fragment endpoint: recomputes and swaps the analysis panel
	a.router.Get("/fragments/analysis", a.handleAnalysisFragment)

	// Standalone figure, same render path as the inline plot
	a.router.Get("/figures/{attribute}.svg", a.handleFigure)
}

// Router exposes the HTTP handler for tests and embedding
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.config.Port
	a.logger.Info().Str("addr", addr).Msg("starting dashboard server")
	return http.ListenAndServe(addr, a.router)
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error().Err(err).Str("template", templateName).Msg("template render failed")
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (a *App) renderPartial(w http.ResponseWriter, templateName string, data interface{}) {
	a.renderTemplate(w, templateName, data)
}

// HTMX helpers
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
