package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"amesdash/app"
	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/internal/logging"
)

// HealthSource reports whether the dataset is already memoized in the
// process-wide cache
type HealthSource interface {
	Loaded() bool
}

// Server is the JSON API surface. It mirrors the dashboard's computation
// exactly: same injected analysis service, same dataset cache.
type Server struct {
	router   *gin.Engine
	analysis *app.AnalysisService
	source   HealthSource
	config   Config
	logger   zerolog.Logger
}

// Config holds API server settings
type Config struct {
	Port string
	Mode string
}

// NewServer creates the API server around an analysis service
func NewServer(analysis *app.AnalysisService, source HealthSource, config Config) *Server {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	s := &Server{
		router:   gin.Default(),
		analysis: analysis,
		source:   source,
		config:   config,
		logger:   logging.Component("api"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/dataset", s.handleDataset)
	api.GET("/analyses/:attribute", s.handleAnalysis)
}

// Router exposes the HTTP handler for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	s.logger.Info().Str("addr", addr).Msg("starting api server")
	return s.router.Run(addr)
}

// handleHealth reports liveness and whether the dataset cache is primed
func (s *Server) handleHealth(c *gin.Context) {
	loaded := s.source != nil && s.source.Loaded()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"dataset_loaded": loaded,
	})
}

// handleDataset returns the loaded frame's shape and price summary
func (s *Server) handleDataset(c *gin.Context) {
	overview, err := s.analysis.Overview(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// handleAnalysis runs one attribute's full analysis pass and returns the
// bundle as JSON. Accepts an optional maxLogPrice query filter.
func (s *Server) handleAnalysis(c *gin.Context) {
	attr, err := housing.ParseAttribute(c.Param("attribute"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	req := app.AnalysisRequest{Attribute: attr}
	if raw, ok := c.GetQuery("maxLogPrice"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxLogPrice must be a number"})
			return
		}
		req.MaxLogPrice = &v
	}

	analysis, err := s.analysis.Run(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// renderError maps domain errors onto the API's status codes: a missing
// dataset is an availability problem, thin data is an unprocessable
// request, unknown selections are not found.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case core.IsNotFoundError(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not available", "detail": err.Error()})
	case core.IsDataError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case core.IsSelectionError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Msg("api request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
