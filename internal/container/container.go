package container

import (
	"fmt"

	"amesdash/adapters/ames"
	"amesdash/adapters/plot"
	statstests "amesdash/adapters/stats/tests"
	"amesdash/app"
	"amesdash/internal/config"
	"amesdash/ports"
)

// Container holds all application dependencies and manages their lifecycle.
// Every surface (dashboard, API, report CLI) is wired from the same
// container, so they share one dataset cache and one analysis pipeline.
type Container struct {
	Config *config.Config

	// Dataset access
	Reader *ames.DataReader
	Source *ames.CachedSource

	// Statistical adapters
	Checker  ports.AssumptionChecker
	Runner   ports.OmnibusRunner
	Renderer ports.BoxplotRenderer

	// Application services
	Analysis *app.AnalysisService
}

// New creates a dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{Config: cfg}

	if err := c.initDataSource(); err != nil {
		return nil, fmt.Errorf("failed to initialize dataset source: %w", err)
	}
	if err := c.initStats(); err != nil {
		return nil, fmt.Errorf("failed to initialize statistical adapters: %w", err)
	}
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return c, nil
}

// initDataSource initializes the file reader and its process-wide cache.
// The file is not touched here; the first Load reads and memoizes it.
func (c *Container) initDataSource() error {
	sourceConfig := ames.DefaultSourceConfig().WithFilePath(c.Config.Data.File)
	c.Reader = ames.NewDataReader(sourceConfig)
	c.Source = ames.NewCachedSource(c.Reader)
	return nil
}

// initStats initializes the assumption checker, the omnibus runner, and
// the figure renderer
func (c *Container) initStats() error {
	c.Checker = statstests.NewChecker()
	c.Runner = statstests.NewRunner()
	c.Renderer = plot.NewRenderer()
	return nil
}

// initServices initializes application services
func (c *Container) initServices() error {
	c.Analysis = app.NewAnalysisService(c.Source, c.Checker, c.Runner, c.Renderer, c.Config.Analysis.Methods)
	return nil
}
