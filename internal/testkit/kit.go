package testkit

import (
	"context"
	"path/filepath"
	"sync"

	"amesdash/domain/housing"
)

// TestKit provides deterministic housing fixtures for tests. Every kit
// with the same generator config produces identical records, frames, and
// CSV files.
type TestKit struct {
	config AmesGeneratorConfig
}

// NewTestKit creates a test kit with the default generator config
func NewTestKit() *TestKit {
	return &TestKit{config: DefaultAmesConfig()}
}

// NewTestKitWithConfig creates a test kit with a custom generator config
func NewTestKitWithConfig(config AmesGeneratorConfig) *TestKit {
	return &TestKit{config: config}
}

// Records generates a fresh set of synthetic property sales
func (t *TestKit) Records() []PropertyRecord {
	return NewAmesDataGenerator(t.config).GenerateRecords()
}

// Frame generates records and assembles them into a loaded frame
func (t *TestKit) Frame() (*housing.Frame, error) {
	gen := NewAmesDataGenerator(t.config)
	return gen.Frame(gen.GenerateRecords())
}

// WriteDatasetCSV writes a raw dataset file into dir and returns its path.
// The file is what a reader sees on disk: no log column, NA garage cells.
func (t *TestKit) WriteDatasetCSV(dir string) (string, error) {
	gen := NewAmesDataGenerator(t.config)
	path := filepath.Join(dir, "ames_test.csv")
	if err := gen.WriteCSV(path, gen.GenerateRecords()); err != nil {
		return "", err
	}
	return path, nil
}

// Source wraps the generated frame in an in-memory dataset source
func (t *TestKit) Source() (*FakeSource, error) {
	frame, err := t.Frame()
	if err != nil {
		return nil, err
	}
	return NewFakeSource(frame), nil
}

// FakeSource implements ports.DatasetSource over a pre-built frame, with
// an injectable error and a load counter for caching tests.
type FakeSource struct {
	mu    sync.Mutex
	frame *housing.Frame
	err   error
	loads int
}

// NewFakeSource creates a source that always returns the given frame
func NewFakeSource(frame *housing.Frame) *FakeSource {
	return &FakeSource{frame: frame}
}

// Load returns the configured frame or error and counts the call
func (s *FakeSource) Load(ctx context.Context) (*housing.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.frame, nil
}

// SetError makes subsequent loads fail; pass nil to recover
func (s *FakeSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// LoadCount reports how many times Load was called
func (s *FakeSource) LoadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
