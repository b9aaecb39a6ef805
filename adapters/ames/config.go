package ames

// SourceConfig holds configuration for the housing dataset source
type SourceConfig struct {
	FilePath      string   `json:"file_path"`
	MissingTokens []string `json:"missing_tokens"`
}

// DefaultSourceConfig returns sensible defaults for dataset loading.
// Empty cells and the literal NA marker both count as missing.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		FilePath:      "AmesHousing.csv",
		MissingTokens: []string{"", "NA"},
	}
}

// WithFilePath returns a copy of the config pointed at a different file
func (c SourceConfig) WithFilePath(path string) SourceConfig {
	c.FilePath = path
	return c
}

// isMissing reports whether a trimmed cell value counts as a missing value
func (c SourceConfig) isMissing(value string) bool {
	for _, token := range c.MissingTokens {
		if value == token {
			return true
		}
	}
	return false
}
