package config

import (
	"os"
	"strconv"

	"amesdash/domain/housing"
	"amesdash/domain/stats"
	"amesdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `validate:"required"`
	Data     DataConfig     `validate:"required"`
	Analysis AnalysisConfig `validate:"required"`
	Log      LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	APIPort string
	GinMode string
}

// DataConfig holds dataset source settings
type DataConfig struct {
	// File is the dataset path; .csv and .xlsx are supported
	File string `validate:"required"`
}

// AnalysisConfig holds the explicit {attribute -> omnibus method} policy.
// The defaults reproduce the per-attribute choices of the original study:
// quality and garage type stay parametric, neighborhood is rank-based.
type AnalysisConfig struct {
	Methods map[housing.Attribute]stats.Method
}

// MethodFor returns the configured omnibus method for an attribute
func (c AnalysisConfig) MethodFor(attr housing.Attribute) (stats.Method, error) {
	method, ok := c.Methods[attr]
	if !ok {
		return "", errors.ConfigInvalid("no omnibus method configured for attribute " + attr.String())
	}
	return method, nil
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Environment variables overriding the per-attribute method policy
const (
	envMethodOverallQual  = "AMES_METHOD_OVERALL_QUAL"
	envMethodNeighborhood = "AMES_METHOD_NEIGHBORHOOD"
	envMethodGarageType   = "AMES_METHOD_GARAGE_TYPE"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	serverConfig := loadServerConfig()
	config.Server = *serverConfig

	dataConfig := loadDataConfig()
	config.Data = *dataConfig

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	config.Log = LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		APIPort: getEnvOrDefault("API_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File: getEnvOrDefault("AMES_DATA_FILE", "AmesHousing.csv"),
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	methods := map[housing.Attribute]stats.Method{
		housing.AttributeOverallQual:  stats.MethodANOVA,
		housing.AttributeNeighborhood: stats.MethodKruskalWallis,
		housing.AttributeGarageType:   stats.MethodANOVA,
	}

	overrides := map[housing.Attribute]string{
		housing.AttributeOverallQual:  os.Getenv(envMethodOverallQual),
		housing.AttributeNeighborhood: os.Getenv(envMethodNeighborhood),
		housing.AttributeGarageType:   os.Getenv(envMethodGarageType),
	}
	for attr, raw := range overrides {
		if raw == "" {
			continue
		}
		method, err := stats.ParseMethod(raw)
		if err != nil {
			return nil, errors.ConfigInvalid("invalid omnibus method " + strconv.Quote(raw) + " for attribute " + attr.String())
		}
		methods[attr] = method
	}

	return &AnalysisConfig{Methods: methods}, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.File == "" {
		return errors.ConfigInvalid("dataset file is required")
	}
	for _, attr := range housing.Attributes() {
		if _, err := config.Analysis.MethodFor(attr); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
