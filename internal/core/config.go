package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// ConfigFileName is the name of the global configuration file, without
// extension, looked up in the base path.
const ConfigFileName = ".matchconfig"

// ConfigurationManager defines the interface for loading and validating the
// global configuration from .matchconfig.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .matchconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		TopN:                     DefaultTopN,
		RecommendTopN:            RecommendTopN,
		RosterFile:               "roster.yaml",
		DefaultMaxWorkloadHours:  models.DefaultMaxWorkloadHours,
		DefaultPerformanceRating: models.DefaultPerformanceRating,
		EventLogEnabled:          true,
		ServerAddr:               ":8080",
		Alerts: models.AlertConfig{
			UtilizationPercent: 90,
			MaxRejections:      3,
		},
	}
}

// LoadGlobalConfig reads the .matchconfig file from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("matching.top_n", cfg.TopN)
	v.SetDefault("matching.recommend_top_n", cfg.RecommendTopN)
	v.SetDefault("roster.file", cfg.RosterFile)
	v.SetDefault("defaults.max_workload_hours", cfg.DefaultMaxWorkloadHours)
	v.SetDefault("defaults.performance_rating", cfg.DefaultPerformanceRating)
	v.SetDefault("observability.event_log", cfg.EventLogEnabled)
	v.SetDefault("server.addr", cfg.ServerAddr)
	v.SetDefault("alerts.utilization_percent", cfg.Alerts.UtilizationPercent)
	v.SetDefault("alerts.max_rejections", cfg.Alerts.MaxRejections)
	v.SetDefault("alerts.webhook_url", cfg.Alerts.WebhookURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	// Map nested YAML keys to flat GlobalConfig fields.
	cfg.TopN = v.GetInt("matching.top_n")
	cfg.RecommendTopN = v.GetInt("matching.recommend_top_n")
	cfg.RosterFile = v.GetString("roster.file")
	cfg.DefaultMaxWorkloadHours = v.GetFloat64("defaults.max_workload_hours")
	cfg.DefaultPerformanceRating = v.GetFloat64("defaults.performance_rating")
	cfg.EventLogEnabled = v.GetBool("observability.event_log")
	cfg.ServerAddr = v.GetString("server.addr")
	cfg.Alerts.UtilizationPercent = v.GetFloat64("alerts.utilization_percent")
	cfg.Alerts.MaxRejections = v.GetInt("alerts.max_rejections")
	cfg.Alerts.WebhookURL = v.GetString("alerts.webhook_url")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// single error listing every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.TopN <= 0 {
		errs = append(errs, fmt.Sprintf("matching.top_n must be positive, got %d", cfg.TopN))
	}
	if cfg.RecommendTopN <= 0 {
		errs = append(errs, fmt.Sprintf("matching.recommend_top_n must be positive, got %d", cfg.RecommendTopN))
	}
	if strings.TrimSpace(cfg.RosterFile) == "" {
		errs = append(errs, "roster.file must not be empty")
	}
	if cfg.DefaultMaxWorkloadHours <= 0 {
		errs = append(errs, fmt.Sprintf("defaults.max_workload_hours must be positive, got %g", cfg.DefaultMaxWorkloadHours))
	}
	if cfg.DefaultPerformanceRating <= 0 || cfg.DefaultPerformanceRating > 1 {
		errs = append(errs, fmt.Sprintf("defaults.performance_rating must be in (0, 1], got %g", cfg.DefaultPerformanceRating))
	}
	if cfg.Alerts.UtilizationPercent < 0 {
		errs = append(errs, fmt.Sprintf("alerts.utilization_percent must be non-negative, got %g", cfg.Alerts.UtilizationPercent))
	}
	if u := cfg.Alerts.WebhookURL; u != "" && !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		errs = append(errs, fmt.Sprintf("alerts.webhook_url must be an http(s) URL, got %q", u))
	}
	if cfg.Alerts.MaxRejections < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_rejections must be non-negative, got %d", cfg.Alerts.MaxRejections))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
