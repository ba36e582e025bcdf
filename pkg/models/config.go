package models

// AlertConfig holds the thresholds the alert engine evaluates against.
type AlertConfig struct {
	UtilizationPercent float64 `yaml:"utilization_percent" mapstructure:"utilization_percent"`
	MaxRejections      int     `yaml:"max_rejections" mapstructure:"max_rejections"`
	WebhookURL         string  `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// GlobalConfig holds system-wide settings read from .matchconfig via Viper.
type GlobalConfig struct {
	TopN                     int         `yaml:"top_n" mapstructure:"top_n"`
	RecommendTopN            int         `yaml:"recommend_top_n" mapstructure:"recommend_top_n"`
	RosterFile               string      `yaml:"roster_file" mapstructure:"roster_file"`
	DefaultMaxWorkloadHours  float64     `yaml:"default_max_workload_hours" mapstructure:"default_max_workload_hours"`
	DefaultPerformanceRating float64     `yaml:"default_performance_rating" mapstructure:"default_performance_rating"`
	EventLogEnabled          bool        `yaml:"event_log" mapstructure:"event_log"`
	ServerAddr               string      `yaml:"server_addr" mapstructure:"server_addr"`
	Alerts                   AlertConfig `yaml:"alerts" mapstructure:"alerts"`
}
