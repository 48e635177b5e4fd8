package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/outreach-cli/internal/confidence"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Inference  InferenceConfig  `yaml:"inference" mapstructure:"inference"`
	Confidence ConfidenceConfig `yaml:"confidence" mapstructure:"confidence"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the validation audit store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres", or "none"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// InferenceConfig configures the rule engine.
type InferenceConfig struct {
	AcceptanceFloor float64 `yaml:"acceptance_floor" mapstructure:"acceptance_floor"`
	RulesPath       string  `yaml:"rules_path" mapstructure:"rules_path"` // optional YAML catalog override
}

// ConfidenceConfig configures the composite scorer.
type ConfidenceConfig struct {
	Weights        confidence.Weights `yaml:"weights" mapstructure:"weights"`
	RequiredFields []string           `yaml:"required_fields" mapstructure:"required_fields"`
}

// ValidationConfig configures the review queue.
type ValidationConfig struct {
	Thresholds model.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
}

// PipelineConfig configures pipeline gating.
type PipelineConfig struct {
	GatePolicy  string `yaml:"gate_policy" mapstructure:"gate_policy"` // "auto" or "strict"
	RequestedBy string `yaml:"requested_by" mapstructure:"requested_by"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port           int     `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("inference.acceptance_floor", 0.75)
	v.SetDefault("confidence.weights.source_reliability", 0.30)
	v.SetDefault("confidence.weights.completeness", 0.25)
	v.SetDefault("confidence.weights.field_validation", 0.25)
	v.SetDefault("confidence.weights.consistency", 0.20)
	v.SetDefault("confidence.required_fields", []string{"name", "email", "title", "company"})
	v.SetDefault("validation.thresholds.auto_approve", 0.95)
	v.SetDefault("validation.thresholds.human_review", 0.70)
	v.SetDefault("validation.thresholds.reject", 0.50)
	v.SetDefault("pipeline.gate_policy", "auto")
	v.SetDefault("pipeline.requested_by", "pipeline")
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 10)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := confidence.ValidateWeights(cfg.Confidence.Weights); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
