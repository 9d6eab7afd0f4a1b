// Package config defines the parley configuration, loaded via viper from
// a YAML file and PARLEY_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete parley configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Completion  CompletionConfig  `mapstructure:"completion"`
	Negotiation NegotiationConfig `mapstructure:"negotiation"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Report      ReportConfig      `mapstructure:"report"`
}

// ServerConfig controls the HTTP boundary.
type ServerConfig struct {
	// Addr is the listen address for the HTTP server.
	Addr string `mapstructure:"addr"`
	// AllowedOrigins lists the origins permitted by the CORS middleware.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CompletionConfig controls the completion collaborator client.
type CompletionConfig struct {
	// BaseURL is the OpenAI-compatible API root, e.g. "https://api.openai.com/v1".
	BaseURL string `mapstructure:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// ModeratorModel is the model used for the coordinator's turns.
	ModeratorModel string `mapstructure:"moderator_model"`
	// AgentModel is the model used for negotiating participants' turns.
	AgentModel string `mapstructure:"agent_model"`
	// TimeoutSeconds bounds a single completion call.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-call completion timeout as a duration.
func (c CompletionConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NegotiationConfig controls the session engine.
type NegotiationConfig struct {
	// MessageBudget is the maximum number of utterances per attempt.
	MessageBudget int `mapstructure:"message_budget"`
	// RetryBound is the number of restarts allowed after the first attempt.
	RetryBound int `mapstructure:"retry_bound"`
	// InputQueueDepth bounds each manual participant's buffered input.
	InputQueueDepth int `mapstructure:"input_queue_depth"`
	// AgreementMarker must begin the coordinator's agreement utterance.
	AgreementMarker string `mapstructure:"agreement_marker"`
	// FinalPlanMarker must appear in the same utterance as the agreement marker.
	FinalPlanMarker string `mapstructure:"final_plan_marker"`
	// AffirmPhrases are the phrases accepted as a participant's affirmation.
	AffirmPhrases []string `mapstructure:"affirm_phrases"`
	// AITravelers lists the traveler ids driven by the completion service;
	// the rest are human-driven.
	AITravelers []string `mapstructure:"ai_travelers"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`
	// Dir is the directory for the log file; empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// ReportConfig controls experiment output paths.
type ReportConfig struct {
	// CSVPath is the satisfaction-rate CSV, appended per trial.
	CSVPath string `mapstructure:"csv_path"`
	// DBPath is the sqlite database for trial aggregates.
	DBPath string `mapstructure:"db_path"`
	// ReportPath is the base path for markdown reports (timestamped per trial).
	ReportPath string `mapstructure:"report_path"`
}

// SetDefaults registers default values with viper. Negotiation defaults
// mirror the production prompts: the moderator declares agreement with
// 【合意確定】 followed by a 【最終合意プラン】 section, and travelers affirm
// with 賛成 / 同意 / 了承.
func SetDefaults() {
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("completion.base_url", "https://api.openai.com/v1")
	viper.SetDefault("completion.api_key_env", "OPENAI_API_KEY")
	viper.SetDefault("completion.moderator_model", "gpt-5-mini")
	viper.SetDefault("completion.agent_model", "gpt-5-mini")
	viper.SetDefault("completion.timeout_seconds", 120)

	viper.SetDefault("negotiation.message_budget", 50)
	viper.SetDefault("negotiation.retry_bound", 2)
	viper.SetDefault("negotiation.input_queue_depth", 8)
	viper.SetDefault("negotiation.agreement_marker", "【合意確定】")
	viper.SetDefault("negotiation.final_plan_marker", "【最終合意プラン】")
	viper.SetDefault("negotiation.affirm_phrases", []string{"賛成", "同意", "了承"})
	viper.SetDefault("negotiation.ai_travelers", []string{"traveler_A", "traveler_C"})

	viper.SetDefault("logging.level", "INFO")
	viper.SetDefault("logging.dir", "")

	viper.SetDefault("report.csv_path", "results.csv")
	viper.SetDefault("report.db_path", "trials.db")
	viper.SetDefault("report.report_path", "report")
}

// Load unmarshals the current viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitViper wires viper to the given config file (or the default search
// path when empty) and to PARLEY_* environment variables.
func InitViper(cfgFile string) {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("parley")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.config/parley")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PARLEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found).
	_ = viper.ReadInConfig()
}
