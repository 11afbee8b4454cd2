// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/iwvelando/loan-desk/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-desk.
type Configuration struct {
	Logging      LoggingConfig   `yaml:"logging,omitempty"`
	Output       OutputConfig    `yaml:"output,omitempty"`
	Assistant    AssistantConfig `yaml:"assistant,omitempty"`
	Reference    ReferenceConfig `yaml:"reference,omitempty"`
	Applications []Application   `yaml:"applications"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `yaml:"-" mapstructure:"-"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// AssistantConfig configures the generative AI assistant gateway. The API key
// is normally supplied through LOANDESK_ASSISTANT_API_KEY or GEMINI_API_KEY.
type AssistantConfig struct {
	Enabled        bool   `yaml:"enabled,omitempty"`
	Endpoint       string `yaml:"endpoint,omitempty"`
	Model          string `yaml:"model,omitempty"`
	APIKey         string `yaml:"apiKey,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// Timeout returns the per-inquiry timeout, falling back to the default.
func (a AssistantConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return constants.DefaultAssistantTimeoutSeconds * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ReferenceConfig points at an optional override of the embedded reference
// tables.
type ReferenceConfig struct {
	File string `yaml:"file,omitempty"`
}

// Application is one named loan application to evaluate. Enum fields accept
// the canonical names as well as lower-case or hyphenated spellings.
type Application struct {
	Name                   string
	Active                 bool
	Purpose                string
	Region                 string
	Ownership              string
	SpecialCondition       string
	HousePrice             float64
	RequestedAmount        float64
	AnnualIncome           float64
	ExistingLivingFundDebt float64
	DSR                    float64
}

// envBindings maps config keys to the environment variables that override
// them. The first variable found wins.
var envBindings = map[string][]string{
	"logging.level":            {"LOANDESK_LOGGING_LEVEL"},
	"logging.format":           {"LOANDESK_LOGGING_FORMAT"},
	"logging.outputfile":       {"LOANDESK_LOGGING_OUTPUT_FILE"},
	"output.format":            {"LOANDESK_OUTPUT_FORMAT"},
	"assistant.enabled":        {"LOANDESK_ASSISTANT_ENABLED"},
	"assistant.endpoint":       {"LOANDESK_ASSISTANT_ENDPOINT"},
	"assistant.model":          {"LOANDESK_ASSISTANT_MODEL"},
	"assistant.apikey":         {"LOANDESK_ASSISTANT_API_KEY", "GEMINI_API_KEY"},
	"assistant.timeoutseconds": {"LOANDESK_ASSISTANT_TIMEOUT_SECONDS"},
	"reference.file":           {"LOANDESK_REFERENCE_FILE"},
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file next to the config, or in the working
// directory, is loaded first without overriding variables already set.
func LoadConfiguration(configPath string) (*Configuration, error) {
	envFile := LoadEnvFile(filepath.Join(filepath.Dir(configPath), ".env"), ".env")

	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}
	conf.EnvFile = envFile
	return conf, nil
}

// LoadConfigurationFromReader loads a YAML configuration from r. Environment
// overrides apply but no .env file is read.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

// LoadEnvFile loads the first existing file among paths into the process
// environment and returns its path, or "" when none exists.
func LoadEnvFile(paths ...string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// ActiveApplications returns the applications flagged active, in order.
func (c *Configuration) ActiveApplications() []Application {
	var active []Application
	for _, app := range c.Applications {
		if app.Active {
			active = append(active, app)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	warnings = append(warnings, validation.ValidateLogging(c.Logging.Level, c.Logging.Format)...)

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if c.Assistant.Enabled && strings.TrimSpace(c.Assistant.APIKey) == "" {
		warnings = append(warnings, "Assistant is enabled but no API key is set - inquiries will be answered with an apology")
	}

	if len(c.Applications) == 0 {
		warnings = append(warnings, "No applications configured")
		return warnings
	}
	if len(c.ActiveApplications()) == 0 {
		warnings = append(warnings, "No active applications - nothing will be evaluated")
	}

	names := make([]string, len(c.Applications))
	for i, app := range c.Applications {
		names[i] = app.Name
	}
	warnings = append(warnings, validation.ValidateNames("Application", names)...)

	for _, app := range c.Applications {
		warnings = append(warnings, app.Validate()...)
	}

	return warnings
}
