package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Config is the immutable process configuration, built once at startup and
// passed by reference into each component.
type Config struct {
	Port     string
	LogLevel string

	UpAPIToken      string
	UpWebhookSecret string
	UpAPIURL        string

	ActualServerURL          string
	ActualPassword           string
	ActualBudgetID           string
	ActualEncryptionPassword string

	// AccountMap translates Up account ids to Actual account ids. Lookups are
	// exact-match; an unmapped id is reported to the operator, not fatal.
	AccountMap map[string]string

	// AmountFlip negates imported amounts for budgets that model the account
	// polarity opposite to Up.
	AmountFlip bool
}

// Build loads configuration from a .env file (when present), the environment
// and an optional config file, with flag values taking precedence when a flag
// set is given.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	for _, key := range []string{
		"port", "log_level",
		"up_api_token", "up_webhook_secret", "up_api_url",
		"actual_server_url", "actual_password", "actual_budget_id",
		"actual_budget_encryption_password",
		"account_map", "account_map_file", "amount_flip",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:                     v.GetString("port"),
		LogLevel:                 v.GetString("log_level"),
		UpAPIToken:               v.GetString("up_api_token"),
		UpWebhookSecret:          v.GetString("up_webhook_secret"),
		UpAPIURL:                 v.GetString("up_api_url"),
		ActualServerURL:          v.GetString("actual_server_url"),
		ActualPassword:           v.GetString("actual_password"),
		ActualBudgetID:           v.GetString("actual_budget_id"),
		ActualEncryptionPassword: v.GetString("actual_budget_encryption_password"),
		AmountFlip:               parseBool(v.GetString("amount_flip")),
		AccountMap:               map[string]string{},
	}

	if raw := v.GetString("account_map"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.AccountMap); err != nil {
			return nil, fmt.Errorf("ACCOUNT_MAP must be valid JSON: %w", err)
		}
	}
	if path := v.GetString("account_map_file"); path != "" {
		fileMap, err := loadAccountMapFile(path)
		if err != nil {
			return nil, err
		}
		for upID, actualID := range fileMap {
			cfg.AccountMap[upID] = actualID
		}
	}

	return cfg, nil
}

// loadAccountMapFile reads an id→id mapping from a YAML file.
func loadAccountMapFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read account map file: %w", err)
	}
	m := map[string]string{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse account map file %s: %w", path, err)
	}
	return m, nil
}

// parseBool accepts the boolean spellings the env surface has always taken.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// ValidateUp checks the settings the Up side needs.
func (c *Config) ValidateUp() error {
	var missing []string
	if c.UpWebhookSecret == "" {
		missing = append(missing, "UP_WEBHOOK_SECRET")
	}
	if c.UpAPIToken == "" {
		missing = append(missing, "UP_API_TOKEN")
	}
	return missingError(missing)
}

// ValidateActual checks the settings the Actual side needs.
func (c *Config) ValidateActual() error {
	var missing []string
	if c.ActualServerURL == "" {
		missing = append(missing, "ACTUAL_SERVER_URL")
	}
	if c.ActualPassword == "" {
		missing = append(missing, "ACTUAL_PASSWORD")
	}
	if c.ActualBudgetID == "" {
		missing = append(missing, "ACTUAL_BUDGET_ID")
	}
	return missingError(missing)
}

// Validate checks everything the server needs to run.
func (c *Config) Validate() error {
	var missing []string
	var missErr *MissingError
	for _, err := range []error{c.ValidateUp(), c.ValidateActual()} {
		if errors.As(err, &missErr) {
			missing = append(missing, missErr.Names...)
		}
	}
	return missingError(missing)
}

// MissingError lists required settings that are absent.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Names, ", ")
}

func missingError(names []string) error {
	if len(names) == 0 {
		return nil
	}
	return &MissingError{Names: names}
}
