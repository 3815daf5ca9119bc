package application

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Thresholds bounds the drift tolerated before a check is flagged. A zero
// threshold flags any nonzero drift.
type Thresholds struct {
	CountAbs  int64   `yaml:"count_abs"`
	AmountAbs float64 `yaml:"amount_abs"`
}

// Config defines reconcile configuration.
type Config struct {
	Defaults   Thresholds            `yaml:"defaults"`
	Tenants    map[string]Thresholds `yaml:"tenants"`
	Schedule   ScheduleConfig        `yaml:"schedule"`
	WebhookURL string                `yaml:"webhook_url"`
}

// ScheduleConfig defines the periodic check.
type ScheduleConfig struct {
	EveryMinutes int      `yaml:"every_minutes"`
	Tenants      []string `yaml:"tenants"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		WebhookURL: os.Getenv("RECONCILE_WEBHOOK_URL"),
	}

	if path := os.Getenv("RECONCILE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Schedule.EveryMinutes <= 0 {
		cfg.Schedule.EveryMinutes = getenvIntDefault("RECONCILE_EVERY_MINUTES", 15)
	}
	if len(cfg.Schedule.Tenants) == 0 {
		cfg.Schedule.Tenants = splitCSV(os.Getenv("RECONCILE_TENANTS"))
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("RECONCILE_WEBHOOK_URL")
	}
	return cfg, nil
}

// ThresholdsForTenant returns thresholds for a tenant.
func (c Config) ThresholdsForTenant(tenantID string) Thresholds {
	if c.Tenants != nil {
		if override, ok := c.Tenants[tenantID]; ok {
			return mergeThresholds(c.Defaults, override)
		}
	}
	return c.Defaults
}

func mergeThresholds(base, override Thresholds) Thresholds {
	if override.CountAbs != 0 {
		base.CountAbs = override.CountAbs
	}
	if override.AmountAbs != 0 {
		base.AmountAbs = override.AmountAbs
	}
	return base
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
