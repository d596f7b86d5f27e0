package application

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ScheduleConfig defines when the monthly closing run fires.
type ScheduleConfig struct {
	MonthlyRunDay int    `yaml:"monthly_run_day"`
	RunAt         string `yaml:"run_at"`
}

// AutomationConfig defines the monthly closing automation.
type AutomationConfig struct {
	Schedule  ScheduleConfig `yaml:"schedule"`
	ReportDir string         `yaml:"report_dir"`
}

// LoadAutomationConfig loads automation config from yaml or env.
func LoadAutomationConfig() (AutomationConfig, error) {
	cfg := AutomationConfig{
		Schedule: ScheduleConfig{
			MonthlyRunDay: getenvIntDefault("BILLING_MONTHLY_RUN_DAY", 1),
			RunAt:         getenvDefault("BILLING_RUN_AT", "02:00"),
		},
		ReportDir: getenvDefault("BILLING_REPORT_DIR", filepath.FromSlash("var/reports/billing")),
	}

	if path := os.Getenv("BILLING_AUTOMATION_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Schedule.MonthlyRunDay < 1 || cfg.Schedule.MonthlyRunDay > 28 {
		return cfg, errors.New("billing automation: monthly run day must be between 1 and 28")
	}
	if cfg.Schedule.RunAt == "" {
		cfg.Schedule.RunAt = "02:00"
	}
	if cfg.ReportDir == "" {
		return cfg, errors.New("billing automation: report dir required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
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
