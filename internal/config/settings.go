// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Settings holds everything the sync pipeline needs to talk to Azure
// DevOps and the Anthropic API.
type Settings struct {
	// OrgURL is the Azure DevOps organization URL
	// e.g. https://dev.azure.com/myorg
	OrgURL string

	// Project is the Azure DevOps project name
	Project string

	// PAT is the Azure DevOps personal access token
	PAT string

	// TestPlanID is the test plan that owns the suite folders
	// Set to 0 to skip suite placement
	TestPlanID int

	// AnthropicAPIKey is the key for the generation model
	// (falls back to ANTHROPIC_API_KEY when empty)
	AnthropicAPIKey string

	// SuiteNamesPath is an optional YAML file overriding the default
	// suite folder names
	SuiteNamesPath string

	// HistoryDBPath is the SQLite file for the sync journal
	// Default: .testsync/history.db
	HistoryDBPath string
}

// DefaultSettings returns settings with defaults applied.
func DefaultSettings() Settings {
	return Settings{
		HistoryDBPath: ".testsync/history.db",
	}
}

// FromEnv loads settings from environment variables.
func FromEnv() (Settings, error) {
	s := DefaultSettings()

	parseEnvString("ADO_ORG_URL", &s.OrgURL)
	parseEnvString("ADO_PROJECT", &s.Project)
	parseEnvString("ADO_PAT", &s.PAT)
	parseEnvString("ANTHROPIC_API_KEY", &s.AnthropicAPIKey)
	parseEnvString("TSP_SUITE_NAMES", &s.SuiteNamesPath)
	parseEnvString("TSP_HISTORY_DB", &s.HistoryDBPath)

	if err := parseEnvInt("ADO_TEST_PLAN_ID", &s.TestPlanID); err != nil {
		return s, err
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if s.OrgURL == "" {
		return fmt.Errorf("ADO_ORG_URL not set")
	}
	if !strings.HasPrefix(s.OrgURL, "http://") && !strings.HasPrefix(s.OrgURL, "https://") {
		return fmt.Errorf("ADO_ORG_URL must be an http(s) URL, got %q", s.OrgURL)
	}
	if s.Project == "" {
		return fmt.Errorf("ADO_PROJECT not set")
	}
	if s.PAT == "" {
		return fmt.Errorf("ADO_PAT not set")
	}
	if s.TestPlanID < 0 {
		return fmt.Errorf("ADO_TEST_PLAN_ID must be non-negative, got %d", s.TestPlanID)
	}
	return nil
}

// String returns a loggable summary with the secrets redacted.
func (s Settings) String() string {
	return fmt.Sprintf("Settings{OrgURL: %s, Project: %s, PAT: %s, TestPlanID: %d, HistoryDB: %s}",
		s.OrgURL, s.Project, redact(s.PAT), s.TestPlanID, s.HistoryDBPath)
}

func redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "***"
}

func parseEnvString(key string, dest *string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %q is not an integer", key, value)
	}
	*dest = parsed
	return nil
}
