package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADO_ORG_URL", "https://dev.azure.com/myorg")
	t.Setenv("ADO_PROJECT", "MyProject")
	t.Setenv("ADO_PAT", "secret-token")
}

func TestFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADO_TEST_PLAN_ID", "42")
	t.Setenv("TSP_HISTORY_DB", "/tmp/journal.db")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://dev.azure.com/myorg", s.OrgURL)
	assert.Equal(t, "MyProject", s.Project)
	assert.Equal(t, "secret-token", s.PAT)
	assert.Equal(t, 42, s.TestPlanID)
	assert.Equal(t, "/tmp/journal.db", s.HistoryDBPath)
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADO_TEST_PLAN_ID", "")
	t.Setenv("TSP_HISTORY_DB", "")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, s.TestPlanID)
	assert.Equal(t, ".testsync/history.db", s.HistoryDBPath)
}

func TestFromEnvMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{"missing org URL", "ADO_ORG_URL", "ADO_ORG_URL not set"},
		{"missing project", "ADO_PROJECT", "ADO_PROJECT not set"},
		{"missing PAT", "ADO_PAT", "ADO_PAT not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromEnvInvalidPlanID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADO_TEST_PLAN_ID", "not-a-number")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADO_TEST_PLAN_ID")
}

func TestValidateOrgURLScheme(t *testing.T) {
	s := DefaultSettings()
	s.OrgURL = "dev.azure.com/myorg"
	s.Project = "p"
	s.PAT = "t"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http(s)")
}

func TestStringRedactsPAT(t *testing.T) {
	s := Settings{OrgURL: "https://dev.azure.com/o", Project: "p", PAT: "super-secret"}
	out := s.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "***")
}
