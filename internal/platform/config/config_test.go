package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv("MY_NAME", "Test Student")
	t.Setenv("MY_REG", "21BCE1234")
	t.Setenv("MY_BRANCH", "Computer Science Engineering")
	t.Setenv("MY_CGPA", "8.2")
	t.Setenv("MY_EMAIL", "test.student@college.edu")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/test")
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, "postgres", cfg.DedupBackend)
	assert.Equal(t, 60, cfg.RetentionDays)
	assert.InDelta(t, 0.3, cfg.EligibilityTolerance, 1e-9)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoad_DedupBackendValidation(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("DEDUP_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err, "redis backend without REDIS_URL must fail")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err = Load()
	require.NoError(t, err)
}

func TestProfile_AliasMerge(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BRANCH_ALIASES", "vlsi:vlsi design,robotics:robotics engineering")

	cfg, err := Load()
	require.NoError(t, err)

	profile := cfg.Profile()

	// Built-in aliases survive the merge.
	assert.Equal(t, "Computer Science Engineering", profile.BranchAliases["cse"])
	assert.Equal(t, "All", profile.BranchAliases["all branches"])

	// Extra aliases are lower-keyed and title-cased.
	assert.Equal(t, "Vlsi Design", profile.BranchAliases["vlsi"])
	assert.Equal(t, "Robotics Engineering", profile.BranchAliases["robotics"])
}

func TestKeywords_Extras(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("KEYWORDS", "Hackathon, bootcamp")

	cfg, err := Load()
	require.NoError(t, err)

	keywords := cfg.Keywords()
	assert.Contains(t, keywords, "placement")
	assert.Contains(t, keywords, "hackathon")
	assert.Contains(t, keywords, "bootcamp")
}
