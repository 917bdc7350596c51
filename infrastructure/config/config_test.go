package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ipo_automation/application/workflow"
	"ipo_automation/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"MEROSHARE_URL", "MEROSHARE_USERNAME", "MEROSHARE_PASSWORD", "MEROSHARE_DP_NP",
	"MEROSHARE_BANK", "MEROSHARE_P_ACCOUNT_NO", "MEROSHARE_KITTA_N0", "MEROSHARE_CRN_NO",
	"MEROSHARE_PIN", "MEROSHARE_MAX_SHARE_VALUE", "MEROSHARE_MAX_MIN_UNIT",
	"MEROSHARE_TERMS_POLICY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HEADLESS",
	"SCREENSHOT_DIR", "SELECTORS_FILE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, DefaultPortalURL, cfg.PortalURL)
	assert.Empty(t, cfg.Credentials.DP, "DP selection is skipped unless configured")
	assert.Equal(t, entities.TermsThresholds{MaxShareValue: 100, MaxMinUnit: 10, Policy: entities.TermsInclusive}, cfg.Thresholds)
	assert.False(t, cfg.Headless)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.NotificationsEnabled())
	assert.False(t, cfg.Application.Complete())
	assert.ErrorIs(t, cfg.Validate(), entities.ErrMissingCredentials)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range configKeys {
		os.Unsetenv(k)
	}
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`MEROSHARE_USERNAME=alice
MEROSHARE_PASSWORD=hunter2
MEROSHARE_BANK=Nepal Bank Limited
MEROSHARE_P_ACCOUNT_NO=0123456789
MEROSHARE_KITTA_N0=10
MEROSHARE_CRN_NO=CRN-1
MEROSHARE_TERMS_POLICY=exclusive
TELEGRAM_BOT_TOKEN=123:abc
TELEGRAM_CHAT_ID=42
HEADLESS=true
LOG_LEVEL=debug
`), 0644))
	t.Cleanup(func() {
		for _, k := range configKeys {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(envFile, nil)

	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "alice", cfg.Credentials.Username)
	assert.True(t, cfg.Application.Complete())
	assert.Equal(t, entities.TermsExclusive, cfg.Thresholds.Policy)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.NotificationsEnabled())
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Contains(t, cfg.Secrets(), "hunter2")
}

func TestLoadMissingEnvFileWarns(t *testing.T) {
	clearEnv(t)
	var warned string

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"), func(msg string) { warned = msg })

	require.NoError(t, err)
	assert.Contains(t, warned, "missing.env")
}

func TestFromEnvInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEROSHARE_MAX_SHARE_VALUE", "a hundred")
	t.Setenv("MEROSHARE_TERMS_POLICY", "loose")
	t.Setenv("HEADLESS", "maybe")

	_, err := FromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEROSHARE_MAX_SHARE_VALUE")
	assert.Contains(t, err.Error(), "MEROSHARE_TERMS_POLICY")
	assert.Contains(t, err.Error(), "HEADLESS")
}

func TestLoadCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
username_fields:
  - input#loginId
  - selector: input[name="loginId"]
    timeout: 3s
login_url_marker: signin
`), 0644))

	catalog, err := LoadCatalog(path)

	require.NoError(t, err)
	assert.Equal(t, []entities.SelectorCandidate{
		{Selector: "input#loginId"},
		{Selector: `input[name="loginId"]`, Timeout: 3 * time.Second},
	}, catalog.UsernameFields)
	assert.Equal(t, "signin", catalog.LoginURLMarker)
	assert.Equal(t, workflow.DefaultCatalog().PasswordFields, catalog.PasswordFields)
}

func TestLoadCatalogDefaultsAndErrors(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, workflow.DefaultCatalog(), catalog)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("username_fields: {"), 0644))
	_, err = LoadCatalog(bad)
	assert.Error(t, err)
}

func TestFromEnvDP(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEROSHARE_DP_NP", " Global IME Capital ")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "Global IME Capital", cfg.Credentials.DP)
}

func TestFromEnvRejectsNonFiniteThresholds(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Inf", "-5"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MEROSHARE_MAX_MIN_UNIT", v)

			_, err := FromEnv()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "MEROSHARE_MAX_MIN_UNIT")
		})
	}
}
