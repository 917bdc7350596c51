package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"ipo_automation/domain/entities"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPortalURL     = "https://meroshare.cdsc.com.np/#/login"
	DefaultMaxShareValue = 100
	DefaultMaxMinUnit    = 10
)

// Config is everything a run needs, read from the environment
type Config struct {
	PortalURL     string
	Credentials   entities.Credentials
	Application   entities.ApplicationDetails
	Thresholds    entities.TermsThresholds
	TelegramToken string
	TelegramChat  string
	Headless      bool
	ScreenshotDir string
	SelectorsFile string
	LogLevel      logrus.Level
}

// Load reads envFile (optional) into the environment, then builds the
// config. A missing file is reported through warn and otherwise ignored.
func Load(envFile string, warn func(string)) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && warn != nil {
		warn(fmt.Sprintf("%s not loaded, using environment variables", envFile))
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment
func FromEnv() (*Config, error) {
	cfg := &Config{
		PortalURL: envOr("MEROSHARE_URL", DefaultPortalURL),
		Credentials: entities.Credentials{
			Username: strings.TrimSpace(os.Getenv("MEROSHARE_USERNAME")),
			Password: os.Getenv("MEROSHARE_PASSWORD"),
			// optional; DP selection is skipped when unset
			DP: strings.TrimSpace(os.Getenv("MEROSHARE_DP_NP")),
		},
		Application: entities.ApplicationDetails{
			Bank:          strings.TrimSpace(os.Getenv("MEROSHARE_BANK")),
			AccountNumber: strings.TrimSpace(os.Getenv("MEROSHARE_P_ACCOUNT_NO")),
			Kitta:         strings.TrimSpace(os.Getenv("MEROSHARE_KITTA_N0")),
			CRN:           strings.TrimSpace(os.Getenv("MEROSHARE_CRN_NO")),
			PIN:           strings.TrimSpace(os.Getenv("MEROSHARE_PIN")),
		},
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChat:  strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		ScreenshotDir: envOr("SCREENSHOT_DIR", "test-results"),
		SelectorsFile: strings.TrimSpace(os.Getenv("SELECTORS_FILE")),
	}

	var errs []error

	maxValue, err := envFloat("MEROSHARE_MAX_SHARE_VALUE", DefaultMaxShareValue)
	errs = append(errs, err)
	maxMinUnit, err := envFloat("MEROSHARE_MAX_MIN_UNIT", DefaultMaxMinUnit)
	errs = append(errs, err)
	cfg.Thresholds = entities.TermsThresholds{MaxShareValue: maxValue, MaxMinUnit: maxMinUnit}

	switch policy := strings.ToLower(envOr("MEROSHARE_TERMS_POLICY", string(entities.TermsInclusive))); policy {
	case string(entities.TermsInclusive), string(entities.TermsExclusive):
		cfg.Thresholds.Policy = entities.TermsPolicy(policy)
	default:
		errs = append(errs, fmt.Errorf("MEROSHARE_TERMS_POLICY must be inclusive or exclusive, got %q", policy))
	}

	cfg.Headless, err = envBool("HEADLESS", false)
	errs = append(errs, err)

	cfg.LogLevel = logrus.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		} else {
			cfg.LogLevel = parsed
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what a run cannot start without
func (c *Config) Validate() error {
	if c.Credentials.Username == "" || c.Credentials.Password == "" {
		return entities.ErrMissingCredentials
	}
	return nil
}

// NotificationsEnabled reports whether a bot is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChat != ""
}

// Secrets lists values that must never appear in logs or messages
func (c *Config) Secrets() []string {
	return []string{
		c.Credentials.Password,
		c.Application.PIN,
		c.Application.CRN,
		c.TelegramToken,
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return fallback, fmt.Errorf("%s: must be a finite non-negative number, got %q", key, v)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
