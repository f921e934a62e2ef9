package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "pedro-test")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("CLIENT_URL", "https://pedro.app")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "smtpout.secureserver.net", cfg.SMTPHost)
	assert.Equal(t, "587", cfg.SMTPPort)
	assert.False(t, cfg.SMTPConfigured())
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigMissingStripe(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSMTPConfigured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_USER", "kontakt@pedro.app")
	t.Setenv("SMTP_PASS", "sekret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.SMTPConfigured())
}
