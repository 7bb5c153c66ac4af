package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FLASHWISE_AI_ENABLED",
		"FLASHWISE_AI_API_KEY",
		"FLASHWISE_AI_BASE_URL",
		"FLASHWISE_AI_CHAT_MODEL",
		"FLASHWISE_AI_EMBEDDING_MODEL",
		"FLASHWISE_AI_DAILY_BUDGET_USD",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearAIEnv(t)

	p := &Profile{}
	p.FromEnv()

	assert.False(t, p.AIEnabled)
	assert.Equal(t, "https://api.openai.com/v1", p.AIBaseURL)
	assert.Equal(t, "gpt-4o-mini", p.AIChatModel)
	assert.Equal(t, "text-embedding-3-small", p.AIEmbeddingModel)
	assert.Equal(t, 1.0, p.AIDailyBudgetUSD)
}

func TestFromEnvOverrides(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("FLASHWISE_AI_ENABLED", "true")
	t.Setenv("FLASHWISE_AI_API_KEY", "sk-test")
	t.Setenv("FLASHWISE_AI_BASE_URL", "https://api.deepseek.com/v1")
	t.Setenv("FLASHWISE_AI_CHAT_MODEL", "deepseek-chat")
	t.Setenv("FLASHWISE_AI_DAILY_BUDGET_USD", "2.5")

	p := &Profile{}
	p.FromEnv()

	assert.True(t, p.AIEnabled)
	assert.Equal(t, "sk-test", p.AIAPIKey)
	assert.Equal(t, "https://api.deepseek.com/v1", p.AIBaseURL)
	assert.Equal(t, "deepseek-chat", p.AIChatModel)
	assert.Equal(t, 2.5, p.AIDailyBudgetUSD)
}

func TestFromEnvInvalidBudget(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("FLASHWISE_AI_DAILY_BUDGET_USD", "not-a-number")

	p := &Profile{}
	p.FromEnv()
	assert.Equal(t, 1.0, p.AIDailyBudgetUSD)

	t.Setenv("FLASHWISE_AI_DAILY_BUDGET_USD", "-3")
	p = &Profile{}
	p.FromEnv()
	assert.Equal(t, 1.0, p.AIDailyBudgetUSD)
}

func TestIsAIEnabled(t *testing.T) {
	p := &Profile{AIEnabled: true}
	assert.False(t, p.IsAIEnabled(), "enabled without an API key should not count")

	p.AIAPIKey = "sk-test"
	assert.True(t, p.IsAIEnabled())

	p.AIEnabled = false
	assert.False(t, p.IsAIEnabled())
}

func TestValidate(t *testing.T) {
	dataDir := t.TempDir()

	t.Run("unknown mode falls back to demo", func(t *testing.T) {
		p := &Profile{Mode: "staging", Driver: "sqlite", Data: dataDir}
		require.NoError(t, p.Validate())
		assert.Equal(t, "demo", p.Mode)
	})

	t.Run("sqlite dsn defaults into the data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: dataDir}
		require.NoError(t, p.Validate())
		assert.Contains(t, p.DSN, "flashwise_dev.db")
	})

	t.Run("postgres requires a dsn", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "postgres", Data: dataDir}
		assert.Error(t, p.Validate())
	})

	t.Run("version is populated", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: dataDir}
		require.NoError(t, p.Validate())
		assert.NotEmpty(t, p.Version)
	})
}
