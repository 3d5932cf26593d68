package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(map[string]string{
		"REVOLUTION_PLAYER_COUNT":     "6",
		"REVOLUTION_TWOS_HIGH":        "true",
		"REVOLUTION_WIN_SCORE":        "100",
		"REVOLUTION_REDIS_ADDR":       "redis:6379",
		"UNRELATED_KEY":               "ignored",
		"REVOLUTION_BOT_MIN_DELAY_MS": "",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, c.DefaultPlayerCount)
	assert.True(t, c.TwosHigh)
	assert.Equal(t, 100, c.WinScore)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	// Empty and unrelated keys leave defaults alone.
	assert.Equal(t, Default().BotMinDelayMs, c.BotMinDelayMs)
	assert.True(t, c.TradingEnabled)
}

func TestApplyEnvBadValue(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(map[string]string{"REVOLUTION_WIN_SCORE": "fifty"})
	assert.Error(t, err)
}
