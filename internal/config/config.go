package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// GameConfig is the server-wide tuning surface. Per-room rule settings are
// seeded from these values and then frozen into the room's own aggregate.
type GameConfig struct {
	DefaultPlayerCount int  `json:"default_player_count"`
	TwosHigh           bool `json:"twos_high"`
	TradingEnabled     bool `json:"trading_enabled"`
	WinScore           int  `json:"win_score"`

	// Bot pacing: a simulated think time drawn uniformly from the window.
	BotMinDelayMs int `json:"bot_min_delay_ms"`
	BotMaxDelayMs int `json:"bot_max_delay_ms"`
	// BotAutoFillDelaySeconds configures how many seconds a short-handed
	// lobby waits before bots take the remaining seats.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`

	RedisAddr string `json:"redis_addr"`
}

// Default returns the configuration used when no file or override is given.
func Default() *GameConfig {
	return &GameConfig{
		DefaultPlayerCount:      4,
		TwosHigh:                false,
		TradingEnabled:          true,
		WinScore:                50,
		BotMinDelayMs:           800,
		BotMaxDelayMs:           2500,
		BotAutoFillDelaySeconds: 15,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path, once.
// A missing file is not an error; defaults apply.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg = Default()
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return
		}
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
		}
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// ApplyEnv overrides fields from an environment map, e.g. the runtime
// environment a Nakama server passes to its modules. Unknown keys are
// ignored; unparsable values are reported.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	var firstErr error
	setInt := func(key string, dst *int) {
		raw, ok := env[key]
		if !ok || raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("env %s: %w", key, err)
			}
			return
		}
		*dst = v
	}
	setBool := func(key string, dst *bool) {
		raw, ok := env[key]
		if !ok || raw == "" {
			return
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("env %s: %w", key, err)
			}
			return
		}
		*dst = v
	}

	setInt("REVOLUTION_PLAYER_COUNT", &c.DefaultPlayerCount)
	setBool("REVOLUTION_TWOS_HIGH", &c.TwosHigh)
	setBool("REVOLUTION_TRADING_ENABLED", &c.TradingEnabled)
	setInt("REVOLUTION_WIN_SCORE", &c.WinScore)
	setInt("REVOLUTION_BOT_MIN_DELAY_MS", &c.BotMinDelayMs)
	setInt("REVOLUTION_BOT_MAX_DELAY_MS", &c.BotMaxDelayMs)
	setInt("REVOLUTION_BOT_AUTOFILL_SECONDS", &c.BotAutoFillDelaySeconds)
	if addr, ok := env["REVOLUTION_REDIS_ADDR"]; ok && addr != "" {
		c.RedisAddr = addr
	}
	return firstErr
}
