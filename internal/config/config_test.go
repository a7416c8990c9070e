package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGameIsValid(t *testing.T) {
	g := DefaultGame()

	require.NoError(t, g.Validate())
	assert.Equal(t, 750*time.Millisecond, g.MaxTickInterval)
	assert.Equal(t, 200*time.Millisecond, g.MinTickInterval)
	assert.True(t, g.AutoReset)
	assert.Equal(t, RandomizerUniform, g.Randomizer)
}

func TestGameValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(g *Game)
	}{
		{name: "zero min interval", modify: func(g *Game) { g.MinTickInterval = 0 }},
		{name: "max below min", modify: func(g *Game) { g.MaxTickInterval = 100 * time.Millisecond }},
		{name: "negative speed-up", modify: func(g *Game) { g.ScorePerSpeedUp = -1 }},
		{name: "zero level-up lines", modify: func(g *Game) { g.LevelUpLines = 0 }},
		{name: "unknown randomizer", modify: func(g *Game) { g.Randomizer = "shuffle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGame()
			tt.modify(&g)
			assert.ErrorIs(t, g.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TETRIS_MAX_TICK_INTERVAL_MS", "1000")
	t.Setenv("TETRIS_MIN_TICK_INTERVAL_MS", "100")
	t.Setenv("TETRIS_SCORE_PER_SPEEDUP", "500")
	t.Setenv("TETRIS_AUTO_RESET", "false")
	t.Setenv("TETRIS_RANDOMIZER", "BAG")
	t.Setenv("TETRIS_SEED", "42")
	t.Setenv("TETRIS_FRAME_INTERVAL_MS", "33")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, time.Second, cfg.Game.MaxTickInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Game.MinTickInterval)
	assert.Equal(t, 500, cfg.Game.ScorePerSpeedUp)
	assert.False(t, cfg.Game.AutoReset)
	assert.Equal(t, RandomizerBag, cfg.Game.Randomizer)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval)
	assert.NoError(t, cfg.Game.Validate())
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TETRIS_MAX_TICK_INTERVAL_MS", "fast")
	t.Setenv("TETRIS_AUTO_RESET", "maybe")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, DefaultGame().MaxTickInterval, cfg.Game.MaxTickInterval)
	assert.True(t, cfg.Game.AutoReset)
}

func TestLoadConfigFromDotEnvFile(t *testing.T) {
	const key = "TETRIS_LEVEL_UP_LINES"
	_, alreadySet := os.LookupEnv(key)
	if alreadySet {
		t.Skipf("%s is set in the environment", key)
	}
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=25\n"), 0o600))

	cfg := LoadConfig(path)

	assert.Equal(t, 25, cfg.Game.LevelUpLines)
}
