package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, game.DefaultConfig(), cfg.GameSettings())
	assert.Equal(t, gesture.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, 1, cfg.Detector.MaxHands)
	assert.Equal(t, 15, cfg.Camera.FPS)
	assert.False(t, cfg.Camera.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)

	home := os.Getenv("HOME")
	assert.Equal(t, filepath.Join(home, ".janken"), cfg.Data.Dir)
	assert.Equal(t, filepath.Join(home, ".janken", "janken.db"), cfg.DBPath())

	assert.True(t, cfg.Hooks.Enabled)
	assert.Equal(t, filepath.Join(home, ".janken", "hooks"), cfg.HooksDir())
	assert.Equal(t, 5*time.Second, cfg.HookTimeout())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: "127.0.0.1:9000"
data:
  dir: /tmp/janken-test
game:
  lock_threshold: 5
  countdown_seconds: 2
classifier:
  fist_distance: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, "/tmp/janken-test", cfg.Data.Dir)
	assert.Equal(t, game.Config{LockThreshold: 5, CountdownSeconds: 2}, cfg.GameSettings())
	assert.InDelta(t, 0.2, cfg.Thresholds().FistDistance, 1e-9)
	assert.InDelta(t, gesture.DefaultThresholds().ExtendMargin, cfg.Thresholds().ExtendMargin, 1e-9)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "game:\n  lock_threshold: 5\n")
	t.Setenv("JANKEN_GAME_LOCK_THRESHOLD", "8")
	t.Setenv("JANKEN_CAMERA_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Game.LockThreshold)
	assert.True(t, cfg.Camera.Enabled)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "game:\n  lock_threshold: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		th := gesture.DefaultThresholds()
		return &Config{
			HTTP: HTTPConfig{Addr: ":8080"},
			Game: GameConfig{LockThreshold: 15, CountdownSeconds: 3},
			Classifier: ClassifierConfig{
				ExtendMargin: th.ExtendMargin,
				CurlMargin:   th.CurlMargin,
				FistDistance: th.FistDistance,
				WristRaise:   th.WristRaise,
			},
			Camera: CameraConfig{FPS: 15},
			Audio:  AudioConfig{Volume: 0.5},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero countdown", func(c *Config) { c.Game.CountdownSeconds = 0 }},
		{"negative threshold", func(c *Config) { c.Game.LockThreshold = -1 }},
		{"zero extend margin", func(c *Config) { c.Classifier.ExtendMargin = 0 }},
		{"wrist raise above one", func(c *Config) { c.Classifier.WristRaise = 1.5 }},
		{"camera without fps", func(c *Config) { c.Camera.Enabled = true; c.Camera.FPS = 0 }},
		{"loud volume", func(c *Config) { c.Audio.Volume = 2 }},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"hooks without timeout", func(c *Config) { c.Hooks.Enabled = true; c.Hooks.TimeoutMs = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandHome("~/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), got)

	got, err = expandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = expandHome("~user/x")
	require.NoError(t, err)
	assert.Equal(t, "~user/x", got)
}
