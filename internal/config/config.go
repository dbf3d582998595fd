// Package config loads janken settings from a YAML file, a .env file and
// JANKEN_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix is prepended to environment variable names, e.g. JANKEN_HTTP_ADDR.
const EnvPrefix = "JANKEN"

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type WebConfig struct {
	Dir string `mapstructure:"dir"`
}

type CameraConfig struct {
	Enabled bool `mapstructure:"enabled"`
	ID      int  `mapstructure:"id"`
	FPS     int  `mapstructure:"fps"`
}

type DetectorConfig struct {
	MaxHands        int     `mapstructure:"max_hands"`
	MinConfidence   float64 `mapstructure:"min_confidence"`
	MinTrackingConf float64 `mapstructure:"min_tracking_confidence"`
	Script          string  `mapstructure:"script"`
}

type GameConfig struct {
	LockThreshold    int `mapstructure:"lock_threshold"`
	CountdownSeconds int `mapstructure:"countdown_seconds"`
}

type ClassifierConfig struct {
	ExtendMargin float64 `mapstructure:"extend_margin"`
	CurlMargin   float64 `mapstructure:"curl_margin"`
	FistDistance float64 `mapstructure:"fist_distance"`
	WristRaise   float64 `mapstructure:"wrist_raise"`
}

type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

type UIConfig struct {
	Tray     bool `mapstructure:"tray"`
	Terminal bool `mapstructure:"terminal"`
}

type HooksConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Dir       string `mapstructure:"dir"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full application configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Data       DataConfig       `mapstructure:"data"`
	Web        WebConfig        `mapstructure:"web"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Game       GameConfig       `mapstructure:"game"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Audio      AudioConfig      `mapstructure:"audio"`
	UI         UIConfig         `mapstructure:"ui"`
	Hooks      HooksConfig      `mapstructure:"hooks"`
	Log        LogConfig        `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	th := gesture.DefaultThresholds()
	gc := game.DefaultConfig()
	dc := detector.DefaultConfig()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("data.dir", "~/.janken")
	v.SetDefault("web.dir", "")
	v.SetDefault("camera.enabled", false)
	v.SetDefault("camera.id", 0)
	v.SetDefault("camera.fps", 15)
	v.SetDefault("detector.max_hands", dc.MaxHands)
	v.SetDefault("detector.min_confidence", dc.MinConfidence)
	v.SetDefault("detector.min_tracking_confidence", dc.MinTrackingConf)
	v.SetDefault("detector.script", "")
	v.SetDefault("game.lock_threshold", gc.LockThreshold)
	v.SetDefault("game.countdown_seconds", gc.CountdownSeconds)
	v.SetDefault("classifier.extend_margin", th.ExtendMargin)
	v.SetDefault("classifier.curl_margin", th.CurlMargin)
	v.SetDefault("classifier.fist_distance", th.FistDistance)
	v.SetDefault("classifier.wrist_raise", th.WristRaise)
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.5)
	v.SetDefault("ui.tray", false)
	v.SetDefault("ui.terminal", false)
	v.SetDefault("hooks.enabled", true)
	v.SetDefault("hooks.dir", "")
	v.SetDefault("hooks.timeout_ms", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. When file is empty, config.yaml is searched
// for in the working directory and ~/.janken; a missing file is not an
// error. A .env file in the working directory is loaded first if present.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".janken"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	dir, err := expandHome(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	cfg.Data.Dir = dir

	if cfg.Hooks.Dir, err = expandHome(cfg.Hooks.Dir); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := c.GameSettings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cl := c.Classifier
	if cl.ExtendMargin <= 0 || cl.CurlMargin < 0 || cl.FistDistance <= 0 {
		return fmt.Errorf("%w: classifier margins must be positive", ErrInvalid)
	}
	if cl.WristRaise <= 0 || cl.WristRaise > 1 {
		return fmt.Errorf("%w: classifier.wrist_raise must be in (0, 1], got %v", ErrInvalid, cl.WristRaise)
	}
	if c.Camera.Enabled && c.Camera.FPS <= 0 {
		return fmt.Errorf("%w: camera.fps must be positive, got %d", ErrInvalid, c.Camera.FPS)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume must be in [0, 1], got %v", ErrInvalid, c.Audio.Volume)
	}
	if c.Hooks.Enabled && c.Hooks.TimeoutMs <= 0 {
		return fmt.Errorf("%w: hooks.timeout_ms must be positive, got %d", ErrInvalid, c.Hooks.TimeoutMs)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr is required", ErrInvalid)
	}
	return nil
}

// GameSettings converts to the game package's configuration.
func (c *Config) GameSettings() game.Config {
	return game.Config{
		LockThreshold:    c.Game.LockThreshold,
		CountdownSeconds: c.Game.CountdownSeconds,
	}
}

// Thresholds converts to classifier thresholds.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		ExtendMargin: c.Classifier.ExtendMargin,
		CurlMargin:   c.Classifier.CurlMargin,
		FistDistance: c.Classifier.FistDistance,
		WristRaise:   c.Classifier.WristRaise,
	}
}

// DetectorSettings converts to the detector package's configuration.
func (c *Config) DetectorSettings() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConf,
		ScriptPath:      c.Detector.Script,
	}
}

// DBPath is the SQLite file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.Dir, "janken.db")
}

// HooksDir is hooks.dir, or the hooks directory inside the data directory.
func (c *Config) HooksDir() string {
	if c.Hooks.Dir != "" {
		return c.Hooks.Dir
	}
	return filepath.Join(c.Data.Dir, "hooks")
}

// HookTimeout is the time a hook may run before it is killed.
func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutMs) * time.Millisecond
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
