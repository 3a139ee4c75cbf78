// Package config loads application settings from TOML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppName is used for config and data directory names.
const AppName = "hsv-range-finder"

// Config holds application configuration.
type Config struct {
	Camera   CameraConfig   `mapstructure:"camera"`
	HSV      HSVConfig      `mapstructure:"hsv"`
	Display  DisplayConfig  `mapstructure:"display"`
	Presets  PresetsConfig  `mapstructure:"presets"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// CameraConfig holds capture device settings.
type CameraConfig struct {
	Device int `mapstructure:"device"`
	FPS    int `mapstructure:"fps"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// HSVConfig holds thresholding settings.
type HSVConfig struct {
	HueFullRange    bool    `mapstructure:"hue_full_range"`
	SampleTolerance int     `mapstructure:"sample_tolerance"`
	RefineSigma     float64 `mapstructure:"refine_sigma"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	BinaryOutput bool `mapstructure:"binary_output"`
	MaxWidth     int  `mapstructure:"max_width"`
}

// PresetsConfig locates the preset store.
type PresetsConfig struct {
	Path string `mapstructure:"path"`
}

// SnapshotConfig locates exported frames.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// Dir returns the directory holding config files.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, AppName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("camera.device", 1)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.width", 0)
	v.SetDefault("camera.height", 0)
	v.SetDefault("hsv.hue_full_range", false)
	v.SetDefault("hsv.sample_tolerance", 40)
	v.SetDefault("hsv.refine_sigma", 2.0)
	v.SetDefault("display.binary_output", false)
	v.SetDefault("display.max_width", 640)
	v.SetDefault("presets.path", filepath.Join(Dir(), "presets.toml"))
	v.SetDefault("snapshot.dir", filepath.Join(os.Getenv("HOME"), "Pictures", AppName))
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// path returns the config file location, honoring HSVRANGE_CONFIG.
func path() string {
	if p := os.Getenv("HSVRANGE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix HSVRANGE_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(path())

	v.SetEnvPrefix("HSVRANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the capture loop cannot honor.
func (c Config) Validate() error {
	if c.Camera.Device < 0 {
		return fmt.Errorf("camera.device must be >= 0, got %d", c.Camera.Device)
	}
	if c.Camera.FPS <= 0 || c.Camera.FPS > 240 {
		return fmt.Errorf("camera.fps must be in 1..240, got %d", c.Camera.FPS)
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return fmt.Errorf("camera.width/height must be >= 0")
	}
	if c.HSV.SampleTolerance < 0 || c.HSV.SampleTolerance > 255 {
		return fmt.Errorf("hsv.sample_tolerance must be in 0..255, got %d", c.HSV.SampleTolerance)
	}
	if c.HSV.RefineSigma <= 0 {
		return fmt.Errorf("hsv.refine_sigma must be > 0, got %v", c.HSV.RefineSigma)
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	p := path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("camera.device", cfg.Camera.Device)
	v.Set("camera.fps", cfg.Camera.FPS)
	v.Set("camera.width", cfg.Camera.Width)
	v.Set("camera.height", cfg.Camera.Height)
	v.Set("hsv.hue_full_range", cfg.HSV.HueFullRange)
	v.Set("hsv.sample_tolerance", cfg.HSV.SampleTolerance)
	v.Set("hsv.refine_sigma", cfg.HSV.RefineSigma)
	v.Set("display.binary_output", cfg.Display.BinaryOutput)
	v.Set("display.max_width", cfg.Display.MaxWidth)
	v.Set("presets.path", cfg.Presets.Path)
	v.Set("snapshot.dir", cfg.Snapshot.Dir)

	if err := v.WriteConfigAs(p); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
