// config.go - YAML configuration with environment overrides

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	Format     string `yaml:"format"`
	BufferMS   int    `yaml:"buffer_ms"`
}

// StreamFormat converts the configured values into a stream description.
func (c AudioConfig) StreamFormat() (StreamFormat, error) {
	f, err := ParseSampleFormat(c.Format)
	if err != nil {
		return StreamFormat{}, err
	}
	return StreamFormat{SampleRate: c.SampleRate, Channels: c.Channels, Format: f}, nil
}

type BurstConfig struct {
	HoldMS         int     `yaml:"hold_ms"`
	FrequencyScale float64 `yaml:"frequency_scale"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	PrometheusBind string `yaml:"prometheus_bind"`
}

type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	Burst     BurstConfig     `yaml:"burst"`
	Window    WindowConfig    `yaml:"window"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			Channels:   2,
			Format:     "f32",
			BufferMS:   20,
		},
		Burst: BurstConfig{
			HoldMS:         50,
			FrequencyScale: 10.0,
		},
		Window: WindowConfig{
			Width:  640,
			Height: 200,
			Title:  "keysynth",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads path over the defaults, then applies KEYSYNTH_* overrides.
// An empty path uses the defaults alone.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	var errs []error
	errs = append(errs,
		overrideInt(&cfg.Audio.SampleRate, "KEYSYNTH_AUDIO_SAMPLE_RATE"),
		overrideInt(&cfg.Audio.Channels, "KEYSYNTH_AUDIO_CHANNELS"),
		overrideInt(&cfg.Audio.BufferMS, "KEYSYNTH_AUDIO_BUFFER_MS"),
		overrideInt(&cfg.Burst.HoldMS, "KEYSYNTH_BURST_HOLD_MS"),
		overrideFloat(&cfg.Burst.FrequencyScale, "KEYSYNTH_BURST_FREQUENCY_SCALE"),
		overrideInt(&cfg.Window.Width, "KEYSYNTH_WINDOW_WIDTH"),
		overrideInt(&cfg.Window.Height, "KEYSYNTH_WINDOW_HEIGHT"),
	)
	overrideString(&cfg.Audio.Format, "KEYSYNTH_AUDIO_FORMAT")
	overrideString(&cfg.Window.Title, "KEYSYNTH_WINDOW_TITLE")
	overrideString(&cfg.Log.Level, "KEYSYNTH_LOG_LEVEL")
	overrideString(&cfg.Log.Format, "KEYSYNTH_LOG_FORMAT")
	overrideString(&cfg.Telemetry.PrometheusBind, "KEYSYNTH_TELEMETRY_PROMETHEUS_BIND")
	return errors.Join(errs...)
}

func overrideString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = strings.TrimSpace(v)
	}
}

func overrideInt(target *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = n
	return nil
}

func overrideFloat(target *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = f
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", cfg.Audio.Channels)
	}
	if _, err := ParseSampleFormat(cfg.Audio.Format); err != nil {
		return fmt.Errorf("audio.format: %w", err)
	}
	if cfg.Audio.BufferMS < 0 {
		return fmt.Errorf("audio.buffer_ms must not be negative, got %d", cfg.Audio.BufferMS)
	}
	if cfg.Burst.HoldMS <= 0 {
		return fmt.Errorf("burst.hold_ms must be positive, got %d", cfg.Burst.HoldMS)
	}
	if cfg.Burst.FrequencyScale <= 0 {
		return fmt.Errorf("burst.frequency_scale must be positive, got %g", cfg.Burst.FrequencyScale)
	}
	if _, err := parseLogLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}
