// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is
// empty, it searches default locations ("config.yaml"). If no file is found, it
// uses built-in defaults. After loading, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"config.yaml",
			"spectro.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Env overrides apply AFTER any file so they always win.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range or inconsistent values.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %v outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.Channels < 1 {
		return fmt.Errorf("audio.channels must be at least 1, got %d", c.Audio.Channels)
	}
	if c.Audio.FramesPerBuffer < 1 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d outside [1, %d]",
			c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Analysis.Bands < MinBands {
		return fmt.Errorf("analysis.bands must be at least %d, got %d", MinBands, c.Analysis.Bands)
	}
	if c.Analysis.ThresholdDB >= 0 {
		return fmt.Errorf("analysis.threshold_db must be negative, got %v", c.Analysis.ThresholdDB)
	}
	if c.Analysis.Interval <= 0 {
		return fmt.Errorf("analysis.interval must be positive, got %v", c.Analysis.Interval)
	}
	if c.Render.Width < 1 || c.Render.Height < 1 {
		return fmt.Errorf("render geometry %dx%d invalid", c.Render.Width, c.Render.Height)
	}
	if c.Render.Resolution < 1 {
		return fmt.Errorf("render.resolution must be at least 1, got %d", c.Render.Resolution)
	}
	if c.Render.FloorDB >= 0 {
		return fmt.Errorf("render.floor_db must be negative, got %v", c.Render.FloorDB)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTargetAddress == "" {
		return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		return fmt.Errorf("transport.websocket_addr must be set when WebSocket is enabled")
	}
	return nil
}

// applyEnvOverrides copies recognized SPECTRO_* environment variables over
// the loaded configuration. Unparsable values are ignored.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("SPECTRO_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRO_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("SPECTRO_BANDS"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Analysis.Bands = iVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRO_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Analysis.Interval = Duration(dur)
		}
	}
	if val, ok := os.LookupEnv("SPECTRO_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRO_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("SPECTRO_WEBSOCKET_ADDR"); ok {
		cfg.Transport.WebSocketAddr = val
	}
}
