// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can use Go duration
// syntax ("100ms", "1.5s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Core configuration constants that define the boundaries and defaults
// for the analysis engine.
const (
	// Default values for the engine configuration
	DefaultChannels        = 1           // Mono capture
	DefaultDeviceID        = MinDeviceID // System default device
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultBands           = 128         // Frequency bands per spectrum
	DefaultThresholdDB     = -60.0       // Magnitude clamp floor (dB)
	DefaultInterval        = 100 * time.Millisecond
	DefaultWindow          = "hamming"

	// Rendering defaults
	DefaultWidth      = 320   // Spectrogram image width (px)
	DefaultHeight     = 240   // Spectrogram image height (px)
	DefaultResolution = 100   // Horizontal resolution (px per second)
	DefaultFloorDB    = -60.0 // Shading floor (dB)

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer
	MinBands        = 2      // Fewer bands leaves no FFT input
)

// Config holds all runtime configuration options for the engine.
// It is constructed from built-in defaults, an optional YAML file,
// and environment variable overrides, in that order.
type Config struct {
	Debug    bool   `yaml:"debug"`     // Enable debug mode (verbose logging)
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn" or "error"

	Audio     AudioConfig     `yaml:"audio"`     // Capture settings
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Spectral analysis settings
	Render    RenderConfig    `yaml:"render"`    // Spectrogram image settings
	Recording RecordingConfig `yaml:"recording"` // Input recording settings
	Transport TransportConfig `yaml:"transport"` // Network output settings
}

// AudioConfig holds settings related to audio input.
type AudioConfig struct {
	Device          int     `yaml:"device"`            // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz
	Channels        int     `yaml:"channels"`          // Input channels to capture
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per capture callback
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from PortAudio
}

// AnalysisConfig holds settings for the spectral analyzer.
type AnalysisConfig struct {
	Bands        int      `yaml:"bands"`         // Frequency bands per spectrum
	ThresholdDB  float64  `yaml:"threshold_db"`  // Magnitude clamp floor in dB (negative)
	Interval     Duration `yaml:"interval"`      // Emission interval, Go duration syntax
	Window       string   `yaml:"window"`        // Window function name
	MultiChannel bool     `yaml:"multi_channel"` // Per-channel spectra instead of a downmix
	TrackPhase   bool     `yaml:"track_phase"`   // Include per-band phase in emissions
}

// RenderConfig holds settings for spectrogram image output.
type RenderConfig struct {
	Width      int     `yaml:"width"`      // Image width in pixels
	Height     int     `yaml:"height"`     // Image height in pixels
	Resolution int     `yaml:"resolution"` // Horizontal pixels per second of audio
	FloorDB    float64 `yaml:"floor_db"`   // Shading floor in dB (negative)
}

// RecordingConfig holds settings for recording the raw input stream.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`    // Record input while analyzing
	OutputDir string `yaml:"output_dir"` // Directory for recorded WAV files
}

// TransportConfig holds settings for sending spectra over the network.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"` // Serve spectra as JSON over WebSocket
	WebSocketAddr    string `yaml:"websocket_addr"`    // Listen address (e.g. ":8080")
	UDPEnabled       bool   `yaml:"udp_enabled"`       // Send binary spectra over UDP
	UDPTargetAddress string `yaml:"udp_target_address"` // Target host:port for UDP packets
}

// NewConfig creates a Config populated with built-in defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			Device:          DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			Channels:        DefaultChannels,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
		},
		Analysis: AnalysisConfig{
			Bands:       DefaultBands,
			ThresholdDB: DefaultThresholdDB,
			Interval:    Duration(DefaultInterval),
			Window:      DefaultWindow,
		},
		Render: RenderConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			Resolution: DefaultResolution,
			FloorDB:    DefaultFloorDB,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: "./recordings",
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
	}
}
