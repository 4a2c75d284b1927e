// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"spectro/internal/config"
	"spectro/pkg/build"
)

// Mode selects what the process does after argument parsing.
type Mode int

const (
	ModeLive   Mode = iota // capture from a device and stream spectra
	ModeList               // print or browse input devices
	ModeRender             // render a WAV file to a spectrogram image
)

// Options is the parsed command line: the resolved configuration plus
// the selected mode and its arguments.
type Options struct {
	Mode        Mode
	Config      *config.Config
	Interactive bool   // list: browse devices in a TUI
	InputFile   string // render: source WAV
	OutputFile  string // render: destination PNG
}

// ParseArgs builds the configuration from defaults, an optional YAML
// file and command line flags, in that order of precedence.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()
	opts := &Options{Mode: ModeLive}

	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Streaming spectral analysis engine",
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = ModeLive
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Audio Device Configuration
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")
	pf.IntP("device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.IntP("channels", "c", config.DefaultChannels,
		"Number of channels to capture (1=mono, 2=stereo)")
	pf.Float64P("sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.Int("frames-per-buffer", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.BoolP("low-latency", "l", false,
		"Use low latency mode for real-time processing")

	// Analysis Configuration
	pf.IntP("bands", "n", config.DefaultBands,
		"Number of frequency bands per spectrum")
	pf.Float64P("threshold", "t", config.DefaultThresholdDB,
		"Magnitude floor in dB; weaker bands are clamped to it")
	pf.DurationP("interval", "i", config.DefaultInterval,
		"Time between spectrum emissions")
	pf.StringP("window", "w", config.DefaultWindow,
		"FFT window function (hamming, hann, blackman, ...)")
	pf.Bool("multi-channel", false,
		"Emit a spectrum per channel instead of a mono downmix")
	pf.Bool("phase", false,
		"Track per-band phase alongside magnitude")

	// Recording Configuration
	pf.BoolP("record", "r", false,
		"Record the raw input stream to a WAV file while analyzing")

	// Debug Configuration
	pf.BoolP("verbose", "v", false,
		"Show verbose output")

	// PersistentPreRun resolves the layered configuration: file values
	// replace defaults, then any flag the user set replaces both.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("device") {
			cfg.Audio.Device, _ = f.GetInt("device")
		}
		if f.Changed("channels") {
			cfg.Audio.Channels, _ = f.GetInt("channels")
		}
		if f.Changed("sample-rate") {
			cfg.Audio.SampleRate, _ = f.GetFloat64("sample-rate")
		}
		if f.Changed("frames-per-buffer") {
			cfg.Audio.FramesPerBuffer, _ = f.GetInt("frames-per-buffer")
		}
		if f.Changed("low-latency") {
			cfg.Audio.LowLatency, _ = f.GetBool("low-latency")
		}
		if f.Changed("bands") {
			cfg.Analysis.Bands, _ = f.GetInt("bands")
		}
		if f.Changed("threshold") {
			cfg.Analysis.ThresholdDB, _ = f.GetFloat64("threshold")
		}
		if f.Changed("interval") {
			d, _ := f.GetDuration("interval")
			cfg.Analysis.Interval = config.Duration(d)
		}
		if f.Changed("window") {
			cfg.Analysis.Window, _ = f.GetString("window")
		}
		if f.Changed("multi-channel") {
			cfg.Analysis.MultiChannel, _ = f.GetBool("multi-channel")
		}
		if f.Changed("phase") {
			cfg.Analysis.TrackPhase, _ = f.GetBool("phase")
		}
		if f.Changed("record") {
			cfg.Recording.Enabled, _ = f.GetBool("record")
		}
		if f.Changed("verbose") {
			if v, _ := f.GetBool("verbose"); v {
				cfg.Debug = true
				cfg.LogLevel = "debug"
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		opts.Config = cfg
		return nil
	}

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = ModeList
			opts.Interactive, _ = cmd.Flags().GetBool("interactive")
			return nil
		},
	}
	listCmd.Flags().Bool("interactive", false,
		"Browse devices in an interactive terminal UI")
	rootCmd.AddCommand(listCmd)

	// Render command
	renderCmd := &cobra.Command{
		Use:   "render <input.wav>",
		Short: "Render a WAV file to a spectrogram PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = ModeRender
			opts.InputFile = args[0]

			cfg := opts.Config
			f := cmd.Flags()
			if f.Changed("width") {
				cfg.Render.Width, _ = f.GetInt("width")
			}
			if f.Changed("height") {
				cfg.Render.Height, _ = f.GetInt("height")
			}
			if f.Changed("resolution") {
				cfg.Render.Resolution, _ = f.GetInt("resolution")
			}
			if f.Changed("floor") {
				cfg.Render.FloorDB, _ = f.GetFloat64("floor")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts.OutputFile, _ = f.GetString("output")
			if opts.OutputFile == "" {
				opts.OutputFile = replaceExt(opts.InputFile, ".png")
			}
			return nil
		},
	}
	renderCmd.Flags().StringP("output", "o", "",
		"Output file name. Default replaces the input extension with .png")
	renderCmd.Flags().Int("width", config.DefaultWidth,
		"Image width in pixels")
	renderCmd.Flags().Int("height", config.DefaultHeight,
		"Image height in pixels")
	renderCmd.Flags().Int("resolution", config.DefaultResolution,
		"Horizontal pixels per second of audio")
	renderCmd.Flags().Float64("floor", config.DefaultFloorDB,
		"Shading floor in dB; levels at or below render black")
	rootCmd.AddCommand(renderCmd)

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}

// replaceExt swaps the extension of path for ext, appending when path
// has none.
func replaceExt(path, ext string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[:i] + ext
		case '/', '\\':
			return path + ext
		}
	}
	return path + ext
}
