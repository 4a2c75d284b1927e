// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"spectro/cmd"
	"spectro/internal/config"
	applog "spectro/internal/log"
	"spectro/internal/render"
	"spectro/internal/source"
	"spectro/internal/spectral"
	"spectro/internal/transport"
	"spectro/internal/transport/udp"
	"spectro/internal/tui"
	"spectro/pkg/build"
)

// main is the entry point for the analysis engine.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Configure the spectral analyzer and output sinks
//   - Begin input stream processing
//   - Start recording if enabled
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Flush the final partial interval
//   - Stop recording if active
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	build.Initialize()

	opts, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts.Config == nil {
		// Help or version output already handled by the CLI.
		return
	}

	if level, ok := applog.ParseLevel(opts.Config.LogLevel); ok {
		applog.SetLevel(level)
	}
	if opts.Config.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	switch opts.Mode {
	case cmd.ModeList:
		err = runList(opts)
	case cmd.ModeRender:
		err = runRender(opts)
	default:
		err = runLive(opts)
	}
	if err != nil {
		applog.Fatalf("%v", err)
	}
}

// runList prints the device table, or opens the interactive browser.
func runList(opts *cmd.Options) error {
	if opts.Interactive {
		return tui.StartDeviceListUI()
	}
	if err := source.Initialize(); err != nil {
		return err
	}
	defer source.Terminate()
	return source.ListDevices()
}

// runLive captures from an input device and streams spectra to the
// configured sinks until interrupted.
func runLive(opts *cmd.Options) error {
	cfg := opts.Config

	window, err := spectral.ParseWindowFunc(cfg.Analysis.Window)
	if err != nil {
		return err
	}

	// Assemble the output fanout before any audio flows.
	sinks := transport.Fanout{}
	if cfg.Transport.WebSocketEnabled {
		sinks = append(sinks, transport.NewWebSocketSink(cfg.Transport.WebSocketAddr))
	}
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		pub, err := udp.NewPublisher(sender, cfg.Analysis.Bands)
		if err != nil {
			sender.Close()
			return err
		}
		sinks = append(sinks, pub)
	}
	sinks = append(sinks, transport.NewLoggingSink())
	defer transport.CloseAll(sinks...)

	analyzer := spectral.NewAnalyzer(sinks)

	if err := source.Initialize(); err != nil {
		return err
	}
	defer source.Terminate()

	capture, err := source.NewCapture(cfg, analyzer)
	if err != nil {
		return err
	}
	defer capture.Close()

	if err := analyzer.Configure(spectral.Config{
		SampleRate:   int(cfg.Audio.SampleRate),
		Channels:     cfg.Audio.Channels,
		Encoding:     capture.Encoding(),
		Bands:        cfg.Analysis.Bands,
		MultiChannel: cfg.Analysis.MultiChannel,
		ThresholdDB:  cfg.Analysis.ThresholdDB,
		Interval:     cfg.Analysis.Interval.Std(),
		Window:       window,
		TrackPhase:   cfg.Analysis.TrackPhase,
	}); err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	if err := capture.Start(); err != nil {
		return err
	}

	var recordingPath string
	if cfg.Recording.Enabled {
		recordingPath = filepath.Join(cfg.Recording.OutputDir,
			"recording-"+time.Now().UTC().Format("02-01-2006-150405")+".wav")
		if err := os.MkdirAll(cfg.Recording.OutputDir, 0755); err != nil {
			return err
		}
		if err := capture.StartRecording(recordingPath); err != nil {
			return err
		}
	}

	applog.Infof("analyzing: %d bands every %v, ctrl-c to stop",
		cfg.Analysis.Bands, cfg.Analysis.Interval.Std())

	<-done

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := capture.Stop(); err != nil {
		applog.Warnf("stopping capture: %v", err)
	}
	analyzer.Flush()

	if cfg.Recording.Enabled {
		if err := capture.StopRecording(); err != nil {
			applog.Warnf("stopping recording: %v", err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", recordingPath)
		}
	}
	return nil
}

// runRender converts a WAV file into a spectrogram PNG. The emission
// interval is derived from the horizontal resolution so one emitted
// column covers 1/resolution seconds of audio.
func runRender(opts *cmd.Options) error {
	cfg := opts.Config

	info, err := source.ProbeWAV(opts.InputFile)
	if err != nil {
		return err
	}
	applog.Infof("render: %s is %d Hz, %d channels, %d-bit, %v",
		opts.InputFile, info.SampleRate, info.Channels, info.BitDepth, info.Duration)

	window, err := spectral.ParseWindowFunc(cfg.Analysis.Window)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(render.Curve{
		Floor: cfg.Render.FloorDB,
		Tx:    render.DefaultCurve.Tx,
		Ty:    render.DefaultCurve.Ty,
	}, nil)
	if err := renderer.SetGeometry(cfg.Render.Width, cfg.Render.Height); err != nil {
		return err
	}

	analyzer := spectral.NewAnalyzer(renderer)
	if err := analyzer.Configure(spectral.Config{
		SampleRate:  info.SampleRate,
		Channels:    info.Channels,
		Encoding:    info.Encoding,
		Bands:       cfg.Analysis.Bands,
		ThresholdDB: cfg.Analysis.ThresholdDB,
		Interval:    time.Second / time.Duration(cfg.Render.Resolution),
		Window:      window,
	}); err != nil {
		return err
	}

	if err := source.StreamWAV(opts.InputFile, analyzer, config.DefaultFramesPerBuffer); err != nil {
		return err
	}
	analyzer.Flush()

	frame, width, height := renderer.Frame()
	if err := render.WritePNG(opts.OutputFile, frame, width, height); err != nil {
		return err
	}
	fmt.Printf("Spectrogram written to: %s\n", opts.OutputFile)
	return nil
}
