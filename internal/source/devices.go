// SPDX-License-Identifier: MIT
// Package source feeds the spectral analyzer: live PortAudio capture,
// WAV file streaming, and the device plumbing both need.
package source

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"spectro/internal/config"
)

// Initialize sets up the PortAudio subsystem. Must be paired with a
// Terminate call; capture cannot run without it.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts the PortAudio subsystem down.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Device describes one audio device for listing and selection.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// GetDevices returns all available audio devices. It manages its own
// PortAudio session so callers don't need Initialize first.
func GetDevices() ([]Device, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	defer Terminate()

	infos, err := paDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// InputDevice retrieves the input device for the given ID, or the
// system default when id is config.MinDeviceID (-1).
func InputDevice(id int) (*portaudio.DeviceInfo, error) {
	devices, err := paDevices()
	if err != nil {
		return nil, err
	}
	if id == config.MinDeviceID {
		return portaudio.DefaultInputDevice()
	}
	if id < 0 || id >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", id)
	}
	return devices[id], nil
}

// ListDevices prints every available device with its type, channel
// counts, default sample rate and latency range.
func ListDevices() error {
	devices, err := paDevices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for i, device := range devices {
		fmt.Printf("[%d] %s (%s)\n", i, device.Name, deviceType(device))
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
		fmt.Println()
	}
	return nil
}

func deviceType(d *portaudio.DeviceInfo) string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	}
	return ""
}

func paDevices() ([]*portaudio.DeviceInfo, error) {
	return portaudio.Devices()
}
