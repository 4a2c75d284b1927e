// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// StartRecording tees the raw captured input into a 32-bit WAV file
// alongside analysis. The atomic flag keeps the callback path free of
// locks.
func (c *Capture) StartRecording(filename string) error {
	if atomic.LoadInt32(&c.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	c.outputFile = file
	c.wavEncoder = wav.NewEncoder(file, c.sampleRate, 32, c.channels, 1)
	c.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: c.channels,
			SampleRate:  c.sampleRate,
		},
		Data: make([]int, len(c.packed)/4),
	}

	atomic.StoreInt32(&c.isRecording, 1)
	return nil
}

// StopRecording finalizes the WAV file. No-op when not recording.
func (c *Capture) StopRecording() error {
	if atomic.LoadInt32(&c.isRecording) == 0 {
		return nil
	}
	atomic.StoreInt32(&c.isRecording, 0)

	if c.wavEncoder != nil {
		if err := c.wavEncoder.Close(); err != nil {
			return err
		}
		c.wavEncoder = nil
	}
	if c.outputFile != nil {
		if err := c.outputFile.Close(); err != nil {
			return err
		}
		c.outputFile = nil
	}
	return nil
}
