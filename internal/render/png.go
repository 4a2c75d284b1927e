// SPDX-License-Identifier: MIT
package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// FrameImage wraps a composited RGBA frame in an image.RGBA without
// copying the pixel data.
func FrameImage(frame []byte, width, height int) (*image.RGBA, error) {
	if len(frame) != width*height*4 {
		return nil, fmt.Errorf("render: frame is %d bytes, want %d for %dx%d",
			len(frame), width*height*4, width, height)
	}
	return &image.RGBA{
		Pix:    frame,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// WritePNG encodes a composited frame as a PNG file.
func WritePNG(path string, frame []byte, width, height int) error {
	img, err := FrameImage(frame, width, height)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("render: encoding %s: %w", path, err)
	}
	return f.Close()
}
