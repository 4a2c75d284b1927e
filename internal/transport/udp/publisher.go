// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"

	applog "spectro/internal/log"
	"spectro/internal/spectral"
)

/*
Packet layout (BigEndian):

	+------------------+--------+-------+----------------------------------+
	| Sequence Number  | uint32 | 4 B   | monotonically increasing         |
	| End Timestamp    | int64  | 8 B   | interval end, stream time in ns  |
	| Magnitude Count  | uint16 | 2 B   | number of bands (N)              |
	| Magnitudes       | []f32  | N*4 B | channel 0 magnitude, dB          |
	+------------------+--------+-------+----------------------------------+
*/

// Publisher packs each completed interval into one binary packet and
// hands it to a Sender. It implements spectral.Sink, so packets go out
// as intervals complete rather than on a timer.
type Publisher struct {
	sender *Sender

	seq    uint32
	f32Buf []float32
	packet *bytes.Buffer
}

var _ spectral.Sink = (*Publisher)(nil)

// NewPublisher wraps sender. bands sizes the preallocated packing
// buffers; spectra with a different band count are still handled.
func NewPublisher(sender *Sender, bands int) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	return &Publisher{
		sender: sender,
		f32Buf: make([]float32, 0, bands),
		packet: new(bytes.Buffer),
	}, nil
}

// Emit packs channel 0 of the spectrum and sends it.
func (p *Publisher) Emit(s *spectral.Spectrum) error {
	if len(s.Magnitudes) == 0 {
		return nil
	}
	pkt, err := p.pack(s)
	if err != nil {
		return err
	}
	if err := p.sender.Send(pkt); err != nil {
		return err
	}
	applog.Debugf("udp: sent packet %d (%d bytes)", p.seq, len(pkt))
	return nil
}

// pack builds the binary packet in the reusable buffer. The returned
// slice is valid until the next pack call.
func (p *Publisher) pack(s *spectral.Spectrum) ([]byte, error) {
	mags := s.Magnitudes[0]
	p.f32Buf = p.f32Buf[:0]
	for _, v := range mags {
		p.f32Buf = append(p.f32Buf, float32(v))
	}

	p.seq++
	p.packet.Reset()
	err := binary.Write(p.packet, binary.BigEndian, p.seq)
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, int64(s.EndTime))
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, uint16(len(p.f32Buf)))
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, p.f32Buf)
	}
	if err != nil {
		return nil, fmt.Errorf("packing UDP packet: %w", err)
	}
	return p.packet.Bytes(), nil
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}
