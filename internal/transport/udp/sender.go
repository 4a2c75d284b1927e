// SPDX-License-Identifier: MIT
// Package udp sends spectral interval packets over UDP in a compact
// binary format, for consumers that want magnitude data without the
// JSON/WebSocket overhead.
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "spectro/internal/log"
)

// Sender owns the UDP connection to a single target address.
type Sender struct {
	conn   *net.UDPConn
	mu     sync.Mutex
	closed bool
}

// NewSender dials the target address, e.g. "127.0.0.1:9090".
func NewSender(target string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("resolving UDP target %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dialing UDP target %q: %w", target, err)
	}
	applog.Infof("udp: sending to %s", conn.RemoteAddr())
	return &Sender{conn: conn}, nil
}

// Send transmits one packet. Safe for concurrent use.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("udp sender is closed")
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("sending UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
