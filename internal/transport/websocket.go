// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "spectro/internal/log"
	"spectro/internal/spectral"
)

// WebSocketSink serves completed intervals as JSON over a WebSocket
// endpoint at /ws. Clients connect and receive every spectrum emitted
// after they join; slow clients are dropped rather than allowed to
// stall the broadcast.
type WebSocketSink struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan *spectral.Spectrum
	done      chan struct{}
	closeOnce sync.Once
	server    *http.Server
}

var _ spectral.Sink = (*WebSocketSink)(nil)

// NewWebSocketSink starts an HTTP server on addr (e.g. ":8080") and
// begins accepting WebSocket clients immediately.
func NewWebSocketSink(addr string) *WebSocketSink {
	ws := &WebSocketSink{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan *spectral.Spectrum, 256),
		done:      make(chan struct{}),
	}
	ws.start()
	return ws
}

func (ws *WebSocketSink) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.handleWebSocket)
	ws.server = &http.Server{Addr: ws.addr, Handler: mux}

	go func() {
		applog.Infof("transport: WebSocket server listening on %s", ws.addr)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: WebSocket server error: %v", err)
		}
	}()
	go ws.handleBroadcasts()
}

func (ws *WebSocketSink) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("transport: WebSocket upgrade error: %v", err)
		return
	}

	ws.clientsMu.Lock()
	ws.clients[conn] = true
	total := len(ws.clients)
	ws.clientsMu.Unlock()
	applog.Infof("transport: WebSocket client connected, total: %d", total)

	go func() {
		// Block until the client goes away.
		if _, _, err := conn.ReadMessage(); err != nil {
			ws.clientsMu.Lock()
			delete(ws.clients, conn)
			total := len(ws.clients)
			ws.clientsMu.Unlock()
			conn.Close()
			applog.Infof("transport: WebSocket client disconnected, total: %d", total)
		}
	}()
}

func (ws *WebSocketSink) handleBroadcasts() {
	for {
		select {
		case <-ws.done:
			return
		case s := <-ws.broadcast:
			ws.clientsMu.Lock()
			for client := range ws.clients {
				if err := client.WriteJSON(s); err != nil {
					applog.Warnf("transport: dropping WebSocket client: %v", err)
					client.Close()
					delete(ws.clients, client)
				}
			}
			ws.clientsMu.Unlock()
		}
	}
}

// Emit queues the spectrum for broadcast. When the queue is full the
// spectrum is dropped; analysis must never stall on a slow consumer.
func (ws *WebSocketSink) Emit(s *spectral.Spectrum) error {
	select {
	case ws.broadcast <- s:
	default:
	}
	return nil
}

// Close disconnects all clients, stops the broadcast loop, and shuts
// the server down. Safe to call more than once.
func (ws *WebSocketSink) Close() error {
	ws.closeOnce.Do(func() { close(ws.done) })

	ws.clientsMu.Lock()
	for client := range ws.clients {
		client.Close()
	}
	ws.clients = make(map[*websocket.Conn]bool)
	ws.clientsMu.Unlock()

	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}
