// Package stream broadcasts density frames to websocket viewers.
package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = time.Second

// DensitySource is the read-only view a frame is encoded from.
type DensitySource interface {
	Width() int
	Height() int
	Density(x, y int) float64
}

// EncodeFrame packs the density field into a binary frame: uint16 width,
// uint16 height (little-endian), then width*height bytes in x-major order,
// each density clamped to [0, 1] and scaled to 0..255.
func EncodeFrame(src DensitySource) []byte {
	w, h := src.Width(), src.Height()
	buf := make([]byte, 4+w*h)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(w))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h))

	i := 4
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			d := src.Density(x, y)
			switch {
			case !(d > 0):
				buf[i] = 0
			case d >= 1:
				buf[i] = 255
			default:
				buf[i] = uint8(d*255 + 0.5)
			}
			i++
		}
	}
	return buf
}

// DecodeHeader returns the dimensions stored in a frame.
func DecodeHeader(frame []byte) (w, h int, err error) {
	if len(frame) < 4 {
		return 0, 0, errors.New("stream: frame shorter than header")
	}
	w = int(binary.LittleEndian.Uint16(frame[0:2]))
	h = int(binary.LittleEndian.Uint16(frame[2:4]))
	if len(frame) != 4+w*h {
		return w, h, fmt.Errorf("stream: frame is %d bytes, want %d for %dx%d", len(frame), 4+w*h, w, h)
	}
	return w, h, nil
}

// Frames queued per client before new frames are dropped for it.
const sendBuffer = 4

// client is one viewer. Frames go through send to a dedicated writer
// goroutine so a slow viewer never blocks the broadcaster.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket clients and fans frames out to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	dropped atomic.Int64
}

// NewHub creates an empty hub that accepts connections from any origin.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. Incoming messages are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("viewer connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	defer h.remove(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop sends queued frames until the client is removed or a write
// fails.
func (h *Hub) writeLoop(c *client) {
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			slog.Warn("dropping viewer", "remote", c.conn.RemoteAddr().String(), "error", err)
			h.remove(c)
			return
		}
	}
}

// Broadcast queues frame for every client without blocking. A client whose
// queue is full skips this frame. Returns the number of clients the frame
// was queued for. frame must not be modified afterwards.
func (h *Hub) Broadcast(frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	queued := 0
	for c := range h.clients {
		select {
		case c.send <- frame:
			queued++
		default:
			h.dropped.Add(1)
		}
	}
	return queued
}

// Dropped returns how many per-client frames were skipped because the
// client's queue was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.drop(c)
	}
}

// drop unregisters c. Callers hold h.mu for writing, so no Broadcast can
// be sending on c.send while it closes.
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

// Serve exposes the hub at /ws on addr until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	slog.Info("stream listening", "addr", addr)

	select {
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("stream server: %w", err)
	}
}
