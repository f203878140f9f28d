package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skycycle/internal/environment"
)

// FrameMessage is the websocket payload for one engine frame.
type FrameMessage struct {
	Type  string            `json:"type"`
	Tick  uint64            `json:"tick"`
	Frame environment.Frame `json:"frame"`
}

// frameHub fans frames out to websocket subscribers. Publishing never
// blocks: a frame is dropped for any subscriber whose buffer is full.
type frameHub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newFrameHub(logger *log.Logger) *frameHub {
	return &frameHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[uint64]chan []byte),
		done: make(chan struct{}),
	}
}

// close ends every stream. Hijacked connections are not closed by
// http.Server.Shutdown, so the hub does it.
func (h *frameHub) close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *frameHub) subscribe() (uint64, chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan []byte, 8)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *frameHub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *frameHub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *frameHub) publish(tick uint64, f environment.Frame) {
	b, err := json.Marshal(FrameMessage{Type: "frame", Tick: tick, Frame: f})
	if err != nil {
		h.logger.Printf("encode frame %d: %v", tick, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- b:
		default:
		}
	}
}

// serve upgrades the request and streams frames until the client goes away.
// current, when non-nil, is written before any published frame.
func (h *frameHub) serve(w http.ResponseWriter, r *http.Request, current []byte) {
	id, out := h.subscribe()
	defer h.unsubscribe(id)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if current != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, current); err != nil {
			return
		}
	}

	for {
		select {
		case <-gone:
			return
		case <-h.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second))
			return
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
