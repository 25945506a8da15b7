// Package hub fans dashboard frames out to live viewer sessions.
//
// Each session owns a bounded queue drained by a single writer goroutine, so
// frames reach a viewer in the order they were broadcast. A session whose
// write fails or whose queue is full is dropped; other sessions never wait on
// it.
package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"terminal-voice-backend/internal/metrics"
)

// DefaultQueueSize is the per-session queue length used when none is given.
const DefaultQueueSize = 64

// ErrClosed is returned by Register once the hub has been closed.
var ErrClosed = errors.New("hub closed")

// Conn is the write side of a viewer connection.
type Conn interface {
	WriteMessage(data []byte) error
	Close() error
}

// Hub tracks live sessions. It is safe for concurrent use.
type Hub struct {
	log       *zap.SugaredLogger
	queueSize int

	// publishMu serializes Broadcast so concurrent callers cannot interleave
	// frames differently across sessions.
	publishMu sync.Mutex

	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool

	wg sync.WaitGroup
}

// New creates a hub whose sessions buffer at most queueSize frames.
func New(log *zap.SugaredLogger, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		log:       log,
		queueSize: queueSize,
		sessions:  make(map[string]*session),
	}
}

// Register adds conn to the live set and starts its writer. The initial
// frames are queued ahead of anything broadcast afterwards.
func (h *Hub) Register(conn Conn, initial ...[]byte) (string, error) {
	size := h.queueSize
	if len(initial) > size {
		size = len(initial)
	}
	s := &session{
		id:          uuid.NewString(),
		connectedAt: time.Now().UTC(),
		conn:        conn,
		queue:       make(chan []byte, size),
		done:        make(chan struct{}),
	}
	for _, frame := range initial {
		s.queue <- frame
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return "", ErrClosed
	}
	h.sessions[s.id] = s
	n := len(h.sessions)
	h.wg.Add(1)
	h.mu.Unlock()

	metrics.Viewers.Set(float64(n))
	h.log.Infow("Viewer connected", "session", s.id, "viewers", n)

	go h.writeLoop(s)
	return s.id, nil
}

// Unregister removes a session, typically after its peer disconnected.
func (h *Hub) Unregister(id string) {
	if h.remove(id) {
		h.log.Infow("Viewer disconnected", "session", id)
	}
}

// Broadcast queues frame on every live session without blocking and returns
// how many sessions accepted it. Sessions with a full queue are dropped.
func (h *Hub) Broadcast(frame []byte) int {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	var overflow []string
	delivered := 0

	h.mu.RLock()
	for id, s := range h.sessions {
		select {
		case s.queue <- frame:
			delivered++
		default:
			overflow = append(overflow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range overflow {
		if h.remove(id) {
			metrics.SessionsPruned.WithLabelValues("overflow").Inc()
			h.log.Warnw("Dropping slow viewer", "session", id, "queue", h.queueSize)
		}
	}
	return delivered
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close drops every session and waits for their writers to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.remove(id)
	}
	h.wg.Wait()
}

// remove deletes the session and signals its writer. It reports whether the
// session was still live.
func (h *Hub) remove(id string) bool {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	n := len(h.sessions)
	h.mu.Unlock()

	if !ok {
		return false
	}
	s.stop()
	metrics.Viewers.Set(float64(n))
	return true
}

func (h *Hub) writeLoop(s *session) {
	defer h.wg.Done()
	defer s.conn.Close()

	for {
		select {
		case <-s.done:
			return
		case frame := <-s.queue:
			if s.stopped() {
				return
			}
			if err := s.conn.WriteMessage(frame); err != nil {
				if h.remove(s.id) {
					metrics.SessionsPruned.WithLabelValues("write_failed").Inc()
					h.log.Warnw("Viewer push failed, session removed", "session", s.id, "error", err)
				}
				return
			}
		}
	}
}
