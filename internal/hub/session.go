package hub

import (
	"sync"
	"time"
)

type session struct {
	id          string
	connectedAt time.Time
	conn        Conn
	queue       chan []byte

	done     chan struct{}
	stopOnce sync.Once
}

func (s *session) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *session) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
