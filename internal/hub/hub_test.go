package hub

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConn records frames. When failAfter is positive, writes beyond that
// count fail.
type fakeConn struct {
	mu        sync.Mutex
	frames    []string
	failAfter int
	block     chan struct{}
	closed    bool
}

func (c *fakeConn) WriteMessage(data []byte) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAfter > 0 && len(c.frames) >= c.failAfter {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, string(data))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.frames...)
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestHub(queue int) *Hub {
	return New(zap.NewNop().Sugar(), queue)
}

func TestHub_BroadcastReachesEverySessionInOrder(t *testing.T) {
	h := newTestHub(128)
	defer h.Close()

	a, b := &fakeConn{}, &fakeConn{}
	_, err := h.Register(a)
	require.NoError(t, err)
	_, err = h.Register(b, []byte("snapshot"))
	require.NoError(t, err)

	var want []string
	for i := 0; i < 50; i++ {
		frame := fmt.Sprintf("event-%d", i)
		want = append(want, frame)
		assert.Equal(t, 2, h.Broadcast([]byte(frame)))
	}

	assert.Eventually(t, func() bool { return len(a.Frames()) == 50 && len(b.Frames()) == 51 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, a.Frames())
	assert.Equal(t, append([]string{"snapshot"}, want...), b.Frames())
}

func TestHub_ConcurrentBroadcastKeepsSameOrderPerSession(t *testing.T) {
	h := newTestHub(1024)
	defer h.Close()

	a, b := &fakeConn{}, &fakeConn{}
	_, _ = h.Register(a)
	_, _ = h.Register(b)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Broadcast([]byte(fmt.Sprintf("%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return len(a.Frames()) == 400 && len(b.Frames()) == 400 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, a.Frames(), b.Frames())
}

func TestHub_FailedWriteRemovesOnlyThatSession(t *testing.T) {
	h := newTestHub(16)
	defer h.Close()

	healthy := &fakeConn{}
	broken := &fakeConn{failAfter: 1}
	_, _ = h.Register(healthy)
	_, _ = h.Register(broken)

	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))

	assert.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, broken.Closed, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("three"))
	assert.Eventually(t, func() bool { return len(healthy.Frames()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one"}, broken.Frames())
}

func TestHub_FullQueueDropsSlowSession(t *testing.T) {
	h := newTestHub(2)
	defer h.Close()

	slow := &fakeConn{block: make(chan struct{})}
	fast := &fakeConn{}
	_, _ = h.Register(slow)
	_, _ = h.Register(fast)

	// The slow writer holds one frame in WriteMessage and two in its queue.
	h.Broadcast([]byte("1"))
	assert.Eventually(t, func() bool { return len(fast.Frames()) == 1 }, time.Second, 5*time.Millisecond)
	h.Broadcast([]byte("2"))
	h.Broadcast([]byte("3"))
	assert.Eventually(t, func() bool { return len(fast.Frames()) == 3 }, time.Second, 5*time.Millisecond)

	delivered := h.Broadcast([]byte("4"))
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, h.Len())

	close(slow.block)
	assert.Eventually(t, slow.Closed, time.Second, 5*time.Millisecond)
	assert.NotContains(t, slow.Frames(), "4")
}

func TestHub_UnregisterAndClose(t *testing.T) {
	h := newTestHub(4)

	c := &fakeConn{}
	id, err := h.Register(c)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())

	h.Unregister(id)
	h.Unregister(id)
	assert.Equal(t, 0, h.Len())
	assert.Eventually(t, c.Closed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.Broadcast([]byte("x")))

	other := &fakeConn{}
	_, _ = h.Register(other)
	h.Close()
	assert.True(t, other.Closed())

	_, err = h.Register(&fakeConn{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWebsocketConn_DeliversTextFrames(t *testing.T) {
	h := newTestHub(8)
	defer h.Close()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id, err := h.Register(NewWebsocketConn(ws, time.Second), []byte(`{"type":"snapshot"}`))
		if err != nil {
			return
		}
		close(registered)
		DrainReads(ws)
		h.Unregister(id)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	<-registered
	h.Broadcast([]byte(`{"type":"containerUpdated"}`))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, first, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"snapshot"}`, string(first))
	_, second, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"containerUpdated"}`, string(second))

	client.Close()
	assert.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
