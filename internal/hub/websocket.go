package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketConn adapts a gorilla connection to Conn. Only the session writer
// calls WriteMessage, which keeps to gorilla's one-writer rule.
type WebsocketConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
}

func NewWebsocketConn(ws *websocket.Conn, writeTimeout time.Duration) *WebsocketConn {
	return &WebsocketConn{ws: ws, writeTimeout: writeTimeout}
}

func (c *WebsocketConn) WriteMessage(data []byte) error {
	if c.writeTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *WebsocketConn) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.ws.Close()
}

// DrainReads discards inbound messages until the peer goes away. Viewers
// never send anything meaningful; the read loop exists to notice closes.
func DrainReads(ws *websocket.Conn) {
	for {
		if _, _, err := ws.NextReader(); err != nil {
			return
		}
	}
}
