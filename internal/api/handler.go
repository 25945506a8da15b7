package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"terminal-voice-backend/internal/hub"
	"terminal-voice-backend/internal/relay"
	"terminal-voice-backend/internal/store"
)

// Deps are the collaborators the HTTP surface is built on. Store and WebPush
// may be nil; the endpoints that need them then answer 503.
type Deps struct {
	Service      *relay.Service
	Viewers      *hub.Hub
	Store        store.Store
	WebPush      *webpush.Options
	Log          *zap.SugaredLogger
	WriteTimeout time.Duration
	Now          func() time.Time
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc          *relay.Service
	viewers      *hub.Hub
	store        store.Store
	webpush      *webpush.Options
	log          *zap.SugaredLogger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{
		svc:     d.Service,
		viewers: d.Viewers,
		store:   d.Store,
		webpush: d.WebPush,
		log:     d.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: d.WriteTimeout,
		now:          d.Now,
	}
}
