package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"terminal-voice-backend/internal/errs"
	"terminal-voice-backend/internal/hub"
)

const maxEventLimit = 500

// GetDashboard returns the projection and recent activity.
func (h *Handler) GetDashboard(c *gin.Context) {
	h.data(c, h.svc.Dashboard())
}

// GetVessels lists vessel calls.
func (h *Handler) GetVessels(c *gin.Context) {
	h.data(c, h.svc.Vessels())
}

type journalEntry struct {
	ID              uint64          `json:"id"`
	Kind            string          `json:"kind"`
	ContainerNumber string          `json:"containerNumber,omitempty"`
	OccurredAt      time.Time       `json:"occurredAt"`
	Event           json.RawMessage `json:"event"`
}

// GetEvents returns the newest journaled events.
func (h *Handler) GetEvents(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event journal is not configured"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventLimit {
			h.fail(c, errs.Validation("limit must be between 1 and %d", maxEventLimit))
			return
		}
		limit = n
	}

	records, err := h.store.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, errs.Internal(err, "read event journal"))
		return
	}

	out := make([]journalEntry, len(records))
	for i, r := range records {
		out[i] = journalEntry{
			ID:              r.ID,
			Kind:            r.Kind,
			ContainerNumber: r.ContainerNumber,
			OccurredAt:      r.OccurredAt,
			Event:           json.RawMessage(r.Payload),
		}
	}
	h.data(c, out)
}

// Health reports liveness and the number of connected viewers.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.now(),
		"viewers":   h.viewers.Len(),
	})
}

// ServeWS upgrades to a dashboard push channel. With ?snapshot=1 the first
// frame is the dashboard as of the moment the viewer joined.
func (h *Handler) ServeWS(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	withSnapshot, _ := strconv.ParseBool(c.DefaultQuery("snapshot", "false"))
	id, err := h.svc.Subscribe(hub.NewWebsocketConn(ws, h.writeTimeout), withSnapshot)
	if err != nil {
		h.log.Warnw("Viewer rejected", "error", err)
		_ = ws.Close()
		return
	}

	hub.DrainReads(ws)
	h.viewers.Unregister(id)
}
