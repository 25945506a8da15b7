package api

import (
	"github.com/gin-gonic/gin"

	"terminal-voice-backend/internal/errs"
	"terminal-voice-backend/internal/relay"
)

// invoke binds the JSON body into Req and runs one tool call.
func invoke[Req any](h *Handler, c *gin.Context, call func(Req) (relay.Result, error)) {
	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errs.Validation("invalid request body: %v", err))
		return
	}
	res, err := call(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.result(c, res)
}

// GetContainerStatus handles POST /api/containers/status.
func (h *Handler) GetContainerStatus(c *gin.Context) {
	invoke(h, c, h.svc.GetContainerStatus)
}

// UpdateContainerStatus handles POST /api/containers/update.
func (h *Handler) UpdateContainerStatus(c *gin.Context) {
	invoke(h, c, h.svc.UpdateContainerStatus)
}

// GenerateGatepass handles POST /api/gatepass/generate.
func (h *Handler) GenerateGatepass(c *gin.Context) {
	invoke(h, c, h.svc.GenerateGatepass)
}

// CheckVesselSchedule handles POST /api/vessels/schedule.
func (h *Handler) CheckVesselSchedule(c *gin.Context) {
	invoke(h, c, h.svc.CheckVesselSchedule)
}

// SubmitSSR handles POST /api/ssr/submit.
func (h *Handler) SubmitSSR(c *gin.Context) {
	invoke(h, c, h.svc.SubmitSSR)
}

// UpdateSSRStatus handles POST /api/ssr/status.
func (h *Handler) UpdateSSRStatus(c *gin.Context) {
	invoke(h, c, h.svc.UpdateSSRStatus)
}
