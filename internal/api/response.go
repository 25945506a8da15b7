package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"terminal-voice-backend/internal/errs"
	"terminal-voice-backend/internal/relay"
)

type envelope struct {
	Success      bool       `json:"success"`
	Data         any        `json:"data,omitempty"`
	Message      string     `json:"message,omitempty"`
	SystemSource string     `json:"systemSource,omitempty"`
	Error        *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.CodeValidation:
		return http.StatusBadRequest
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodePrecondition:
		return http.StatusPreconditionFailed
	case errs.CodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) result(c *gin.Context, res relay.Result) {
	c.JSON(http.StatusOK, envelope{
		Success:      true,
		Data:         res.Data,
		Message:      res.Message,
		SystemSource: res.SystemSource,
	})
}

func (h *Handler) data(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// fail writes the error envelope. Internal causes are logged, not echoed.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	body := &errorBody{Code: errs.CodeOf(err), Message: "Internal server error"}
	var e *errs.Error
	if errors.As(err, &e) && e.Code != errs.CodeInternal {
		body.Message = e.Message
		body.Details = e.Details
	}

	status := statusFor(body.Code)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("Request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: body})
}
