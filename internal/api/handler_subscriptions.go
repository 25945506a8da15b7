package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"terminal-voice-backend/internal/errs"
	"terminal-voice-backend/internal/model"
	"terminal-voice-backend/internal/parse"
	"terminal-voice-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint         string   `json:"endpoint" binding:"required"`
	P256DH           string   `json:"p256dh" binding:"required"`
	Auth             string   `json:"auth" binding:"required"`
	ContainerNumbers []string `json:"containerNumbers"`
}

// PutSubscription creates or replaces an operator's push subscription.
// An empty containerNumbers list subscribes to every container.
func (h *Handler) PutSubscription(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "subscription store is not configured"})
		return
	}

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errs.Validation("invalid request body: %v", err))
		return
	}

	numbers := make([]string, 0, len(req.ContainerNumbers))
	for _, raw := range req.ContainerNumbers {
		n, err := parse.ParseContainerNumber(raw)
		if err != nil {
			h.fail(c, errs.Validation("containerNumber %q is not valid, expected format ABCD1234567", raw))
			return
		}
		numbers = append(numbers, n.String())
	}

	sub := model.PushSubscription{
		Endpoint:         req.Endpoint,
		P256DH:           req.P256DH,
		Auth:             req.Auth,
		CreatedAt:        h.now(),
		ContainerNumbers: numbers,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &sub); err != nil {
		h.fail(c, errs.Internal(err, "save subscription"))
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "subscription store is not configured"})
		return
	}

	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errs.Validation("invalid request body: %v", err))
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.fail(c, errs.Internal(err, "delete subscription"))
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam returns the undecoded value of key. Push endpoints are URLs
// and the browser sends them verbatim.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the container filter of a subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "subscription store is not configured"})
		return
	}

	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		h.fail(c, errs.Validation("endpoint is required"))
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), raw)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(c, errs.NotFound("subscription not found"))
		return
	}
	if err != nil {
		h.fail(c, errs.Internal(err, "load subscription"))
		return
	}

	numbers := sub.ContainerNumbers
	if numbers == nil {
		numbers = []string{}
	}
	h.data(c, gin.H{"endpoint": sub.Endpoint, "containerNumbers": numbers})
}
