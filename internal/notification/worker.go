package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/metrics"
	"terminal-voice-backend/internal/model"
	"terminal-voice-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Notice is the payload delivered to an operator's browser.
type Notice struct {
	Title           string `json:"title"`
	Body            string `json:"body"`
	ContainerNumber string `json:"containerNumber"`
	Type            string `json:"type"`
}

// WorkerPool sends operator notifications for relayed events.
type WorkerPool struct {
	size    int
	jobs    chan Notice
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.SugaredLogger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, log *zap.SugaredLogger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Notice, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debugw("Notification worker started", "worker", id)
	for {
		select {
		case n := <-wp.jobs:
			wp.sendNotificationsForContainer(ctx, n)
		case <-ctx.Done():
			wp.log.Debugw("Notification worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues a notice, waiting for a free slot or ctx.
func (wp *WorkerPool) Dispatch(ctx context.Context, n Notice) error {
	select {
	case wp.jobs <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *WorkerPool) Name() string { return "webpush" }

// Observe turns operator-relevant events into notices. Lookups are ignored.
func (wp *WorkerPool) Observe(ctx context.Context, ev event.Event) error {
	var b noticeBuilder
	if err := event.Dispatch(ev, &b); err != nil {
		return err
	}
	if b.notice == nil {
		return nil
	}
	b.notice.Type = string(ev.Kind())
	return wp.Dispatch(ctx, *b.notice)
}

// sendNotificationsForContainer fetches subscriptions and sends the notice to each.
func (wp *WorkerPool) sendNotificationsForContainer(ctx context.Context, n Notice) {
	subscriptions, err := wp.store.SubscriptionsFor(ctx, n.ContainerNumber)
	if err != nil {
		wp.log.Errorw("Error fetching subscriptions", "containerNumber", n.ContainerNumber, "error", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		wp.log.Errorw("Error encoding notice", "error", err)
		return
	}

	wp.log.Infow("Sending notifications", "count", len(subscriptions), "containerNumber", n.ContainerNumber)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		metrics.PushNotifications.WithLabelValues("error").Inc()
		wp.log.Warnw("Error sending notification", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		metrics.PushNotifications.WithLabelValues("expired").Inc()
		wp.log.Infow("Subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Errorw("Failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
		return
	}
	metrics.PushNotifications.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
}

type noticeBuilder struct {
	notice *Notice
}

func (b *noticeBuilder) VisitContainerQueried(event.ContainerQueried) error { return nil }
func (b *noticeBuilder) VisitVesselQueried(event.VesselQueried) error { return nil }

func (b *noticeBuilder) VisitContainerUpdated(e event.ContainerUpdated) error {
	b.notice = &Notice{
		Title:           "Container " + e.ContainerNumber,
		Body:            fmt.Sprintf("Status changed from %s to %s", e.OldStatus, e.NewStatus),
		ContainerNumber: e.ContainerNumber,
	}
	return nil
}

func (b *noticeBuilder) VisitGatepassGenerated(e event.GatepassGenerated) error {
	b.notice = &Notice{
		Title:           "eGatepass " + e.Gatepass.ID,
		Body:            fmt.Sprintf("Issued to %s (%s) for %s", e.Gatepass.HaulierCompany, e.Gatepass.TruckNumber, e.ContainerNumber),
		ContainerNumber: e.ContainerNumber,
	}
	return nil
}

func (b *noticeBuilder) VisitSSRSubmitted(e event.SSRSubmitted) error {
	b.notice = &Notice{
		Title:           "SSR " + e.SSR.ID,
		Body:            fmt.Sprintf("%s requested for %s", e.SSR.SSRType, e.ContainerNumber),
		ContainerNumber: e.ContainerNumber,
	}
	return nil
}

func (b *noticeBuilder) VisitSSRUpdated(e event.SSRUpdated) error {
	b.notice = &Notice{
		Title:           "SSR " + e.SSRID,
		Body:            fmt.Sprintf("Now %s", e.NewStatus),
		ContainerNumber: e.ContainerNumber,
	}
	return nil
}
