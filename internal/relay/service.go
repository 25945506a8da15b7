// Package relay executes voice-agent tool calls against the projection and
// relays the resulting events to dashboard viewers and observers.
//
// Every mutating call holds one write lock from lookup to broadcast, so a
// reader never sees a projection change without its activity entry and a new
// viewer's initial snapshot sits cleanly on one side of every event.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"terminal-voice-backend/internal/activity"
	"terminal-voice-backend/internal/errs"
	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/hub"
	"terminal-voice-backend/internal/metrics"
	"terminal-voice-backend/internal/model"
	"terminal-voice-backend/internal/projection"
)

const (
	DefaultGatepassValidity = 48 * time.Hour
	DefaultAgentName        = "VOICE_AGENT"
	DefaultFanoutBuffer     = 256

	expectedProcessingTime = "24-48 hours"
	gatepassTimeLayout     = "2006-01-02 15:04:05"
)

// Broadcaster is the viewer side of the relay. *hub.Hub implements it.
type Broadcaster interface {
	Register(conn hub.Conn, initial ...[]byte) (string, error)
	Broadcast(frame []byte) int
}

// Observer receives every committed event after the tool call has returned.
// Observers are called one at a time in emission order; their errors are
// logged and never reach the caller.
type Observer interface {
	Name() string
	Observe(ctx context.Context, ev event.Event) error
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	GatepassValidity time.Duration
	AgentName        string
	FanoutBuffer     int

	Now   func() time.Time
	NewID func() string
}

// Result is what a tool call hands back to the voice agent.
type Result struct {
	Data         any    `json:"data"`
	Message      string `json:"message"`
	SystemSource string `json:"systemSource"`
}

// Dashboard is the state a viewer paints on connect.
type Dashboard struct {
	projection.Snapshot
	RecentActivity []activity.Entry `json:"recentActivity"`
}

// Service is the single mutation point for the projection and activity log.
type Service struct {
	mu       sync.RWMutex
	store    *projection.Store
	activity *activity.Log
	viewers  Broadcaster

	log       *zap.SugaredLogger
	opts      Options
	observers []Observer
	fanout    chan event.Event
}

func NewService(store *projection.Store, activityLog *activity.Log, viewers Broadcaster, log *zap.SugaredLogger, opts Options, observers ...Observer) *Service {
	if opts.GatepassValidity <= 0 {
		opts.GatepassValidity = DefaultGatepassValidity
	}
	if opts.AgentName == "" {
		opts.AgentName = DefaultAgentName
	}
	if opts.FanoutBuffer <= 0 {
		opts.FanoutBuffer = DefaultFanoutBuffer
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = shortID
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		store:     store,
		activity:  activityLog,
		viewers:   viewers,
		log:       log,
		opts:      opts,
		observers: observers,
		fanout:    make(chan event.Event, opts.FanoutBuffer),
	}
}

// shortID returns the first eight hex digits of a random UUID, upper-cased.
func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Run delivers committed events to the observers until ctx is done.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.fanout:
			for _, o := range s.observers {
				if err := o.Observe(ctx, ev); err != nil {
					metrics.ObserverErrors.WithLabelValues(o.Name()).Inc()
					s.log.Errorw("Observer failed", "observer", o.Name(), "type", ev.Kind(), "error", err)
				}
			}
		}
	}
}

// commit applies ev to the projection, records its activity entry and
// broadcasts it. The caller must hold s.mu for writing. Encoding and
// description happen first so a failure leaves nothing half applied.
func (s *Service) commit(ev event.Event) error {
	frame, err := event.Encode(ev)
	if err != nil {
		return errs.Internal(err, "encode %s event", ev.Kind())
	}
	entry, err := activity.Describe(ev)
	if err != nil {
		return errs.Internal(err, "describe %s event", ev.Kind())
	}
	if err := s.store.Apply(ev); err != nil {
		return errs.Internal(err, "apply %s event", ev.Kind())
	}
	s.activity.Append(entry)

	s.viewers.Broadcast(frame)
	metrics.EventsBroadcast.WithLabelValues(string(ev.Kind())).Inc()

	if len(s.observers) > 0 {
		select {
		case s.fanout <- ev:
		default:
			metrics.ObserverDropped.Inc()
			s.log.Warnw("Observer queue full, event dropped", "type", ev.Kind())
		}
	}
	return nil
}

// track logs and counts one tool call.
func (s *Service) track(tool string, start time.Time, err error) {
	code := "ok"
	if err != nil {
		code = string(errs.CodeOf(err))
	}
	metrics.ToolCalls.WithLabelValues(tool, code).Inc()
	metrics.ToolCallDuration.WithLabelValues(tool).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Warnw("Tool call failed", "tool", tool, "code", code, "error", err)
		return
	}
	s.log.Infow("Tool call", "tool", tool, "duration", time.Since(start))
}

// GetContainerStatus looks a container up and announces the query.
func (s *Service) GetContainerStatus(req ContainerStatusRequest) (res Result, err error) {
	defer func(start time.Time) { s.track("getContainerStatus", start, err) }(time.Now())

	number, err := containerNumber(req.ContainerNumber)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.store.Container(number)
	if !ok {
		return Result{}, errs.NotFound("Container %s not found in our ETP/OPUS system. Please verify the container number format (ABCD1234567).", number)
	}
	ev := event.ContainerQueried{ContainerNumber: number, Container: c, Timestamp: s.opts.Now()}
	if err := s.commit(ev); err != nil {
		return Result{}, err
	}
	return Result{
		Data:         c,
		Message:      fmt.Sprintf("Container %s found successfully in ETP system", number),
		SystemSource: "ETP/OPUS",
	}, nil
}

// UpdateContainerStatus moves a container to a new yard status.
func (s *Service) UpdateContainerStatus(req ContainerUpdateRequest) (res Result, err error) {
	defer func(start time.Time) { s.track("updateContainerStatus", start, err) }(time.Now())

	number, err := containerNumber(req.ContainerNumber)
	if err != nil {
		return Result{}, err
	}
	status, err := containerStatus(req.NewStatus)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.store.Container(number)
	if !ok {
		return Result{}, errs.NotFound("Container %s not found in our system", number)
	}

	now := s.opts.Now()
	old := c.Status
	c.Status = status
	c.LastUpdated = now
	c.AvailableForPickup = status.PickupEligible()
	if loc := strings.TrimSpace(req.Location); loc != "" {
		c.Location = loc
	}
	if status == model.StatusGatedOut {
		out := now
		c.GateOutTime = &out
		c.AvailableForPickup = false
	}

	ev := event.ContainerUpdated{ContainerNumber: number, OldStatus: old, NewStatus: status, Container: c, Timestamp: now}
	if err := s.commit(ev); err != nil {
		return Result{}, err
	}
	return Result{
		Data:         c,
		Message:      fmt.Sprintf("Container %s successfully updated from %s to %s in OPUS system", number, old, status),
		SystemSource: "OPUS/ETP",
	}, nil
}

// GenerateGatepass issues a gatepass when every release rule is met.
func (s *Service) GenerateGatepass(req GatepassRequest) (res Result, err error) {
	defer func(start time.Time) { s.track("generateGatepass", start, err) }(time.Now())

	number, err := containerNumber(req.ContainerNumber)
	if err != nil {
		return Result{}, err
	}
	haulier, err := required("haulierCompany", req.HaulierCompany)
	if err != nil {
		return Result{}, err
	}
	truck, err := required("truckNumber", req.TruckNumber)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.store.Container(number)
	if !ok {
		return Result{}, errs.NotFound("Container %s not found in ETP system", number)
	}

	now := s.opts.Now()
	if failed := s.gatepassBlockers(c, now); len(failed) > 0 {
		return Result{}, errs.Precondition("Cannot generate eGatepass: "+strings.Join(failed, ", "), failed...)
	}

	gp := model.Gatepass{
		ID:              "GP" + s.opts.NewID(),
		ContainerNumber: number,
		HaulierCompany:  haulier,
		TruckNumber:     strings.ToUpper(truck),
		GeneratedAt:     now,
		ValidUntil:      now.Add(s.opts.GatepassValidity),
		Status:          model.GatepassActive,
		GeneratedBy:     s.opts.AgentName,
		Charges:         c.Charges,
		Currency:        c.Currency,
		ContainerDetails: model.GatepassContainerDetails{
			Type:     c.ContainerType,
			Size:     c.Size,
			Weight:   c.Weight,
			Location: c.Location,
		},
	}

	ev := event.GatepassGenerated{ContainerNumber: number, Gatepass: gp, Timestamp: now}
	if err := s.commit(ev); err != nil {
		return Result{}, err
	}
	return Result{
		Data:         gp,
		Message:      fmt.Sprintf("eGatepass %s generated successfully for container %s. Valid until %s", gp.ID, number, gp.ValidUntil.Format(gatepassTimeLayout)),
		SystemSource: "ETP",
	}, nil
}

// gatepassBlockers lists every release rule c fails at now.
func (s *Service) gatepassBlockers(c model.Container, now time.Time) []string {
	var failed []string
	if c.EDOStatus != model.EDOReleased {
		failed = append(failed, "EDO not released by shipping agent")
	}
	if c.CustomsStatus != model.CustomsCleared {
		failed = append(failed, "Customs clearance pending")
	}
	if !c.AvailableForPickup {
		failed = append(failed, fmt.Sprintf("Container status %s not eligible for pickup", c.Status))
	}
	if c.ActiveGatepass != nil {
		if gp, ok := s.store.Gatepass(*c.ActiveGatepass); ok && !gp.Expired(now) {
			failed = append(failed, fmt.Sprintf("Gatepass %s already active until %s", gp.ID, gp.ValidUntil.Format(gatepassTimeLayout)))
		}
	}
	return failed
}

// CheckVesselSchedule looks a vessel call up by name or voyage.
func (s *Service) CheckVesselSchedule(req VesselScheduleRequest) (res Result, err error) {
	defer func(start time.Time) { s.track("checkVesselSchedule", start, err) }(time.Now())

	name, voyage := strings.TrimSpace(req.VesselName), strings.TrimSpace(req.VoyageNumber)
	if name == "" && voyage == "" {
		return Result{}, errs.Validation("vesselName or voyageNumber is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.store.FindVessel(name, voyage)
	if !ok {
		return Result{}, errs.NotFound("Vessel not found in CBAS system. Please check vessel name or voyage number.")
	}
	ev := event.VesselQueried{VesselName: v.VesselName, Vessel: v, Timestamp: s.opts.Now()}
	if err := s.commit(ev); err != nil {
		return Result{}, err
	}
	return Result{
		Data:         v,
		Message:      "Vessel schedule information retrieved from CBAS system",
		SystemSource: "CBAS",
	}, nil
}

// SubmitSSR files a special service request for a container.
func (s *Service) SubmitSSR(req SSRRequest) (res Result, err error) {
	defer func(start time.Time) { s.track("submitSSR", start, err) }(time.Now())

	number, err := containerNumber(req.ContainerNumber)
	if err != nil {
		return Result{}, err
	}
	typ, err := ssrType(req.SSRType)
	if err != nil {
		return Result{}, err
	}
	details, err := required("requestDetails", req.RequestDetails)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Container(number); !ok {
		return Result{}, errs.NotFound("Container %s not found in ETP system", number)
	}

	now := s.opts.Now()
	ssr := model.SSR{
		ID:                     "SSR" + s.opts.NewID(),
		ContainerNumber:        number,
		SSRType:                typ,
		RequestDetails:         details,
		Status:                 model.SSRSubmitted,
		SubmittedAt:            now,
		SubmittedBy:            s.opts.AgentName,
		ExpectedProcessingTime: expectedProcessingTime,
	}
	ev := event.SSRSubmitted{ContainerNumber: number, SSR: ssr, Timestamp: now}
	if err := s.commit(ev); err != nil {
		return Result{}, err
	}
	return Result{
		Data:         ssr,
		Message:      fmt.Sprintf("SSR %s submitted successfully for %s. Expected processing time: %s", ssr.ID, typ, expectedProcessingTime),
		SystemSource: "ETP",
	}, nil
}

// UpdateSSRStatus records the terminal's progress on a request.
func (s *Service) UpdateSSRStatus(req SSRStatusRequest) (res Result, err error) {
	defer func(start time.Time) { s.track("updateSSRStatus", start, err) }(time.Now())

	id, err := required("ssrId", req.SSRID)
	if err != nil {
		return Result{}, err
	}
	status, err := ssrStatus(req.Status)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ssr, ok := s.store.SSR(id)
	if !ok {
		return Result{}, errs.NotFound("SSR %s not found in ETP system", id)
	}

	now := s.opts.Now()
	ev := event.SSRUpdated{ContainerNumber: ssr.ContainerNumber, SSRID: id, OldStatus: ssr.Status, NewStatus: status, Timestamp: now}
	if err := s.commit(ev); err != nil {
		return Result{}, err
	}
	old := ssr.Status
	ssr.Status = status
	ssr.UpdatedAt = &now
	return Result{
		Data:         ssr,
		Message:      fmt.Sprintf("SSR %s updated from %s to %s", id, old, status),
		SystemSource: "ETP",
	}, nil
}

// Dashboard returns the projection and recent activity as one consistent view.
func (s *Service) Dashboard() Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dashboardLocked()
}

func (s *Service) dashboardLocked() Dashboard {
	return Dashboard{
		Snapshot:       s.store.Snapshot(),
		RecentActivity: s.activity.Recent(),
	}
}

// Vessels lists the known vessel calls.
func (s *Service) Vessels() []model.Vessel {
	return s.store.Vessels()
}

type snapshotFrame struct {
	Type      string    `json:"type"`
	Data      Dashboard `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscribe registers a viewer. With withSnapshot set, the viewer first
// receives the dashboard as of registration: it reflects every event
// broadcast before the viewer joined and none after.
func (s *Service) Subscribe(conn hub.Conn, withSnapshot bool) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !withSnapshot {
		return s.viewers.Register(conn)
	}
	frame, err := json.Marshal(snapshotFrame{Type: "snapshot", Data: s.dashboardLocked(), Timestamp: s.opts.Now()})
	if err != nil {
		return "", errs.Internal(err, "encode snapshot")
	}
	return s.viewers.Register(conn, frame)
}
