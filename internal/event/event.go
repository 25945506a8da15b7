// Package event defines the domain events emitted by tool calls.
//
// The set of variants is closed: Event has an unexported method, so only the
// types in this package satisfy it. Consumers dispatch on the variant through
// Visitor rather than comparing type strings, and Decode rejects any type it
// does not know.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"terminal-voice-backend/internal/model"
)

// Kind is the wire name of an event variant.
type Kind string

const (
	KindContainerQueried  Kind = "containerQueried"
	KindContainerUpdated  Kind = "containerUpdated"
	KindGatepassGenerated Kind = "gatepassGenerated"
	KindVesselQueried     Kind = "vesselQueried"
	KindSSRSubmitted      Kind = "ssrSubmitted"
	KindSSRUpdated        Kind = "ssrUpdated"
)

// ErrUnknownKind is returned for event types outside the known set.
var ErrUnknownKind = errors.New("unknown event kind")

// Event is one immutable state change.
type Event interface {
	Kind() Kind
	OccurredAt() time.Time
	// Subject is the container number the event concerns, empty for vessel queries.
	Subject() string
	Accept(v Visitor) error
	sealed()
}

// Visitor has one method per variant.
type Visitor interface {
	VisitContainerQueried(ContainerQueried) error
	VisitContainerUpdated(ContainerUpdated) error
	VisitGatepassGenerated(GatepassGenerated) error
	VisitVesselQueried(VesselQueried) error
	VisitSSRSubmitted(SSRSubmitted) error
	VisitSSRUpdated(SSRUpdated) error
}

// Dispatch calls the Visitor method matching ev. A nil event is reported as
// ErrUnknownKind.
func Dispatch(ev Event, v Visitor) error {
	if ev == nil {
		return fmt.Errorf("dispatch nil event: %w", ErrUnknownKind)
	}
	return ev.Accept(v)
}

// ContainerQueried records a status lookup.
type ContainerQueried struct {
	ContainerNumber string          `json:"containerNumber"`
	Container       model.Container `json:"data"`
	Timestamp       time.Time       `json:"timestamp"`
}

func (e ContainerQueried) Kind() Kind { return KindContainerQueried }
func (e ContainerQueried) OccurredAt() time.Time { return e.Timestamp }
func (e ContainerQueried) Subject() string { return e.ContainerNumber }
func (e ContainerQueried) Accept(v Visitor) error { return v.VisitContainerQueried(e) }
func (e ContainerQueried) sealed() {}
func (e ContainerQueried) MarshalJSON() ([]byte, error) {
	type body ContainerQueried
	return json.Marshal(struct {
		Type Kind `json:"type"`
		body
		Action string `json:"action"`
	}{e.Kind(), body(e), "STATUS_QUERY"})
}

// ContainerUpdated records a status change and carries the resulting container.
type ContainerUpdated struct {
	ContainerNumber string                `json:"containerNumber"`
	OldStatus       model.ContainerStatus `json:"oldStatus"`
	NewStatus       model.ContainerStatus `json:"newStatus"`
	Container       model.Container       `json:"data"`
	Timestamp       time.Time             `json:"timestamp"`
}

func (e ContainerUpdated) Kind() Kind { return KindContainerUpdated }
func (e ContainerUpdated) OccurredAt() time.Time { return e.Timestamp }
func (e ContainerUpdated) Subject() string { return e.ContainerNumber }
func (e ContainerUpdated) Accept(v Visitor) error { return v.VisitContainerUpdated(e) }
func (e ContainerUpdated) sealed() {}
func (e ContainerUpdated) MarshalJSON() ([]byte, error) {
	type body ContainerUpdated
	return json.Marshal(struct {
		Type Kind `json:"type"`
		body
		Action string `json:"action"`
	}{e.Kind(), body(e), "STATUS_UPDATE"})
}

// GatepassGenerated records a new gatepass.
type GatepassGenerated struct {
	ContainerNumber string         `json:"containerNumber"`
	Gatepass        model.Gatepass `json:"gatepass"`
	Timestamp       time.Time      `json:"timestamp"`
}

func (e GatepassGenerated) Kind() Kind { return KindGatepassGenerated }
func (e GatepassGenerated) OccurredAt() time.Time { return e.Timestamp }
func (e GatepassGenerated) Subject() string { return e.ContainerNumber }
func (e GatepassGenerated) Accept(v Visitor) error { return v.VisitGatepassGenerated(e) }
func (e GatepassGenerated) sealed() {}
func (e GatepassGenerated) MarshalJSON() ([]byte, error) {
	type body GatepassGenerated
	return json.Marshal(struct {
		Type Kind `json:"type"`
		body
		Action string `json:"action"`
	}{e.Kind(), body(e), "GATEPASS_GENERATED"})
}

// VesselQueried records a vessel schedule lookup.
type VesselQueried struct {
	VesselName string       `json:"vesselName"`
	Vessel     model.Vessel `json:"data"`
	Timestamp  time.Time    `json:"timestamp"`
}

func (e VesselQueried) Kind() Kind { return KindVesselQueried }
func (e VesselQueried) OccurredAt() time.Time { return e.Timestamp }
func (e VesselQueried) Subject() string { return "" }
func (e VesselQueried) Accept(v Visitor) error { return v.VisitVesselQueried(e) }
func (e VesselQueried) sealed() {}
func (e VesselQueried) MarshalJSON() ([]byte, error) {
	type body VesselQueried
	return json.Marshal(struct {
		Type Kind `json:"type"`
		body
		Action string `json:"action"`
	}{e.Kind(), body(e), "VESSEL_SCHEDULE_QUERY"})
}

// SSRSubmitted records a new special service request.
type SSRSubmitted struct {
	ContainerNumber string    `json:"containerNumber"`
	SSR             model.SSR `json:"ssr"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e SSRSubmitted) Kind() Kind { return KindSSRSubmitted }
func (e SSRSubmitted) OccurredAt() time.Time { return e.Timestamp }
func (e SSRSubmitted) Subject() string { return e.ContainerNumber }
func (e SSRSubmitted) Accept(v Visitor) error { return v.VisitSSRSubmitted(e) }
func (e SSRSubmitted) sealed() {}
func (e SSRSubmitted) MarshalJSON() ([]byte, error) {
	type body SSRSubmitted
	return json.Marshal(struct {
		Type Kind `json:"type"`
		body
		Action string `json:"action"`
	}{e.Kind(), body(e), "SSR_SUBMITTED"})
}

// SSRUpdated records a status change reported by the terminal for an SSR.
type SSRUpdated struct {
	ContainerNumber string          `json:"containerNumber"`
	SSRID           string          `json:"ssrId"`
	OldStatus       model.SSRStatus `json:"oldStatus"`
	NewStatus       model.SSRStatus `json:"newStatus"`
	Timestamp       time.Time       `json:"timestamp"`
}

func (e SSRUpdated) Kind() Kind { return KindSSRUpdated }
func (e SSRUpdated) OccurredAt() time.Time { return e.Timestamp }
func (e SSRUpdated) Subject() string { return e.ContainerNumber }
func (e SSRUpdated) Accept(v Visitor) error { return v.VisitSSRUpdated(e) }
func (e SSRUpdated) sealed() {}
func (e SSRUpdated) MarshalJSON() ([]byte, error) {
	type body SSRUpdated
	return json.Marshal(struct {
		Type Kind `json:"type"`
		body
		Action string `json:"action"`
	}{e.Kind(), body(e), "SSR_STATUS_UPDATE"})
}

// Encode renders ev as a push frame: {type, ...payload, timestamp, action}.
func Encode(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("encode nil event: %w", ErrUnknownKind)
	}
	return json.Marshal(ev)
}

// Decode parses a push frame back into its variant.
func Decode(data []byte) (Event, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event header: %w", err)
	}

	var (
		ev  Event
		err error
	)
	switch head.Type {
	case KindContainerQueried:
		var e ContainerQueried
		err = json.Unmarshal(data, &e)
		ev = e
	case KindContainerUpdated:
		var e ContainerUpdated
		err = json.Unmarshal(data, &e)
		ev = e
	case KindGatepassGenerated:
		var e GatepassGenerated
		err = json.Unmarshal(data, &e)
		ev = e
	case KindVesselQueried:
		var e VesselQueried
		err = json.Unmarshal(data, &e)
		ev = e
	case KindSSRSubmitted:
		var e SSRSubmitted
		err = json.Unmarshal(data, &e)
		ev = e
	case KindSSRUpdated:
		var e SSRUpdated
		err = json.Unmarshal(data, &e)
		ev = e
	default:
		return nil, fmt.Errorf("decode event type %q: %w", head.Type, ErrUnknownKind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return ev, nil
}
