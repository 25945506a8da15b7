package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContainerStatus is the yard status of a container.
type ContainerStatus string

const (
	StatusArrived              ContainerStatus = "ARRIVED"
	StatusDischarged           ContainerStatus = "DISCHARGED"
	StatusAvailableForDelivery ContainerStatus = "AVAILABLE_FOR_DELIVERY"
	StatusGatedOut             ContainerStatus = "GATED_OUT"
	StatusCustomsHold          ContainerStatus = "CUSTOMS_HOLD"
	StatusDamaged              ContainerStatus = "DAMAGED"
)

// ContainerStatuses lists every accepted status.
var ContainerStatuses = []ContainerStatus{
	StatusArrived,
	StatusDischarged,
	StatusAvailableForDelivery,
	StatusGatedOut,
	StatusCustomsHold,
	StatusDamaged,
}

// Valid reports whether s is a known status.
func (s ContainerStatus) Valid() bool {
	for _, known := range ContainerStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PickupEligible reports whether a container in this status can be collected.
func (s ContainerStatus) PickupEligible() bool {
	return s == StatusDischarged || s == StatusAvailableForDelivery
}

const (
	EDOReleased = "RELEASED"
	EDOPending  = "PENDING"

	CustomsCleared = "CLEARED"
	CustomsPending = "PENDING"
	CustomsHold    = "HOLD"
)

// Container is the projected state of one container, keyed by ContainerNumber.
type Container struct {
	ContainerNumber    string          `json:"containerNumber"`
	Status             ContainerStatus `json:"status"`
	Location           string          `json:"location"`
	VesselName         string          `json:"vesselName"`
	VoyageNumber       string          `json:"voyageNumber"`
	ArrivalDate        string          `json:"arrivalDate"`
	DischargeDate      *string         `json:"dischargeDate"`
	ContainerType      string          `json:"containerType"`
	Size               string          `json:"size"`
	Weight             string          `json:"weight"`
	AvailableForPickup bool            `json:"availableForPickup"`
	Charges            decimal.Decimal `json:"charges"`
	Currency           string          `json:"currency"`
	EDOStatus          string          `json:"edoStatus"`
	CustomsStatus      string          `json:"customsStatus"`
	ActiveGatepass     *string         `json:"activeGatepass"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	GateOutTime        *time.Time      `json:"gateOutTime,omitempty"`
	Consignee          string          `json:"consignee"`
	ShippingAgent      string          `json:"shippingAgent"`
	PortOfLoading      string          `json:"portOfLoading"`
	SSRHistory         []string        `json:"ssrHistory"`
}

// Clone returns a copy that shares no pointers or slices with c.
func (c Container) Clone() Container {
	out := c
	if c.DischargeDate != nil {
		d := *c.DischargeDate
		out.DischargeDate = &d
	}
	if c.ActiveGatepass != nil {
		g := *c.ActiveGatepass
		out.ActiveGatepass = &g
	}
	if c.GateOutTime != nil {
		t := *c.GateOutTime
		out.GateOutTime = &t
	}
	out.SSRHistory = append([]string{}, c.SSRHistory...)
	return out
}
