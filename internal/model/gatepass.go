package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const GatepassActive = "ACTIVE"

// GatepassContainerDetails copies the container attributes printed on a gatepass.
type GatepassContainerDetails struct {
	Type     string `json:"type"`
	Size     string `json:"size"`
	Weight   string `json:"weight"`
	Location string `json:"location"`
}

// Gatepass authorizes one truck of one haulier to collect one container.
// It is immutable once generated.
type Gatepass struct {
	ID               string                   `json:"id"`
	ContainerNumber  string                   `json:"containerNumber"`
	HaulierCompany   string                   `json:"haulierCompany"`
	TruckNumber      string                   `json:"truckNumber"`
	GeneratedAt      time.Time                `json:"generatedAt"`
	ValidUntil       time.Time                `json:"validUntil"`
	Status           string                   `json:"status"`
	GeneratedBy      string                   `json:"generatedBy"`
	Charges          decimal.Decimal          `json:"charges"`
	Currency         string                   `json:"currency"`
	ContainerDetails GatepassContainerDetails `json:"containerDetails"`
}

// Expired reports whether the validity window has elapsed at now.
func (g Gatepass) Expired(now time.Time) bool {
	return !now.Before(g.ValidUntil)
}
