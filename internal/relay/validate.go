package relay

import (
	"strings"

	"terminal-voice-backend/internal/errs"
	"terminal-voice-backend/internal/model"
	"terminal-voice-backend/internal/parse"
)

type ContainerStatusRequest struct {
	ContainerNumber string `json:"containerNumber"`
}

type ContainerUpdateRequest struct {
	ContainerNumber string `json:"containerNumber"`
	NewStatus       string `json:"newStatus"`
	Location        string `json:"location,omitempty"`
}

type GatepassRequest struct {
	ContainerNumber string `json:"containerNumber"`
	HaulierCompany  string `json:"haulierCompany"`
	TruckNumber     string `json:"truckNumber"`
}

type VesselScheduleRequest struct {
	VesselName   string `json:"vesselName,omitempty"`
	VoyageNumber string `json:"voyageNumber,omitempty"`
}

type SSRRequest struct {
	ContainerNumber string `json:"containerNumber"`
	SSRType         string `json:"ssrType"`
	RequestDetails  string `json:"requestDetails"`
}

type SSRStatusRequest struct {
	SSRID  string `json:"ssrId"`
	Status string `json:"status"`
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errs.Validation("%s is required", field)
	}
	return v, nil
}

func containerNumber(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errs.Validation("containerNumber is required")
	}
	n, err := parse.ParseContainerNumber(raw)
	if err != nil {
		return "", errs.Validation("containerNumber %q is not valid, expected format ABCD1234567", raw)
	}
	return n.String(), nil
}

func containerStatus(raw string) (model.ContainerStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errs.Validation("newStatus is required")
	}
	s := model.ContainerStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", errs.Validation("newStatus %q is not one of %s", raw, joinEnum(model.ContainerStatuses))
	}
	return s, nil
}

func ssrType(raw string) (model.SSRType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errs.Validation("ssrType is required")
	}
	t := model.SSRType(strings.TrimSpace(raw))
	if !t.Valid() {
		return "", errs.Validation("ssrType %q is not one of %s", raw, joinEnum(model.SSRTypes))
	}
	return t, nil
}

func ssrStatus(raw string) (model.SSRStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errs.Validation("status is required")
	}
	s := model.SSRStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", errs.Validation("status %q is not one of %s", raw, joinEnum(model.SSRStatuses))
	}
	return s, nil
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
