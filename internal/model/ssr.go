package model

import "time"

// SSRType is the kind of special service requested.
type SSRType string

const (
	SSRInterTerminalTransfer SSRType = "ITT"
	SSRStorageExtension      SSRType = "STORAGE_EXTENSION"
	SSRReeferMonitoring      SSRType = "REEFER_MONITORING"
	SSRSpecialHandling       SSRType = "SPECIAL_HANDLING"
	SSRGovernmentInspection  SSRType = "GOVERNMENT_INSPECTION"
)

// SSRTypes lists every accepted SSR type.
var SSRTypes = []SSRType{
	SSRInterTerminalTransfer,
	SSRStorageExtension,
	SSRReeferMonitoring,
	SSRSpecialHandling,
	SSRGovernmentInspection,
}

func (t SSRType) Valid() bool {
	for _, known := range SSRTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SSRStatus tracks processing of a request by the terminal.
type SSRStatus string

const (
	SSRSubmitted  SSRStatus = "SUBMITTED"
	SSRInProgress SSRStatus = "IN_PROGRESS"
	SSRCompleted  SSRStatus = "COMPLETED"
	SSRRejected   SSRStatus = "REJECTED"
)

var SSRStatuses = []SSRStatus{SSRSubmitted, SSRInProgress, SSRCompleted, SSRRejected}

func (s SSRStatus) Valid() bool {
	for _, known := range SSRStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// SSR is a special service request tied to a container.
type SSR struct {
	ID                     string     `json:"id"`
	ContainerNumber        string     `json:"containerNumber"`
	SSRType                SSRType    `json:"ssrType"`
	RequestDetails         string     `json:"requestDetails"`
	Status                 SSRStatus  `json:"status"`
	SubmittedAt            time.Time  `json:"submittedAt"`
	SubmittedBy            string     `json:"submittedBy"`
	ExpectedProcessingTime string     `json:"expectedProcessingTime"`
	UpdatedAt              *time.Time `json:"updatedAt,omitempty"`
}
