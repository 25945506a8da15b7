package model

import "time"

// Vessel is a vessel call as published by the berth scheduling system.
type Vessel struct {
	VesselName   string    `json:"vesselName"`
	IMONumber    string    `json:"imoNumber"`
	VoyageNumber string    `json:"voyageNumber"`
	ETA          time.Time `json:"eta"`
	ETD          time.Time `json:"etd"`
	Berth        string    `json:"berth"`
	Status       string    `json:"status"`
	Agent        string    `json:"agent"`
}
