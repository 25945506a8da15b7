package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"terminal-voice-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultSeed returns the demo yard: three containers in different states and
// the two vessel calls they arrived on.
func DefaultSeed(now time.Time) Seed {
	return Seed{
		Containers: []model.Container{
			{
				ContainerNumber:    "ABCD1234567",
				Status:             model.StatusDischarged,
				Location:           "Block A-15",
				VesselName:         "MSC MAYA",
				VoyageNumber:       "MAY001E",
				ArrivalDate:        "2025-06-28",
				DischargeDate:      strPtr("2025-06-29"),
				ContainerType:      "DV",
				Size:               "40HC",
				Weight:             "28500",
				AvailableForPickup: true,
				Charges:            decimal.NewFromInt(450),
				Currency:           "MYR",
				EDOStatus:          model.EDOReleased,
				CustomsStatus:      model.CustomsCleared,
				LastUpdated:        now,
				Consignee:          "ABC TRADING SDN BHD",
				ShippingAgent:      "MAERSK MALAYSIA",
				PortOfLoading:      "SINGAPORE",
				SSRHistory:         []string{},
			},
			{
				ContainerNumber:    "EFGH9876543",
				Status:             model.StatusArrived,
				Location:           "Block B-08",
				VesselName:         "EVERGREEN STAR",
				VoyageNumber:       "EVG002W",
				ArrivalDate:        "2025-06-29",
				ContainerType:      "RF",
				Size:               "20ST",
				Weight:             "18200",
				AvailableForPickup: false,
				Charges:            decimal.NewFromInt(320),
				Currency:           "MYR",
				EDOStatus:          model.EDOPending,
				CustomsStatus:      model.CustomsPending,
				LastUpdated:        now,
				Consignee:          "XYZ LOGISTICS",
				ShippingAgent:      "EVERGREEN SHIPPING",
				PortOfLoading:      "HONG KONG",
				SSRHistory:         []string{},
			},
			{
				ContainerNumber:    "MSKU7654321",
				Status:             model.StatusCustomsHold,
				Location:           "CIC-01",
				VesselName:         "MSC MEDITERRANEAN",
				VoyageNumber:       "MED003E",
				ArrivalDate:        "2025-06-27",
				DischargeDate:      strPtr("2025-06-28"),
				ContainerType:      "DV",
				Size:               "40ST",
				Weight:             "25800",
				AvailableForPickup: false,
				Charges:            decimal.NewFromInt(680),
				Currency:           "MYR",
				EDOStatus:          model.EDOReleased,
				CustomsStatus:      model.CustomsHold,
				LastUpdated:        now,
				Consignee:          "GLOBAL IMPORTS",
				ShippingAgent:      "MSC MALAYSIA",
				PortOfLoading:      "ROTTERDAM",
				SSRHistory:         []string{},
			},
		},
		Vessels: []model.Vessel{
			{
				VesselName:   "MSC MAYA",
				IMONumber:    "9876543",
				VoyageNumber: "MAY001E",
				ETA:          mustTime("2025-06-28T06:00:00Z"),
				ETD:          mustTime("2025-07-02T18:00:00Z"),
				Berth:        "CT1-B3",
				Status:       "ALONGSIDE",
				Agent:        "MAERSK MALAYSIA",
			},
			{
				VesselName:   "EVERGREEN STAR",
				IMONumber:    "9765432",
				VoyageNumber: "EVG002W",
				ETA:          mustTime("2025-06-29T14:00:00Z"),
				ETD:          mustTime("2025-07-03T22:00:00Z"),
				Berth:        "CT2-B1",
				Status:       "DISCHARGING",
				Agent:        "EVERGREEN SHIPPING",
			},
		},
	}
}
