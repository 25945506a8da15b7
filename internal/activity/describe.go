package activity

import (
	"fmt"

	"terminal-voice-backend/internal/event"
)

// Describe renders the feed entry for an event.
func Describe(ev event.Event) (Entry, error) {
	var d describer
	if err := event.Dispatch(ev, &d); err != nil {
		return Entry{}, err
	}
	d.entry.Timestamp = ev.OccurredAt()
	return d.entry, nil
}

type describer struct {
	entry Entry
}

func (d *describer) VisitContainerQueried(e event.ContainerQueried) error {
	d.entry = Entry{
		Message:  fmt.Sprintf("Container %s queried by voice agent", e.ContainerNumber),
		Category: CategoryQuery,
	}
	return nil
}

func (d *describer) VisitContainerUpdated(e event.ContainerUpdated) error {
	d.entry = Entry{
		Message:  fmt.Sprintf("Container %s updated: %s → %s", e.ContainerNumber, e.OldStatus, e.NewStatus),
		Category: CategoryUpdate,
	}
	return nil
}

func (d *describer) VisitGatepassGenerated(e event.GatepassGenerated) error {
	d.entry = Entry{
		Message:  fmt.Sprintf("eGatepass %s generated for %s", e.Gatepass.ID, e.ContainerNumber),
		Category: CategoryGatepass,
	}
	return nil
}

func (d *describer) VisitVesselQueried(e event.VesselQueried) error {
	d.entry = Entry{
		Message:  fmt.Sprintf("Vessel %s schedule queried by voice agent", e.VesselName),
		Category: CategoryVessel,
	}
	return nil
}

func (d *describer) VisitSSRSubmitted(e event.SSRSubmitted) error {
	d.entry = Entry{
		Message:  fmt.Sprintf("SSR %s submitted for %s (%s)", e.SSR.ID, e.ContainerNumber, e.SSR.SSRType),
		Category: CategorySSR,
	}
	return nil
}

func (d *describer) VisitSSRUpdated(e event.SSRUpdated) error {
	d.entry = Entry{
		Message:  fmt.Sprintf("SSR %s for %s moved %s → %s", e.SSRID, e.ContainerNumber, e.OldStatus, e.NewStatus),
		Category: CategorySSR,
	}
	return nil
}
