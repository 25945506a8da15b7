package store

import (
	"context"

	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/model"
)

// Journal persists every relayed event as an EventRecord.
type Journal struct {
	store Store
}

func NewJournal(s Store) *Journal {
	return &Journal{store: s}
}

func (j *Journal) Name() string { return "journal" }

func (j *Journal) Observe(ctx context.Context, ev event.Event) error {
	payload, err := event.Encode(ev)
	if err != nil {
		return err
	}
	return j.store.AppendEvent(ctx, &model.EventRecord{
		Kind:            string(ev.Kind()),
		ContainerNumber: ev.Subject(),
		Payload:         string(payload),
		OccurredAt:      ev.OccurredAt(),
	})
}
