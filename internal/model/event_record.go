package model

import "time"

// EventRecord is one journaled domain event.
type EventRecord struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind            string    `gorm:"size:32;index;not null" json:"kind"`
	ContainerNumber string    `gorm:"size:16;index" json:"containerNumber,omitempty"`
	Payload         string    `gorm:"type:text;not null" json:"payload"`
	OccurredAt      time.Time `gorm:"index;not null" json:"occurredAt"`
}
