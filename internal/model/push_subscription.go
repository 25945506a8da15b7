package model

import "time"

// PushSubscription holds the information for an operator's browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// ContainerNumbers filters notifications; empty means every container.
	ContainerNumbers []string `gorm:"serializer:json"`
}

// Wants reports whether the subscription covers the given container.
func (s PushSubscription) Wants(containerNumber string) bool {
	if len(s.ContainerNumbers) == 0 {
		return true
	}
	for _, n := range s.ContainerNumbers {
		if n == containerNumber {
			return true
		}
	}
	return false
}
