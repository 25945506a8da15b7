package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"terminal-voice-backend/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DefaultEventLimit caps RecentEvents when the caller passes no limit.
const DefaultEventLimit = 50

// Store defines the interface for all database operations.
type Store interface {
	AppendEvent(ctx context.Context, rec *model.EventRecord) error
	RecentEvents(ctx context.Context, limit int) ([]model.EventRecord, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsFor(ctx context.Context, containerNumber string) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// AppendEvent journals one event. rec.ID is filled in on success.
func (s *gormStore) AppendEvent(ctx context.Context, rec *model.EventRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to append %s event: %w", rec.Kind, err)
	}
	return nil
}

// RecentEvents returns the newest journal rows first.
func (s *gormStore) RecentEvents(ctx context.Context, limit int) ([]model.EventRecord, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	var records []model.EventRecord
	if err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent events: %w", err)
	}
	return records, nil
}

// UpsertSubscription creates the subscription or replaces its keys and filter.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "container_numbers"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PushSubscription{}, ErrNotFound
	}
	if err != nil {
		return model.PushSubscription{}, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// SubscriptionsFor returns the subscriptions whose filter covers the
// container. The filter is a JSON column, so matching happens here rather
// than in SQL to stay portable across postgres and sqlite.
func (s *gormStore) SubscriptionsFor(ctx context.Context, containerNumber string) ([]model.PushSubscription, error) {
	var all []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	out := all[:0]
	for _, sub := range all {
		if sub.Wants(containerNumber) {
			out = append(out, sub)
		}
	}
	return out, nil
}
