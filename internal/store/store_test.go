package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_AppendEvent(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	at := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "event_records"`)).
		WithArgs("containerUpdated", "ABCD1234567", Any{}, at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	rec := &model.EventRecord{Kind: "containerUpdated", ContainerNumber: "ABCD1234567", Payload: `{}`, OccurredAt: at}
	require.NoError(t, s.AppendEvent(context.Background(), rec))
	assert.Equal(t, uint64(7), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_RecentEvents(t *testing.T) {
	testCases := []struct {
		name      string
		limit     int
		wantLimit int
		queryErr  error
	}{
		{name: "Explicit limit", limit: 5, wantLimit: 5},
		{name: "Default limit", limit: 0, wantLimit: DefaultEventLimit},
		{name: "Query failure", limit: 5, wantLimit: 5, queryErr: errors.New("connection refused")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			q := mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "event_records" ORDER BY id desc LIMIT $1`)).
				WithArgs(tc.wantLimit)
			if tc.queryErr != nil {
				q.WillReturnError(tc.queryErr)
			} else {
				q.WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "container_number", "payload", "occurred_at"}).
					AddRow(2, "gatepassGenerated", "ABCD1234567", `{}`, time.Now()).
					AddRow(1, "containerQueried", "ABCD1234567", `{}`, time.Now()))
			}

			records, err := s.RecentEvents(context.Background(), tc.limit)
			if tc.queryErr != nil {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Len(t, records, 2)
				assert.Equal(t, uint64(2), records[0].ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_UpsertSubscription(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "push_subscriptions" .* ON CONFLICT \("endpoint"\) DO UPDATE SET`).
		WithArgs("https://push.example/a", "p256", "auth", Any{}, Any{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.UpsertSubscription(context.Background(), &model.PushSubscription{
		Endpoint:         "https://push.example/a",
		P256DH:           "p256",
		Auth:             "auth",
		ContainerNumbers: []string{"ABCD1234567"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetSubscription(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE endpoint = $1`)).
		WithArgs("https://push.example/a", 1).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at", "container_numbers"}).
			AddRow("https://push.example/a", "p256", "auth", time.Now(), `["ABCD1234567"]`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE endpoint = $1`)).
		WithArgs("https://push.example/missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint"}))

	sub, err := s.GetSubscription(context.Background(), "https://push.example/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"ABCD1234567"}, sub.ContainerNumbers)

	_, err = s.GetSubscription(context.Background(), "https://push.example/missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteSubscription(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = $1`)).
		WithArgs("https://push.example/a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteSubscription(context.Background(), "https://push.example/a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SubscriptionsFor(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at", "container_numbers"}).
			AddRow("https://push.example/all", "k", "a", time.Now(), nil).
			AddRow("https://push.example/abcd", "k", "a", time.Now(), `["ABCD1234567"]`).
			AddRow("https://push.example/efgh", "k", "a", time.Now(), `["EFGH9876543"]`))

	subs, err := s.SubscriptionsFor(context.Background(), "ABCD1234567")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "https://push.example/all", subs[0].Endpoint)
	assert.Equal(t, "https://push.example/abcd", subs[1].Endpoint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_Observe(t *testing.T) {
	gormDB, mock := newTestDB(t)
	j := NewJournal(NewGormStore(gormDB))
	at := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "event_records"`)).
		WithArgs("vesselQueried", "", jsonContaining(`"type":"vesselQueried"`), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := j.Observe(context.Background(), event.VesselQueried{VesselName: "MSC MAYA", Timestamp: at})
	require.NoError(t, err)
	assert.Equal(t, "journal", j.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

type jsonContaining string

func (j jsonContaining) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && regexp.MustCompile(regexp.QuoteMeta(string(j))).MatchString(s)
}
