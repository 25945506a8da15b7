package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/model"
	"terminal-voice-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

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

func subscriptionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at", "container_numbers"})
}

func TestWorkerPool_ObserveFiltersLookups(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db), &webpush.Options{}, nil)
	ctx := context.Background()

	require.NoError(t, wp.Observe(ctx, event.ContainerQueried{ContainerNumber: "ABCD1234567"}))
	require.NoError(t, wp.Observe(ctx, event.VesselQueried{VesselName: "MSC MAYA"}))
	assert.Empty(t, wp.jobs)

	require.NoError(t, wp.Observe(ctx, event.ContainerUpdated{
		ContainerNumber: "ABCD1234567",
		OldStatus:       model.StatusDischarged,
		NewStatus:       model.StatusGatedOut,
	}))

	select {
	case n := <-wp.jobs:
		assert.Equal(t, "ABCD1234567", n.ContainerNumber)
		assert.Equal(t, "containerUpdated", n.Type)
		assert.Equal(t, "Status changed from DISCHARGED to GATED_OUT", n.Body)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchHonoursContext(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db), &webpush.Options{}, nil)

	require.NoError(t, wp.Dispatch(context.Background(), Notice{ContainerNumber: "A"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wp.Dispatch(ctx, Notice{ContainerNumber: "B"}), context.Canceled)
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB), &webpush.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification to matching subscriptions", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "test_p256dh", sub.Keys.P256dh)

				var n Notice
				assert.NoError(t, json.Unmarshal(payload, &n))
				assert.Equal(t, "eGatepass GP1", n.Title)
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(subscriptionRows().
				AddRow("https://example.com/push", "test_p256dh", "test_auth", time.Now(), `["ABCD1234567"]`).
				AddRow("https://example.com/other", "k", "a", time.Now(), `["EFGH9876543"]`))

		err := wp.Observe(ctx, event.GatepassGenerated{
			ContainerNumber: "ABCD1234567",
			Gatepass:        model.Gatepass{ID: "GP1", HaulierCompany: "Fast Haul", TruckNumber: "WXY1234"},
		})
		require.NoError(t, err)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(subscriptionRows().
				AddRow("https://example.com/expired", "k", "a", time.Now(), nil))

		// Expect the delete operation
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := wp.Observe(ctx, event.SSRSubmitted{
			ContainerNumber: "MSKU7654321",
			SSR:             model.SSR{ID: "SSR1", SSRType: model.SSRGovernmentInspection},
		})
		require.NoError(t, err)

		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})
}
