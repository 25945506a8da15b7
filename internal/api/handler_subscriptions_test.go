package api

import (
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestPutSubscription(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		s, _ := newMockStore(t)
		ts := newTestServer(t, s)

		w := ts.do(http.MethodPut, "/api/subscriptions", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decode(t, w)["error"].(map[string]any)["code"])
	})

	t.Run("rejects malformed container filter", func(t *testing.T) {
		s, mock := newMockStore(t)
		ts := newTestServer(t, s)

		w := ts.do(http.MethodPut, "/api/subscriptions",
			`{"endpoint":"https://push.example/a","p256dh":"k","auth":"a","containerNumbers":["nope"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upserts", func(t *testing.T) {
		s, mock := newMockStore(t)
		ts := newTestServer(t, s)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "push_subscriptions" .* ON CONFLICT \("endpoint"\) DO UPDATE SET`).
			WithArgs("https://push.example/a", "k", "a", Any{}, `["ABCD1234567"]`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		w := ts.do(http.MethodPut, "/api/subscriptions",
			`{"endpoint":"https://push.example/a","p256dh":"k","auth":"a","containerNumbers":[" ABCD1234567 "]}`)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetSubscription(t *testing.T) {
	s, mock := newMockStore(t)
	ts := newTestServer(t, s)
	endpoint := "https://push.example/a?token=x"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE endpoint = $1`)).
		WithArgs(endpoint, 1).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at", "container_numbers"}).
			AddRow(endpoint, "k", "a", time.Now(), nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE endpoint = $1`)).
		WithArgs("https://push.example/gone", 1).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint"}))

	w := ts.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"data":{"endpoint":"https://push.example/a?token=x","containerNumbers":[]}}`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/subscriptions?endpoint=https://push.example/gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/api/subscriptions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubscription(t *testing.T) {
	s, mock := newMockStore(t)
	ts := newTestServer(t, s)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = $1`)).
		WithArgs("https://push.example/a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := ts.do(http.MethodDelete, "/api/subscriptions", `{"endpoint":"https://push.example/a"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVAPIDPublicKey(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h := NewHandler(Deps{WebPush: &webpush.Options{VAPIDPublicKey: "BPub"}})
	r := gin.New()
	r.GET("/key", h.GetVAPIDPublicKey)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/key", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publicKey":"BPub"}`, w.Body.String())
}
