package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/model"
)

var at = time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafka_Observe(t *testing.T) {
	w := &fakeWriter{}
	k := NewKafka(w)

	ev := event.ContainerUpdated{ContainerNumber: "ABCD1234567", OldStatus: model.StatusDischarged, NewStatus: model.StatusGatedOut, Timestamp: at}
	require.NoError(t, k.Observe(context.Background(), ev))
	require.NoError(t, k.Observe(context.Background(), event.VesselQueried{VesselName: "MSC MAYA", Timestamp: at}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "ABCD1234567", string(w.msgs[0].Key))
	assert.Equal(t, at, w.msgs[0].Time)
	assert.Equal(t, "containerUpdated", string(w.msgs[0].Headers[0].Value))

	var frame map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &frame))
	assert.Equal(t, "GATED_OUT", frame["newStatus"])

	assert.Equal(t, "vesselQueried", string(w.msgs[1].Key))
}

func TestKafka_ObserveWrapsWriteError(t *testing.T) {
	k := NewKafka(&fakeWriter{err: errors.New("leader not available")})
	err := k.Observe(context.Background(), event.ContainerQueried{ContainerNumber: "ABCD1234567", Timestamp: at})
	assert.ErrorContains(t, err, "leader not available")
	assert.Equal(t, "kafka", k.Name())
}

type fakeRedis struct {
	published map[string][]string
	set       map[string]string
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{published: map[string][]string{}, set: map[string]string{}}
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.published[channel] = append(f.published[channel], string(message.([]byte)))
	cmd.SetVal(1)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	f.set[key] = string(value.([]byte))
	cmd.SetVal("OK")
	return cmd
}

func TestRedis_Observe(t *testing.T) {
	c := newFakeRedis()
	r := NewRedis(c, "terminal:events")

	ev := event.GatepassGenerated{ContainerNumber: "ABCD1234567", Gatepass: model.Gatepass{ID: "GP1"}, Timestamp: at}
	require.NoError(t, r.Observe(context.Background(), ev))
	require.NoError(t, r.Observe(context.Background(), event.VesselQueried{VesselName: "MSC MAYA", Timestamp: at}))

	require.Len(t, c.published["terminal:events"], 2)
	assert.Contains(t, c.published["terminal:events"][0], `"type":"gatepassGenerated"`)
	assert.Len(t, c.set, 1)
	assert.Contains(t, c.set["terminal:events:last:ABCD1234567"], `"GP1"`)
}

func TestRedis_ObservePublishError(t *testing.T) {
	c := newFakeRedis()
	c.err = errors.New("connection refused")
	r := NewRedis(c, "terminal:events")

	err := r.Observe(context.Background(), event.ContainerQueried{ContainerNumber: "ABCD1234567", Timestamp: at})
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, c.set)
}
