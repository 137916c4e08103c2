package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	_, ok := r.Last()
	assert.False(t, ok)

	r.Notify(KindSuccess, "Ticket added", "Ticket has been added successfully")
	r.Notify(KindError, "Failed to delete ticket", "not found")

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Ticket added", all[0].Title)
	assert.Equal(t, 1, r.Count(KindError))
	assert.Equal(t, 1, r.Count(KindSuccess))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, KindError, last.Kind)
	assert.Equal(t, "not found", last.Message)

	r.Reset()
	assert.Empty(t, r.All())
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi(a, nil, b)

	m.Notify(KindSuccess, "Logged out", "bye")

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)

	single := Multi(a)
	assert.Same(t, a, single)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{}))

	NewLogReporter(log).Notify(KindError, "Login failed", "Invalid credentials")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "Login failed")
	assert.Contains(t, out, "Invalid credentials")
}

func TestAMQPReporter(t *testing.T) {
	t.Run("publishes event", func(t *testing.T) {
		ch := new(MockChannel)
		at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		ch.On("Publish", "notifications", "console.notification", false, false, mock.MatchedBy(func(p amqp.Publishing) bool {
			var n Notification
			if err := json.Unmarshal(p.Body, &n); err != nil {
				return false
			}
			return n.Kind == KindSuccess && n.Title == "Guide added" && n.At.Equal(at)
		})).Return(nil).Once()

		r := NewAMQPReporter(ch, "notifications", "console.notification", newNoopLogger())
		r.now = func() time.Time { return at }
		r.Notify(KindSuccess, "Guide added", "Guide has been added successfully")

		ch.AssertExpectations(t)
	})

	t.Run("publish error is swallowed", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).
			Return(errors.New("channel closed")).Once()

		r := NewAMQPReporter(ch, "notifications", "rk", newNoopLogger())
		assert.NotPanics(t, func() {
			r.Notify(KindError, "Failed", "boom")
		})
		ch.AssertExpectations(t)
	})
}

func TestCounting(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder()

	c, err := NewCounting(rec, reg)
	require.NoError(t, err)

	c.Notify(KindSuccess, "a", "")
	c.Notify(KindError, "b", "")
	c.Notify(KindError, "c", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.total.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.total.WithLabelValues("error")))
	assert.Len(t, rec.All(), 3)

	_, err = NewCounting(rec, reg)
	assert.Error(t, err)
}
