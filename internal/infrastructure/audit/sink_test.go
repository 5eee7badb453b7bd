package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

func sampleEvent() stock.AuditEvent {
	return stock.AuditEvent{
		Action:     "transfer.ship",
		EntityType: "stock_transfer",
		EntityID:   "t-1",
		BranchID:   "b-1",
		ActorID:    "u-1",
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Details:    map[string]any{"status": "SHIPPED"},
	}
}

func closeSink(t *testing.T, s *WebhookSink) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

func TestWebhookSink_PostsEventAsJSON(t *testing.T) {
	received := make(chan stock.AuditEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var e stock.AuditEvent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		received <- e
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second, 0, logger.Nop())
	sink.Record(context.Background(), sampleEvent())
	closeSink(t, sink)

	select {
	case e := <-received:
		assert.Equal(t, "transfer.ship", e.Action)
		assert.Equal(t, "t-1", e.EntityID)
		assert.Equal(t, "SHIPPED", e.Details["status"])
		assert.True(t, e.OccurredAt.Equal(sampleEvent().OccurredAt))
	default:
		t.Fatal("el webhook no recibió el evento")
	}
}

func TestWebhookSink_ServerErrorIsLoggedNotReturned(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})
	sink := NewWebhookSink(srv.URL, time.Second, 0, log)

	sink.Record(context.Background(), sampleEvent())
	closeSink(t, sink)

	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Contains(t, buf.String(), "webhook de auditoría rechazó el evento")
}

func TestWebhookSink_IgnoresCancelledRequestContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := NewWebhookSink(srv.URL, time.Second, 0, logger.Nop())
	sink.Record(ctx, sampleEvent())
	closeSink(t, sink)

	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookSink_RecordDoesNotWaitForSlowEndpoint(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, 5*time.Second, 0, logger.Nop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		sink.Record(context.Background(), sampleEvent())
	}
	assert.Less(t, time.Since(start), time.Second, "Record no espera la respuesta del webhook")

	close(release)
	closeSink(t, sink)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookSink_FullQueueDropsEvents(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf syncBuffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})
	sink := NewWebhookSink(srv.URL, 5*time.Second, 1, log)

	for i := 0; i < 5; i++ {
		sink.Record(context.Background(), sampleEvent())
	}
	close(release)
	closeSink(t, sink)

	// Como máximo uno en vuelo y uno en cola
	assert.LessOrEqual(t, calls.Load(), int32(2))
	assert.Contains(t, buf.String(), "cola de auditoría llena")
}

func TestWebhookSink_RecordAfterCloseIsDropped(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second, 0, logger.Nop())
	closeSink(t, sink)

	assert.NotPanics(t, func() { sink.Record(context.Background(), sampleEvent()) })
	assert.NoError(t, sink.Close(context.Background()))
	assert.Zero(t, calls.Load())
}

// syncBuffer bytes.Buffer compartido entre el test y el worker del sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogSink_WritesStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	NewLogSink(log).Record(context.Background(), sampleEvent())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "transfer.ship", line["action"])
	assert.Equal(t, "t-1", line["entity_id"])
}

type sinkMock struct{ mock.Mock }

func (m *sinkMock) Record(ctx context.Context, e stock.AuditEvent) { m.Called(ctx, e) }

func TestMulti_FansOut(t *testing.T) {
	a, b := &sinkMock{}, &sinkMock{}
	e := sampleEvent()
	a.On("Record", mock.Anything, e).Once()
	b.On("Record", mock.Anything, e).Once()

	Multi{a, b}.Record(context.Background(), e)

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}
