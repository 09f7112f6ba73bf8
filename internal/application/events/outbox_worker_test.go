package events_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	failFor   map[string]bool
}

func (p *fakePublisher) Publish(_ context.Context, ev *entity.SaleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[ev.ID] {
		return errors.New("broker no disponible")
	}
	p.published = append(p.published, ev.ID)
	return nil
}

func enqueue(t *testing.T, store *memory.Store, id string, at time.Time) {
	t.Helper()
	require.NoError(t, store.Events().Enqueue(context.Background(), &entity.SaleEvent{
		ID:        id,
		SaleID:    "sale-" + id,
		EventType: entity.SaleEventCreated,
		Payload:   []byte(`{"sale_id":"sale-` + id + `"}`),
		Status:    entity.SaleEventPending,
		CreatedAt: at,
		UpdatedAt: at,
	}))
}

func TestOutboxWorker_PublicaYMarca(t *testing.T) {
	store := memory.NewStore()
	now := time.Now()
	enqueue(t, store, "e1", now)
	enqueue(t, store, "e2", now.Add(time.Second))
	enqueue(t, store, "e3", now.Add(2*time.Second))

	pub := &fakePublisher{failFor: map[string]bool{"e2": true}}
	w := events.NewOutboxWorker(store.Events(), pub, events.WorkerOptions{MaxAttempts: 2},
		metrics.NewSalesMetrics(prometheus.NewRegistry()), zerolog.Nop())

	sent, failed, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"e1", "e3"}, pub.published)

	pending, err := store.Events().CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	// Segundo intento fallido: agota MaxAttempts y deja de reintentarse.
	_, failed, err = w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	sent, failed, err = w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestOutboxWorker_RunSeDetieneConContexto(t *testing.T) {
	store := memory.NewStore()
	enqueue(t, store, "e1", time.Now())
	pub := &fakePublisher{}
	w := events.NewOutboxWorker(store.Events(), pub, events.WorkerOptions{PollInterval: 10 * time.Millisecond}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.published) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}

func TestLogPublisher_EscribeEvento(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), &entity.SaleEvent{
		ID: "e1", SaleID: "s1", EventType: entity.SaleEventCancelled, Payload: []byte(`{"status":"cancelled"}`),
	}))
	assert.Contains(t, buf.String(), `"event_type":"sale.cancelled"`)
	assert.Contains(t, buf.String(), `"payload":{"status":"cancelled"}`)
}
