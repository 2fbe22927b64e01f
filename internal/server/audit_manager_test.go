package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureProducer struct {
	mu     sync.Mutex
	values [][]byte
	closed bool
}

func (p *captureProducer) SendMessage(_ context.Context, _, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, value)
	return nil
}

func (p *captureProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *captureProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

func TestAuditManagerPublishesEntries(t *testing.T) {
	producer := &captureProducer{}
	m := NewAuditManager(producer, zap.NewNop(), 2, 2, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	for i := 0; i < 5; i++ {
		m.Log(AuditLogEntry{
			Timestamp: time.Now().UTC(),
			Method:    "POST",
			Path:      fmt.Sprintf("/order/create-order/%d", i),
			Route:     "/order/create-order",
		})
	}

	require.Eventually(t, func() bool {
		return producer.count() == 5
	}, 2*time.Second, 10*time.Millisecond)

	var entry AuditLogEntry
	require.NoError(t, json.Unmarshal(producer.values[0], &entry))
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/order/create-order", entry.Route)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	m.Shutdown(shutdownCtx)

	assert.True(t, producer.closed)
}

func TestAuditManagerShutdownIsIdempotent(t *testing.T) {
	m := NewAuditManager(&captureProducer{}, zap.NewNop(), 1, 4, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	m.Shutdown(shutdownCtx)
	m.Shutdown(shutdownCtx)
}

func TestAuditMiddlewareRecordsRequest(t *testing.T) {
	producer := &captureProducer{}
	logger := zap.NewNop()
	m := NewAuditManager(producer, logger, 1, 1, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	s, _, _ := newTestServer(t)
	s.audit = m

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		return producer.count() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	var entry AuditLogEntry
	require.NoError(t, json.Unmarshal(producer.values[0], &entry))
	assert.Equal(t, "/health", entry.Path)
	assert.Equal(t, http.StatusOK, entry.StatusCode)
}
