package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hireflow-go-api/internal/models"
)

type memoryOutboxRepo struct {
	mu     sync.Mutex
	events map[uint]models.OutboxEvent
	nextID uint
}

func newMemoryOutboxRepo() *memoryOutboxRepo {
	return &memoryOutboxRepo{events: make(map[uint]models.OutboxEvent), nextID: 1}
}

func (m *memoryOutboxRepo) Create(_ context.Context, event *models.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = m.nextID
	event.CreatedAt = time.Now()
	m.events[m.nextID] = *event
	m.nextID++
	return nil
}

func (m *memoryOutboxRepo) ListPending(_ context.Context, limit int) ([]models.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []models.OutboxEvent
	for _, event := range m.events {
		if event.DispatchedAt == nil {
			pending = append(pending, event)
		}
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (m *memoryOutboxRepo) MarkDispatched(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event := m.events[id]
	event.DispatchedAt = &at
	m.events[id] = event
	return nil
}

func (m *memoryOutboxRepo) IncrementAttempts(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event := m.events[id]
	event.Attempts++
	m.events[id] = event
	return nil
}

func TestOutboxServiceEnqueuePersistsEvent(t *testing.T) {
	repo := newMemoryOutboxRepo()
	svc := NewOutboxService(repo, nil, testLogger())

	err := svc.Enqueue(context.Background(), models.SubjectInterviewScheduled, map[string]interface{}{
		"interview_id": uint(7),
	})
	require.NoError(t, err)

	pending, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, models.SubjectInterviewScheduled, pending[0].Subject)
	require.NotEmpty(t, pending[0].EventID)
	require.Nil(t, pending[0].DispatchedAt)
}

func TestOutboxServiceLeavesEventsQueuedWithoutBus(t *testing.T) {
	repo := newMemoryOutboxRepo()
	svc := NewOutboxService(repo, nil, testLogger())

	require.NoError(t, svc.Enqueue(context.Background(), models.SubjectInterviewMissed, map[string]interface{}{"interview_id": uint(3)}))

	dispatched, err := svc.DispatchPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, dispatched)

	pending, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}
