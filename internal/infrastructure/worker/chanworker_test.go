package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fxledger-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPublisher struct {
	mu     sync.Mutex
	events []domain.BalanceEvent
	failOn string
	panics string
}

func (m *memPublisher) Publish(_ context.Context, ev domain.BalanceEvent) error {
	if ev.ID == m.panics {
		panic("boom")
	}
	if ev.ID == m.failOn {
		return errors.New("broker down")
	}
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	return nil
}

func (m *memPublisher) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.ID)
	}
	return out
}

func event(i int) domain.BalanceEvent {
	return domain.BalanceEvent{ID: fmt.Sprintf("ev-%d", i), UserID: "u1", Currency: "USD"}
}

func TestQueue_DropsWhenFull(t *testing.T) {
	q := NewQueue(2, zap.NewNop())
	for i := 0; i < 5; i++ {
		q.Emit(context.Background(), event(i))
	}
	require.Len(t, q.Events(), 2)
	require.Equal(t, "ev-0", (<-q.Events()).ID)
	require.Equal(t, "ev-1", (<-q.Events()).ID)
}

func TestChanWorker_PublishesInOrder(t *testing.T) {
	q := NewQueue(16, zap.NewNop())
	pub := &memPublisher{failOn: "ev-1", panics: "ev-2"}
	w := NewChanWorker(pub, q.Events())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		q.Emit(ctx, event(i))
	}
	require.Eventually(t, func() bool { return len(pub.ids()) == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"ev-0", "ev-3", "ev-4"}, pub.ids())

	cancel()
	<-done
}

func TestChanWorker_FlushesOnStop(t *testing.T) {
	q := NewQueue(16, zap.NewNop())
	for i := 0; i < 4; i++ {
		q.Emit(context.Background(), event(i))
	}
	pub := &memPublisher{}
	w := NewChanWorker(pub, q.Events())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	require.Len(t, pub.ids(), 4)
	require.Empty(t, q.Events())
}
