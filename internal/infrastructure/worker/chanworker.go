package worker

import (
	"context"
	"fmt"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"
	infraconfig "fxledger-service/internal/infrastructure/config"
	"fxledger-service/internal/infrastructure/logx"
	"fxledger-service/internal/metrics"

	"go.uber.org/zap"
)

// Publisher delivers a balance event downstream.
type Publisher interface {
	Publish(ctx context.Context, ev domain.BalanceEvent) error
}

var _ application.EventSink = (*Queue)(nil)

// Queue is a bounded buffer between the ledger and the publisher. Emit never
// blocks: when the buffer is full the event is dropped and counted.
type Queue struct {
	ch  chan domain.BalanceEvent
	log *zap.Logger
}

func NewQueue(size int, log *zap.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if log == nil {
		log = logx.L()
	}
	return &Queue{ch: make(chan domain.BalanceEvent, size), log: log}
}

func (q *Queue) Emit(_ context.Context, ev domain.BalanceEvent) {
	select {
	case q.ch <- ev:
	default:
		metrics.BalanceEventsDropped.Inc()
		q.log.Warn("balance_event.dropped",
			zap.String("event_id", ev.ID),
			zap.String("user_id", ev.UserID),
		)
	}
}

func (q *Queue) Events() <-chan domain.BalanceEvent { return q.ch }

type ChanWorker struct {
	pub    Publisher
	events <-chan domain.BalanceEvent
}

func NewChanWorker(pub Publisher, events <-chan domain.BalanceEvent) *ChanWorker {
	return &ChanWorker{pub: pub, events: events}
}

// Start publishes events until ctx is done, then flushes whatever is still
// buffered with a fresh deadline.
func (w *ChanWorker) Start(ctx context.Context) {
	log := logx.L().With(zap.String("worker", "chan"))
	for {
		select {
		case <-ctx.Done():
			n := w.drain()
			log.Info("chan_worker.stop", zap.Int("flushed", n))
			return
		case ev, ok := <-w.events:
			if !ok {
				log.Info("chan_worker.closed")
				return
			}
			w.processOne(ctx, ev)
		}
	}
}

func (w *ChanWorker) drain() int {
	ctx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultPublishTimeout)
	defer cancel()
	n := 0
	for {
		select {
		case ev, ok := <-w.events:
			if !ok {
				return n
			}
			w.processOne(ctx, ev)
			n++
		default:
			return n
		}
	}
}

func (w *ChanWorker) processOne(ctx context.Context, ev domain.BalanceEvent) {
	defer func() {
		if r := recover(); r != nil {
			metrics.BalanceEventsPublished.WithLabelValues("error").Inc()
			logx.L().Warn("chan_worker.panic", zap.String("event_id", ev.ID), zap.String("r", fmt.Sprint(r)))
		}
	}()
	c, cancel := context.WithTimeout(ctx, infraconfig.DefaultPublishTimeout)
	defer cancel()
	if err := w.pub.Publish(c, ev); err != nil {
		metrics.BalanceEventsPublished.WithLabelValues("error").Inc()
		logx.L().Warn("chan_worker.publish_failed",
			zap.String("event_id", ev.ID),
			zap.String("user_id", ev.UserID),
			zap.Error(err),
		)
		return
	}
	metrics.BalanceEventsPublished.WithLabelValues("ok").Inc()
}
