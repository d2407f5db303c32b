package event

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler はイベントを受け取る購読者。
type Handler func(ctx context.Context, e *Event) error

// Dispatcher はプロセス内でイベントを購読者に同期配送する。
// 購読者のエラーはログに出力するのみで、発行元には伝播しない。
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	logger   *zap.Logger
}

// NewDispatcher は新しいDispatcherを生成する。
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Type][]Handler),
		logger:   logger,
	}
}

// Subscribe は指定したイベント種別の購読者を登録する。
func (d *Dispatcher) Subscribe(t Type, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

// Publish はイベントを登録順にすべての購読者へ配送する。
func (d *Dispatcher) Publish(ctx context.Context, e *Event) {
	d.mu.RLock()
	handlers := d.handlers[e.EventType]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			d.logger.Warn("イベント購読者の処理に失敗しました",
				zap.String("event_id", e.ID),
				zap.String("event_type", string(e.EventType)),
				zap.Error(err),
			)
		}
	}
}
