package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

// Bus is an in-process event dispatcher. Dispatch is synchronous, in
// subscription order, on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]entry
	lastID   uint64
}

type entry struct {
	id uint64
	fn func(context.Context, any)
}

// New creates an empty Bus.
func New() *Bus { return &Bus{handlers: make(map[reflect.Type][]entry)} }

func (b *Bus) subscribe(t reflect.Type, fn func(context.Context, any)) (unsubscribe func()) {
	b.mu.Lock()
	b.lastID++
	id := b.lastID
	b.handlers[t] = append(b.handlers[t], entry{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		hs := b.handlers[t]
		for i, e := range hs {
			if e.id == id {
				b.handlers[t] = append(hs[:i:i], hs[i+1:]...)
				break
			}
		}
		if len(b.handlers[t]) == 0 {
			delete(b.handlers, t)
		}
	}
}

// emit dispatches ev to all handlers registered for its dynamic type.
func (b *Bus) emit(ctx context.Context, ev any) {
	if b == nil {
		return
	}
	t := reflect.TypeOf(ev)
	b.mu.RLock()
	hs := b.handlers[t]
	if len(hs) == 0 {
		b.mu.RUnlock()
		return
	}
	copied := append([]entry(nil), hs...)
	b.mu.RUnlock()
	for _, e := range copied {
		e.fn(ctx, ev)
	}
}

var active atomic.Pointer[Bus]

// Use installs b as the process bus. Passing nil disables event publishing.
func Use(b *Bus) { active.Store(b) }

// Subscribe registers h for events of type T on the process bus. The returned
// function removes the subscription. With no bus installed it is a no-op.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := active.Load()
	if b == nil {
		return func() {}
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	return b.subscribe(t, func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish dispatches ev to the process bus subscribers of its type.
func Publish[T any](ctx context.Context, ev T) {
	if b := active.Load(); b != nil {
		b.emit(ctx, ev)
	}
}
