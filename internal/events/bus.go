// Package events is an in-process publish/subscribe bus. Each topic is
// registered once with a fixed payload type; components subscribe when they
// attach and drop their subscriptions when they detach.
package events

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Signal is the payload of topics that carry no arguments.
type Signal struct{}

// Bus owns the set of named topics.
type Bus struct {
	mu     sync.Mutex
	topics map[string]topic
}

type topic interface {
	payloadType() reflect.Type
	Subscribers() int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string]topic)}
}

// Topics lists registered topic names in sorted order.
func (b *Bus) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.topics))
	for name := range b.topics {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Register returns the topic called name with payload type T, creating it on
// first use. Registering an existing name with a different payload type is a
// programming error and panics.
func Register[T any](b *Bus, name string) *Topic[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	want := reflect.TypeFor[T]()
	if existing, ok := b.topics[name]; ok {
		if t, ok := existing.(*Topic[T]); ok {
			return t
		}
		panic(fmt.Sprintf("events: topic %q has payload %s, requested %s", name, existing.payloadType(), want))
	}
	t := &Topic[T]{name: name}
	b.topics[name] = t
	return t
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Topic is a named channel with a fixed payload type.
type Topic[T any] struct {
	name string

	mu     sync.RWMutex
	nextID int
	subs   []subscriber[T]
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

func (t *Topic[T]) payloadType() reflect.Type { return reflect.TypeFor[T]() }

// Subscribers reports how many handlers are attached.
func (t *Topic[T]) Subscribers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Subscribe attaches fn and returns the function that detaches it. The
// returned function is idempotent.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.unsubscribe(id) })
	}
}

func (t *Topic[T]) unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers v to every subscriber in subscription order. Handlers run on
// the caller's goroutine, outside the topic lock, so a handler may
// unsubscribe itself.
func (t *Topic[T]) Emit(v T) {
	t.mu.RLock()
	subs := make([]subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// Subscriptions collects detach functions so a component can drop all of
// them at once.
type Subscriptions struct {
	mu    sync.Mutex
	funcs []func()
}

// Add records a detach function.
func (s *Subscriptions) Add(unsubscribe func()) {
	s.mu.Lock()
	s.funcs = append(s.funcs, unsubscribe)
	s.mu.Unlock()
}

// Close detaches everything recorded so far.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	funcs := s.funcs
	s.funcs = nil
	s.mu.Unlock()
	for _, fn := range funcs {
		fn()
	}
}
