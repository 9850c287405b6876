// internal/app/system/actioncache/actioncache.go

// Package actioncache provides a keyed store of asynchronous-operation state.
// Every UI-triggered operation (fetch, create, update, delete) gets a uniform
// {Data, Err, Loading} lifecycle addressable by a string key, so unrelated
// handlers and views can either share one slot or isolate their own.
//
// Key convention: "<entity>-<id>" (e.g. "announcements-66a1f...", or a bare
// entity name like "groups" for unscoped lists). Keys are arbitrary strings;
// two callers using the same key intentionally share state, and an
// accidental collision is a caller error, not detected here.
//
// The store applies last-writer-wins semantics on completion order: if two
// executions overlap on one key, whichever finishes last owns the slot, even
// if it was issued first. There is no request fencing and Reset does not
// cancel in-flight work. Callers that need strict ordering must use distinct
// keys per logical request.
package actioncache

import (
	"context"
	"sync"

	"github.com/corkboardhq/corkboard/internal/app/system/result"
	"go.uber.org/zap"
)

// State is the observable lifecycle of one key. Data survives a failed
// execution (stale-while-revalidate); Err survives until the next Execute
// or Reset. Both are nil/empty before the first execution.
type State[T any] struct {
	Data    *T
	Err     string
	Loading bool
}

// Unit is a caller-supplied unit of work. It reports its outcome as a
// result.Result; returning a Go error is not part of the contract, and a
// panic is treated like an unexpected failure.
type Unit[T any] func(ctx context.Context) result.Result[T]

// CallOption attaches per-call lifecycle callbacks to Execute.
type CallOption[T any] func(*callbacks[T])

type callbacks[T any] struct {
	onSuccess func(T)
	onError   func(string)
	onSettled func()
}

// OnSuccess registers a callback invoked with the value after a successful
// execution has been stored.
func OnSuccess[T any](fn func(T)) CallOption[T] {
	return func(c *callbacks[T]) { c.onSuccess = fn }
}

// OnError registers a callback invoked with the normalized error message
// after a failed execution has been stored.
func OnError[T any](fn func(string)) CallOption[T] {
	return func(c *callbacks[T]) { c.onError = fn }
}

// OnSettled registers a callback invoked after every execution, success or
// failure, after the success/error callback.
func OnSettled[T any](fn func()) CallOption[T] {
	return func(c *callbacks[T]) { c.onSettled = fn }
}

// Store holds per-key state. Construct one per data shape with New and
// inject it where needed; tests get isolated instances instead of ambient
// shared state. Entries are created lazily on first use and persist until
// Reset.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[string]State[T]
	watchers []func(key string)
	log      *zap.Logger
}

// New constructs an empty Store.
func New[T any](logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T]{
		entries: make(map[string]State[T]),
		log:     logger,
	}
}

// Read returns the current state for key. Keys never executed or freshly
// reset read as the zero state {nil, "", false}.
func (s *Store[T]) Read(key string) State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key]
}

// Reset unconditionally returns key to the zero state. It does not cancel
// an in-flight execution; if one later completes it writes into the reset
// slot, reviving it.
func (s *Store[T]) Reset(key string) {
	s.mu.Lock()
	s.entries[key] = State[T]{}
	s.mu.Unlock()
	s.notify(key)
}

// Watch registers fn to be called with the key after every state change.
// Watchers are how independent readers of a shared key learn about writes
// (e.g. a create operation's success callback re-executing a list fetch).
// Watchers must not block.
func (s *Store[T]) Watch(fn func(key string)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// Execute runs unit under key: marks the key loading (clearing any prior
// error but keeping stale data), awaits the unit, stores the outcome, and
// fires callbacks. It never lets a unit failure escape; panics and raw
// failures are normalized to a generic error message. Execute blocks until
// the unit settles; callers wanting fire-and-forget run it in a goroutine.
func (s *Store[T]) Execute(ctx context.Context, key string, unit Unit[T], opts ...CallOption[T]) {
	var cb callbacks[T]
	for _, opt := range opts {
		opt(&cb)
	}

	s.mu.Lock()
	e := s.entries[key]
	e.Loading = true
	e.Err = ""
	s.entries[key] = e
	s.mu.Unlock()
	s.notify(key)

	res := s.run(ctx, key, unit)

	s.mu.Lock()
	e = s.entries[key]
	e.Loading = false
	if res.OK {
		data := res.Data
		e.Data = &data
		e.Err = ""
	} else {
		// Stale data stays visible alongside the error.
		e.Err = res.Error
	}
	s.entries[key] = e
	s.mu.Unlock()
	s.notify(key)

	if res.OK {
		if cb.onSuccess != nil {
			cb.onSuccess(res.Data)
		}
	} else if cb.onError != nil {
		cb.onError(res.Error)
	}
	if cb.onSettled != nil {
		cb.onSettled()
	}
}

// ExecuteWith is the parameterized call shape: the unit of work is built
// from arg at call time, then handed to Execute under identical state
// semantics.
func ExecuteWith[T, A any](ctx context.Context, s *Store[T], key string, arg A, build func(A) Unit[T], opts ...CallOption[T]) {
	s.Execute(ctx, key, build(arg), opts...)
}

// run invokes the unit with panic containment. A panicking unit is logged
// and normalized to the generic failure message so no execution can crash
// the caller.
func (s *Store[T]) run(ctx context.Context, key string, unit Unit[T]) (res result.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("unit of work panicked",
				zap.String("key", key),
				zap.Any("panic", r))
			res = result.Err[T](result.GenericFailureMessage)
		}
	}()
	res = unit(ctx)
	if !res.OK && res.Error == "" {
		res.Error = result.GenericFailureMessage
	}
	return res
}

func (s *Store[T]) notify(key string) {
	s.mu.Lock()
	watchers := make([]func(string), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(key)
	}
}
