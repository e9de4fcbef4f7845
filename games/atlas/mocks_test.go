/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- TickerCreator ---

type mockTickers struct {
	mock.Mock
}

func (m *mockTickers) Create(d time.Duration) (<-chan time.Time, func()) {
	args := m.Called(d)

	return args.Get(0).(chan time.Time), args.Get(1).(func())
}

// --- PlaceService ---

type mockPlaces struct {
	mock.Mock
}

func (m *mockPlaces) StartsWith(_ context.Context, letter byte) ([]string, error) {
	args := m.Called(letter)

	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPlaces) Validate(_ context.Context, name string) (bool, error) {
	args := m.Called(name)

	return args.Bool(0), args.Error(1)
}

// --- Sender ---

type recorder struct {
	mu   sync.Mutex
	msgs []any
}

func (r *recorder) Send(msg any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.msgs = append(r.msgs, msg)

	return true
}

func (r *recorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]any, len(r.msgs))
	copy(out, r.msgs)

	return out
}

// messagesOf returns every message of type T received by r, oldest first.
func messagesOf[T any](r *recorder) []T {
	var out []T

	for _, msg := range r.snapshot() {
		if m, ok := msg.(T); ok {
			out = append(out, m)
		}
	}

	return out
}

// --- afterFunc ---

type fakeAfter struct {
	mu      sync.Mutex
	fns     []func()
	stopped []bool
}

type fakeStop struct {
	after *fakeAfter
	i     int
}

func (s fakeStop) Stop() bool {
	s.after.mu.Lock()
	defer s.after.mu.Unlock()

	was := s.after.stopped[s.i]
	s.after.stopped[s.i] = true

	return !was
}

func (a *fakeAfter) schedule(_ time.Duration, f func()) stopper {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.fns = append(a.fns, f)
	a.stopped = append(a.stopped, false)

	return fakeStop{after: a, i: len(a.fns) - 1}
}

func (a *fakeAfter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.fns)
}

func (a *fakeAfter) fire(i int) {
	a.mu.Lock()
	f := a.fns[i]
	a.mu.Unlock()

	f()
}
