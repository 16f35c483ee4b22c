package recentapps

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/actionsum/recentapps/pkg/apps"
)

type result struct {
	list apps.AppList
	err  error
}

// scriptedProvider returns its results in order and repeats the last one
type scriptedProvider struct {
	mu      sync.Mutex
	results []result
	calls   int
	limits  []int

	// block holds the call index (0-based) that must wait on release
	block   map[int]chan struct{}
	entered chan int
}

func newScriptedProvider(results ...result) *scriptedProvider {
	return &scriptedProvider{
		results: results,
		block:   map[int]chan struct{}{},
		entered: make(chan int, 64),
	}
}

func lists(ls ...apps.AppList) []result {
	out := make([]result, len(ls))
	for i, l := range ls {
		out[i] = result{list: l}
	}
	return out
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) RecentApps(_ context.Context, limit int) (apps.AppList, error) {
	p.mu.Lock()
	idx := p.calls
	p.calls++
	p.limits = append(p.limits, limit)
	gate := p.block[idx]
	var r result
	if len(p.results) > 0 {
		r = p.results[min(idx, len(p.results)-1)]
	}
	p.mu.Unlock()

	p.entered <- idx
	if gate != nil {
		<-gate
	}

	if r.err != nil {
		return nil, r.err
	}
	list := r.list
	if len(list) > limit {
		list = list[:limit]
	}
	out := make(apps.AppList, len(list))
	copy(out, list)
	return out, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.once.Do(func() { close(f.stopped) })
}

// tick blocks until the sampling loop has taken the tick
func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("sampling loop did not take the tick")
	}
}

// outcomeRecorder forwards every sample outcome to a channel
type outcomeRecorder struct {
	outcomes chan Outcome

	mu      sync.Mutex
	queries int
	errs    int
}

func newOutcomeRecorder() *outcomeRecorder {
	return &outcomeRecorder{outcomes: make(chan Outcome, 256)}
}

func (r *outcomeRecorder) ObserveQuery(_ string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	if err != nil {
		r.errs++
	}
}

func (r *outcomeRecorder) ObserveSample(_ string, outcome Outcome) {
	r.outcomes <- outcome
}

// waitStep waits for the outcome that ends a sampling step and returns
// every outcome seen on the way
func (r *outcomeRecorder) waitStep(t *testing.T) []Outcome {
	t.Helper()
	var seen []Outcome
	for {
		select {
		case o := <-r.outcomes:
			seen = append(seen, o)
			if o != OutcomeDropped {
				return seen
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no sample outcome, seen so far: %v", seen)
			return seen
		}
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("updates channel closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
	var zero T
	return zero
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer loop did not exit")
	}
}
