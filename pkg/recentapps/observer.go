package recentapps

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/pkg/apps"
)

// State is the lifecycle position of an Observer
type State int32

const (
	Idle State = iota
	Sampling
	Emitting
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case Emitting:
		return "emitting"
	default:
		return "cancelled"
	}
}

// ErrObserverStarted is returned when Start is called more than once
var ErrObserverStarted = errors.New("observer already started")

// sampleFunc produces one sample. ok is false when the tick has no value.
type sampleFunc[T any] func(ctx context.Context) (value T, ok bool, err error)

// ticker is the part of time.Ticker the sampling loop needs
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Observer resamples a query on a timer and delivers distinct values.
//
// Samples run on the observer's own goroutine. A sample equal to the last
// delivered value is discarded. Updates has capacity 1 and always holds the
// newest undelivered value: a slow consumer skips intermediate values
// instead of building a backlog.
type Observer[T any] struct {
	name   string
	period time.Duration
	sample sampleFunc[T]
	equal  func(a, b T) bool
	clone  func(T) T

	logger    zerolog.Logger
	recorder  Recorder
	newTicker func(time.Duration) ticker

	updates chan T
	done    chan struct{}
	state   atomic.Int32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	err     error
}

func newObserver[T any](name string, period time.Duration, sample func(context.Context) (T, bool, error), equal func(a, b T) bool, clone func(T) T, c *Client) *Observer[T] {
	return &Observer[T]{
		name:      name,
		period:    period,
		sample:    sample,
		equal:     equal,
		clone:     clone,
		logger:    c.logger.With().Str("observer", name).Logger(),
		recorder:  c.recorder,
		newTicker: newTimeTicker,
		updates:   make(chan T, 1),
		done:      make(chan struct{}),
	}
}

// Start begins sampling. The first sample is taken immediately; later ones
// once per period until ctx is done or Stop is called.
func (o *Observer[T]) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		if o.State() == Cancelled {
			return errors.Wrap(context.Canceled, "observer is cancelled")
		}
		return ErrObserverStarted
	}
	o.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	go o.run(loopCtx)
	return nil
}

// Stop cancels the observer. A sample already in flight completes but is
// not delivered. Stop does not wait for the loop to exit; use Done for that.
func (o *Observer[T]) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.Store(int32(Cancelled))

	if !o.started {
		o.started = true
		close(o.updates)
		close(o.done)
		return
	}
	if o.cancel != nil {
		o.cancel()
	}
}

// Updates delivers distinct values. It is closed once the observer stops.
func (o *Observer[T]) Updates() <-chan T {
	return o.updates
}

// Done is closed when the sampling loop has exited
func (o *Observer[T]) Done() <-chan struct{} {
	return o.done
}

// State reports the current lifecycle state
func (o *Observer[T]) State() State {
	return State(o.state.Load())
}

// Err returns the precondition failure that stopped the observer, if any
func (o *Observer[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// setState moves between the running states; Cancelled is terminal
func (o *Observer[T]) setState(s State) {
	for {
		cur := o.state.Load()
		if State(cur) == Cancelled {
			return
		}
		if o.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

func (o *Observer[T]) run(ctx context.Context) {
	defer close(o.done)
	defer close(o.updates)
	defer o.state.Store(int32(Cancelled))

	o.logger.Debug().Dur("period", o.period).Msg("Observer started")

	t := o.newTicker(o.period)
	defer t.Stop()

	var (
		last    T
		emitted bool
	)

	if !o.step(ctx, &last, &emitted) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			o.logger.Debug().Msg("Observer stopped")
			return
		case <-t.C():
			if !o.step(ctx, &last, &emitted) {
				return
			}
		}
	}
}

// step takes one sample and delivers it if it differs from the last
// delivered value. It returns false when the loop must exit.
func (o *Observer[T]) step(ctx context.Context, last *T, emitted *bool) bool {
	if ctx.Err() != nil {
		return false
	}

	o.setState(Sampling)
	value, ok, err := o.sample(ctx)

	if ctx.Err() != nil {
		o.recorder.ObserveSample(o.name, OutcomeDiscarded)
		return false
	}

	if err != nil {
		if apps.IsInvalidArgument(err) {
			o.fail(err)
			return false
		}
		o.recorder.ObserveSample(o.name, OutcomeFailed)
		o.logger.Warn().Err(err).Msg("Sample failed, skipping tick")
		return true
	}

	if !ok {
		o.recorder.ObserveSample(o.name, OutcomeEmpty)
		return true
	}

	o.setState(Emitting)
	if *emitted && o.equal(*last, value) {
		o.recorder.ObserveSample(o.name, OutcomeSuppressed)
		return true
	}

	// Stop may have landed while the sample was compared
	if ctx.Err() != nil || o.State() == Cancelled {
		o.recorder.ObserveSample(o.name, OutcomeDiscarded)
		return false
	}

	*last = o.clone(value)
	*emitted = true
	o.deliver(value)
	return true
}

// deliver replaces any value the consumer has not picked up yet
func (o *Observer[T]) deliver(value T) {
	select {
	case o.updates <- value:
		o.recorder.ObserveSample(o.name, OutcomeEmitted)
		return
	default:
	}

	select {
	case <-o.updates:
		o.recorder.ObserveSample(o.name, OutcomeDropped)
	default:
	}

	// the loop is the only sender, so the buffer has room now
	o.updates <- value
	o.recorder.ObserveSample(o.name, OutcomeEmitted)
}

func (o *Observer[T]) fail(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()

	o.recorder.ObserveSample(o.name, OutcomeFailed)
	o.logger.Error().Err(err).Msg("Observer stopped on precondition failure")
}

func checkPeriod(period time.Duration) error {
	if period <= 0 {
		return apps.InvalidArgument("period must be positive, got %v", period)
	}
	return nil
}

// ObserveRecentApps returns an idle observer of the recent-apps list
func (c *Client) ObserveRecentApps(limit int, period time.Duration) (*Observer[apps.AppList], error) {
	if limit < 0 {
		return nil, apps.InvalidArgument("limit must not be negative, got %d", limit)
	}
	if err := checkPeriod(period); err != nil {
		return nil, err
	}

	sample := func(ctx context.Context) (apps.AppList, bool, error) {
		list, err := c.RecentApps(ctx, limit)
		if err != nil {
			return nil, false, err
		}
		return list, true, nil
	}

	clone := func(l apps.AppList) apps.AppList { return slices.Clone(l) }

	return newObserver("recent_apps", period, sample, apps.AppList.Equal, clone, c), nil
}

// ObserveCurrentApp returns an idle observer of the current application.
// When def is empty, ticks without a current application produce nothing;
// otherwise def is substituted.
func (c *Client) ObserveCurrentApp(period time.Duration, def apps.AppID) (*Observer[apps.AppID], error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}

	sample := func(ctx context.Context) (apps.AppID, bool, error) {
		app, ok, err := c.CurrentApp(ctx)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return def, def != "", nil
		}
		return app, true, nil
	}

	same := func(a, b apps.AppID) bool { return a == b }
	keep := func(a apps.AppID) apps.AppID { return a }

	return newObserver("current_app", period, sample, same, keep, c), nil
}

// WatchRecentApps starts an observer with DefaultLimit and DefaultPeriod
func (c *Client) WatchRecentApps(ctx context.Context) (*Observer[apps.AppList], error) {
	o, err := c.ObserveRecentApps(DefaultLimit, DefaultPeriod)
	if err != nil {
		return nil, err
	}
	if err := o.Start(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// WatchCurrentApp starts a current-app observer with DefaultPeriod
func (c *Client) WatchCurrentApp(ctx context.Context) (*Observer[apps.AppID], error) {
	o, err := c.ObserveCurrentApp(DefaultPeriod, "")
	if err != nil {
		return nil, err
	}
	if err := o.Start(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
