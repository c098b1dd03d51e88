package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

var (
	errNoPrimary = errors.New("no primary store configured")

	nowFunc = time.Now // mockable
)

const defaultProbeTimeout = 3 * time.Second

type (
	// ConnectionState is the gateway's cached decision of which store serves calls.
	ConnectionState struct {
		UsingPrimary bool      `json:"usingPrimary"`
		Backend      string    `json:"backend"`
		CheckedAt    time.Time `json:"checkedAt"`
		Reason       string    `json:"reason,omitempty"`
	}

	// Observer is notified of state changes and of every call (eg: metrics).
	Observer interface {
		ObserveState(state ConnectionState)
		ObserveCall(backend, op string, kind school.Kind, elapsed time.Duration, err error)
	}

	Option func(*Gateway)

	// Gateway routes every data-access call to exactly one store: the Primary when its probe
	// succeeded, the Fallback otherwise.
	// The decision is only re-evaluated by Recheck.
	Gateway struct {
		primary      Primary
		fallback     Backend
		log          core.Logger
		probeTimeout time.Duration
		observer     Observer

		recheckMutex sync.Mutex // one probe-and-commit at a time
		mutex        sync.RWMutex
		active       Backend
		state        ConnectionState
	}
)

var _ school.Repository = (*Gateway)(nil)

func WithProbeTimeout(d time.Duration) Option {
	return func(gw *Gateway) {
		if d > 0 {
			gw.probeTimeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(gw *Gateway) { gw.observer = o }
}

// New builds the gateway and probes the primary right away.
// primary may be nil: the fallback then serves every call.
// A failing probe is logged and never returned.
func New(ctx context.Context, primary Primary, fallback Fallback, logger core.Logger, opts ...Option) *Gateway {
	gw := &Gateway{
		primary:      primary,
		fallback:     &fallbackBackend{db: fallback},
		log:          logger,
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(gw)
	}
	gw.Recheck(ctx)
	return gw
}

// probe pings the primary within probeTimeout; panics are turned into errors.
func (gw *Gateway) probe(ctx context.Context) error {
	if gw.primary == nil {
		return errNoPrimary
	}

	ctx, cancel := context.WithTimeout(ctx, gw.probeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errors.Errorf("primary probe panicked: %v", r)
			}
		}()
		done <- gw.primary.Ping(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recheck probes the primary again and switches stores accordingly.
// Records added to the fallback are not migrated to the primary.
// The probe ignores the cancellation of ctx: an aborted caller is not a connectivity failure.
func (gw *Gateway) Recheck(ctx context.Context) ConnectionState {
	gw.recheckMutex.Lock()
	defer gw.recheckMutex.Unlock()

	err := gw.probe(context.WithoutCancel(ctx))

	state := ConnectionState{CheckedAt: nowFunc().UTC()}
	var active Backend
	if err != nil {
		active = gw.fallback
		state.Reason = err.Error()
	} else {
		active = newPrimaryBackend(gw.primary)
		state.UsingPrimary = true
	}
	state.Backend = active.Name()

	gw.mutex.Lock()
	prev := gw.state
	gw.active = active
	gw.state = state
	gw.mutex.Unlock()

	switch {
	case err != nil && err != errNoPrimary:
		gw.log.Warn("primary store unreachable, serving from the fallback store", err)
	case err != nil:
		gw.log.Info("no primary store, serving from the fallback store")
	case prev.Backend != state.Backend:
		gw.log.Info(fmt.Sprintf("serving from the %s store", state.Backend))
	}
	if gw.observer != nil {
		gw.observer.ObserveState(state)
	}
	return state
}

func (gw *Gateway) backend() Backend {
	gw.mutex.RLock()
	defer gw.mutex.RUnlock()
	return gw.active
}

func (gw *Gateway) State() ConnectionState {
	gw.mutex.RLock()
	defer gw.mutex.RUnlock()
	return gw.state
}

func (gw *Gateway) UsingPrimary() bool {
	return gw.State().UsingPrimary
}

func (gw *Gateway) BackendName() string {
	return gw.backend().Name()
}

func (gw *Gateway) observe(backend, op string, kind school.Kind, start time.Time, err error) {
	if gw.observer != nil {
		gw.observer.ObserveCall(backend, op, kind, time.Since(start), err)
	}
}

// ListAll returns every record of kind as detached copies.
// Primary errors are returned as is.
func (gw *Gateway) ListAll(ctx context.Context, kind school.Kind) ([]school.Record, error) {
	b, start := gw.backend(), time.Now()
	records, err := b.ListAll(ctx, kind)
	gw.observe(b.Name(), "list", kind, start, err)
	return records, err
}

// Add stores a new record built from data; the serving store assigns id, createdAt and updatedAt.
// Primary errors are returned as is and nothing is written to the fallback.
func (gw *Gateway) Add(ctx context.Context, kind school.Kind, data school.Record) (school.Record, error) {
	b, start := gw.backend(), time.Now()
	rec, err := b.Add(ctx, kind, data)
	gw.observe(b.Name(), "add", kind, start, err)
	return rec, err
}

func (gw *Gateway) Get(ctx context.Context, kind school.Kind, id string) (school.Record, error) {
	b, start := gw.backend(), time.Now()
	rec, err := b.Get(ctx, kind, id)
	gw.observe(b.Name(), "get", kind, start, err)
	return rec, err
}

func (gw *Gateway) ListStudents(ctx context.Context) ([]school.Record, error) {
	return gw.ListAll(ctx, school.KindStudent)
}

func (gw *Gateway) AddStudent(ctx context.Context, fields school.Record) (school.Record, error) {
	return gw.Add(ctx, school.KindStudent, fields)
}

func (gw *Gateway) ListTeachers(ctx context.Context) ([]school.Record, error) {
	return gw.ListAll(ctx, school.KindTeacher)
}

func (gw *Gateway) AddTeacher(ctx context.Context, fields school.Record) (school.Record, error) {
	return gw.Add(ctx, school.KindTeacher, fields)
}
