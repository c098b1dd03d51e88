package gateway

import (
	"context"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

type (
	// Primary is the persistent document store driver.
	// It assigns ids & timestamps on Create and reports connectivity through Ping.
	Primary interface {
		Ping(ctx context.Context) error
		FindAll(ctx context.Context, kind school.Kind) ([]school.Record, error)
		Create(ctx context.Context, kind school.Kind, fields school.Record) (school.Record, error)
		FindByID(ctx context.Context, kind school.Kind, id string) (school.Record, error)
	}

	// Fallback is the process-local store used while the Primary is unreachable.
	Fallback interface {
		List(kind school.Kind) []school.Record
		Append(kind school.Kind, data school.Record) school.Record
		Find(kind school.Kind, id string) (school.Record, error)
	}

	// Backend is the store currently serving the gateway's calls.
	Backend interface {
		Name() string
		ListAll(ctx context.Context, kind school.Kind) ([]school.Record, error)
		Add(ctx context.Context, kind school.Kind, data school.Record) (school.Record, error)
		Get(ctx context.Context, kind school.Kind, id string) (school.Record, error)
	}

	namer interface {
		Name() string
	}
)

type primaryBackend struct {
	store Primary
	name  string
}

var _ Backend = (*primaryBackend)(nil)

func newPrimaryBackend(store Primary) *primaryBackend {
	name := "primary"
	if n, ok := store.(namer); ok {
		name = n.Name()
	}
	return &primaryBackend{store: store, name: name}
}

func (b *primaryBackend) Name() string { return b.name }

func (b *primaryBackend) ListAll(ctx context.Context, kind school.Kind) ([]school.Record, error) {
	records, err := b.store.FindAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	return school.CloneAll(records), nil
}

// Add leaves id & timestamps to the store.
func (b *primaryBackend) Add(ctx context.Context, kind school.Kind, data school.Record) (school.Record, error) {
	rec, err := b.store.Create(ctx, kind, data.Fields())
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (b *primaryBackend) Get(ctx context.Context, kind school.Kind, id string) (school.Record, error) {
	rec, err := b.store.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// FallbackName is the backend name reported while serving from the Fallback.
const FallbackName = "memory"

type fallbackBackend struct {
	db Fallback
}

var _ Backend = (*fallbackBackend)(nil)

func (b *fallbackBackend) Name() string { return FallbackName }

func (b *fallbackBackend) ListAll(_ context.Context, kind school.Kind) ([]school.Record, error) {
	return b.db.List(kind), nil
}

func (b *fallbackBackend) Add(_ context.Context, kind school.Kind, data school.Record) (school.Record, error) {
	return b.db.Append(kind, data), nil
}

func (b *fallbackBackend) Get(_ context.Context, kind school.Kind, id string) (school.Record, error) {
	return b.db.Find(kind, id)
}
