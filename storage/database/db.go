package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/storage/database/postgres"
	"github.com/alihaimran285-byte/final-project-sub001/storage/database/surreal"
	"github.com/alihaimran285-byte/final-project-sub001/storage/gateway"
)

// PrimaryStore is a persistent store driver the gateway can route to.
type PrimaryStore interface {
	gateway.Primary
	Name() string
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ PrimaryStore = (*surreal.Store)(nil)
	_ PrimaryStore = (*postgres.Store)(nil)
)

var ErrNoPrimary = errors.New("the memory engine has no primary store")

// OpenPrimary returns the driver of the configured engine, or ErrNoPrimary for the memory engine.
// Nothing is dialed yet.
func OpenPrimary(conf *core.Config, logger core.Logger) (PrimaryStore, error) {
	switch conf.Database.Engine {
	case core.EngineSurrealDB:
		return surreal.New(surreal.NewOptions(conf), logger), nil
	case core.EnginePostgres:
		db, err := postgres.Open(conf)
		if err != nil {
			return nil, err
		}
		return postgres.New(db), nil
	case core.EngineMemory:
		return nil, ErrNoPrimary
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

// Primary adapts OpenPrimary for the gateway: the memory engine yields a nil gateway.Primary.
func Primary(store PrimaryStore) gateway.Primary {
	if store == nil {
		return nil
	}
	return store
}
