package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/alihaimran285-byte/final-project-sub001/apps/api/echo"
	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
	logsvc "github.com/alihaimran285-byte/final-project-sub001/services/logger"
	"github.com/alihaimran285-byte/final-project-sub001/services/metrics"
	"github.com/alihaimran285-byte/final-project-sub001/storage/database"
	inmemdb "github.com/alihaimran285-byte/final-project-sub001/storage/database/inmem"
	"github.com/alihaimran285-byte/final-project-sub001/storage/gateway"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(os.Stdout, "API", conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(os.Stdout, "DB", conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newPrimaryStore returns nil for the memory engine.
func newPrimaryStore(conf *core.Config, loggerParam DBLoggerParam) (database.PrimaryStore, error) {
	store, err := database.OpenPrimary(conf, loggerParam.Logger)
	if err == database.ErrNoPrimary {
		return nil, nil
	}
	return store, err
}

// newFallbackStore seeds the fallback collections; a malformed seed file stops the startup.
func newFallbackStore(conf *core.Config, loggerParam DBLoggerParam) (*inmemdb.DB, error) {
	seed, err := inmemdb.LoadSeed(conf.Database.SeedFile)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", conf.Database.SeedFile)
	}
	var n int
	for _, records := range seed {
		n += len(records)
	}
	loggerParam.Logger.Debug(fmt.Sprintf("fallback store seeded with %d records", n))
	return inmemdb.Open(seed), nil
}

func newGateway(
	conf *core.Config,
	primary database.PrimaryStore,
	fallback *inmemdb.DB,
	loggerParam DBLoggerParam,
	m *metrics.Metrics,
) *gateway.Gateway {
	return gateway.New(
		context.Background(),
		database.Primary(primary),
		fallback,
		loggerParam.Logger,
		gateway.WithProbeTimeout(conf.Database.ProbeTimeout),
		gateway.WithObserver(m),
	)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	svc *school.Service,
	gw *gateway.Gateway,
	m *metrics.Metrics,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		RecordSvc:  svc,
		Storage:    gw,
		Metrics:    m,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(metrics.New))
	must(c.Provide(newPrimaryStore))
	must(c.Provide(newFallbackStore))
	must(c.Provide(newGateway))
	must(c.Provide(func(gw *gateway.Gateway) school.Repository { return gw }))
	must(c.Provide(school.NewService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
