package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
	"github.com/alihaimran285-byte/final-project-sub001/services/metrics"
	"github.com/alihaimran285-byte/final-project-sub001/storage/gateway"
)

// Storage exposes the gateway's connection state to the API.
type Storage interface {
	State() gateway.ConnectionState
	Recheck(ctx context.Context) gateway.ConnectionState
}

type Deps struct {
	Conf       *core.Config
	Logger     core.Logger
	RecordSvc  *school.Service
	Storage    Storage
	Metrics    *metrics.Metrics
	Validate   *validator.Validate
	Translator ut.Translator
}

type Server struct {
	deps     *Deps
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps *Deps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", home)

	api := s.app.Group("/api")
	api.GET("/health", s.health)

	auth := newAuthMiddlewares(conf)
	authed := api.Group("", auth.jwt)

	registerRecordsAPI(authed, auth.write, s.deps.RecordSvc)
	authed.GET("/dashboard/stats", s.stats)
	authed.POST("/storage/recheck", s.recheck, auth.admin)
	authed.POST("/auth/token", s.issueToken, auth.admin)
}

// Start blocks until the server stops; the error is sent to Errors().
func (s *Server) Start() {
	s.errors <- s.app.Start(s.deps.Conf.Server.Address)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Masomo API!")
}

func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.deps.Storage.State())
}

func (s *Server) stats(ctx echo.Context) error {
	stats, err := s.deps.RecordSvc.Stats(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (s *Server) recheck(ctx echo.Context) error {
	state := s.deps.Storage.Recheck(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, state)
}
