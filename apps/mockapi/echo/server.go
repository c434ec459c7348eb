package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
)

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		Svc            *school.Service
		Validator      *core.Validator
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Logger == nil {
		opts.Logger = core.NopLogger
	}
	if opts.Validator == nil {
		opts.Validator = school.NewValidator()
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	h := &handlers{svc: s.opts.Svc, validate: s.opts.Validator}
	s.app.POST("/login", h.login)
	registerAdminAPI(s.app.Group("/admin", roleMiddleware(h.svc, school.RoleAdmin)), h)
	registerStudentAPI(s.app.Group("/students/:id", roleMiddleware(h.svc, school.RoleStudent), ownerMiddleware), h)
	registerTeacherAPI(s.app.Group("/teacher", roleMiddleware(h.svc, school.RoleTeacher)), h)
}

func (s *server) Start() error {
	if err := s.app.Start(s.opts.Address); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Eduportal development API!")
}

type handlers struct {
	svc      *school.Service
	validate *core.Validator
}
