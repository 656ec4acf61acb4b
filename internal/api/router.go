package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ideaboard/idea-voting/docs"
	"github.com/ideaboard/idea-voting/internal/api/handler"
	"github.com/ideaboard/idea-voting/internal/api/middleware"
	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/core/ports"
)

// Dependencies is everything the router needs from main.
type Dependencies struct {
	Auth   ports.AuthService
	Ideas  ports.IdeaService
	Votes  ports.VoteService
	Tokens ports.TokenService

	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]handler.Pinger

	Log zerolog.Logger

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Clock is handed to the guard. Nil means time.Now.
	Clock func() time.Time

	// AllowOrigins is the CORS origin list. Empty means any origin.
	AllowOrigins []string
}

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	access  middleware.Access
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if len(deps.AllowOrigins) == 0 {
		deps.AllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "votingapi",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	ideaHandler := handler.NewIdeaHandler(deps.Ideas)
	voteHandler := handler.NewVoteHandler(deps.Votes)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Ready)

	admin := middleware.AuthenticatedWithRole(domain.RoleAdmin)
	user := middleware.AuthenticatedWithRole(domain.RoleUser)

	routes := []route{
		{http.MethodPost, "/auth/register", authHandler.Register, middleware.Public},
		{http.MethodPost, "/auth/login", authHandler.Login, middleware.Public},
		{http.MethodGet, "/auth/admin-dashboard", authHandler.AdminDashboard, admin},
		{http.MethodGet, "/auth/user-dashboard", authHandler.UserDashboard, user},

		{http.MethodGet, "/ideas", ideaHandler.List, middleware.AuthenticatedOnly},
		{http.MethodPost, "/ideas", ideaHandler.Create, admin},

		{http.MethodPost, "/vote", voteHandler.Cast, middleware.AuthenticatedOnly},
		{http.MethodGet, "/vote/all", voteHandler.All, admin},
		{http.MethodGet, "/vote/idea/:id", voteHandler.CountForIdea, middleware.AuthenticatedOnly},
		{http.MethodGet, "/vote/my-votes", voteHandler.MyVotes, middleware.AuthenticatedOnly},

		{http.MethodGet, "/health", healthHandler.Liveness, middleware.Public},
		{http.MethodGet, "/health/ready", healthDepsHandler.Readiness, middleware.Public},
		{http.MethodGet, "/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}), middleware.Public},
		{http.MethodGet, "/swagger/*", echoSwagger.WrapHandler, middleware.Public},
	}

	for _, r := range routes {
		e.Add(r.method, r.path, r.handler, middleware.Guard(deps.Tokens, r.access, deps.Clock))
	}

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
