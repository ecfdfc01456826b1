package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/devconnector/devconnector-api/docs"
	"github.com/devconnector/devconnector-api/internal/api/handler"
	"github.com/devconnector/devconnector-api/internal/api/middleware"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Profiles ports.ProfileService
	Posts    ports.PostService
	Accounts ports.AccountService
	Tokens   ports.TokenService

	// Limiter guards registration and login. Nil disables rate limiting.
	Limiter middleware.Limiter
	// Pingers are checked by /health/ready, keyed by dependency name.
	Pingers map[string]handler.Pinger

	// Registerer and Gatherer back the HTTP metrics middleware and /metrics.
	// When Registerer is nil neither is installed.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Logger))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "devconnector",
			Registerer: d.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.Gatherer,
		}))
	}

	// --- Health checks and docs (no auth required) ---
	health := handler.NewHealthHandler(d.Pingers)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authRequired := middleware.Auth(d.Tokens)
	var limited echo.MiddlewareFunc = func(h echo.HandlerFunc) echo.HandlerFunc { return h }
	if d.Limiter != nil {
		limited = middleware.RateLimit(d.Limiter, d.Logger)
	}

	api := e.Group("/api")

	// --- Identity ---
	authHandler := handler.NewAuthHandler(d.Auth)
	api.POST("/users", authHandler.Register, limited)
	api.POST("/auth", authHandler.Login, limited)
	api.GET("/auth", authHandler.Me, authRequired)
	api.POST("/auth/logout", authHandler.Logout, authRequired)

	// --- Profiles ---
	profiles := handler.NewProfileHandler(d.Profiles, d.Accounts)
	api.GET("/profile", profiles.List)
	api.GET("/profile/user/:user_id", profiles.GetByUser)
	api.GET("/profile/github/:username", profiles.GitHubRepos)
	api.GET("/profile/me", profiles.Me, authRequired)
	api.POST("/profile", profiles.Upsert, authRequired)
	api.DELETE("/profile", profiles.DeleteAccount, authRequired)
	api.PUT("/profile/experience", profiles.AddExperience, authRequired)
	api.DELETE("/profile/experience/:exp_id", profiles.RemoveExperience, authRequired)
	api.PUT("/profile/education", profiles.AddEducation, authRequired)
	api.DELETE("/profile/education/:edu_id", profiles.RemoveEducation, authRequired)

	// --- Posts ---
	posts := handler.NewPostHandler(d.Posts)
	pg := api.Group("/posts", authRequired)
	pg.POST("", posts.Create)
	pg.GET("", posts.List)
	pg.GET("/:id", posts.Get)
	pg.DELETE("/:id", posts.Delete)
	pg.PUT("/like/:id", posts.Like)
	pg.PUT("/unlike/:id", posts.Unlike)
	pg.POST("/comment/:id", posts.AddComment)
	pg.DELETE("/comment/:id/:comment_id", posts.DeleteComment)

	return e
}

// requestLogger writes one zerolog line per request.
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
			var ev *zerolog.Event
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Status >= 400:
				ev = log.Warn()
			default:
				ev = log.Info()
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
