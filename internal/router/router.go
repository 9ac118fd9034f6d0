package router

import (
	"errors"
	"log/slog"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"blogapi/internal/config"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/handler"
	"blogapi/internal/metrics"
	"blogapi/internal/model"
	"blogapi/internal/ratelimit"
	"blogapi/internal/service"
)

// Deps are the collaborators the HTTP surface needs besides the handlers.
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	AuthService service.AuthService
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	AuthLimiter *ratelimit.KeyedRateLimiter
}

// Handlers groups the endpoint handlers.
type Handlers struct {
	System *handler.SystemHandler
	Auth   *handler.AuthHandler
	Posts  *handler.PostHandler
	Tags   *handler.TagHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, deps Deps, h Handlers) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(deps.Logger)
	// c.RealIP keys the auth limiter, so forwarding headers are only read behind a known proxy.
	if deps.Config.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(requestLogger(deps.Logger))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}

	e.GET("/", h.System.Root)
	e.GET("/health", h.System.Health)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(deps.Gatherer)))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(deps.Config.APIPrefix)
	requireAuth := authMiddleware(deps.AuthService)

	// Public routes
	authGroup := api.Group("/auth")
	register, login := []echo.MiddlewareFunc{}, []echo.MiddlewareFunc{}
	if deps.AuthLimiter != nil {
		register = append(register, deps.AuthLimiter.Middleware())
		login = append(login, deps.AuthLimiter.Middleware())
	}
	authGroup.POST("/register", h.Auth.Register, register...)
	authGroup.POST("/login", h.Auth.Login, login...)
	authGroup.POST("/logout", h.Auth.Logout, requireAuth)
	authGroup.GET("/me", h.Auth.Me, requireAuth)

	posts := api.Group("/posts")
	posts.GET("", h.Posts.List)
	posts.GET("/:id", h.Posts.Get)
	posts.POST("", h.Posts.Create, requireAuth)
	posts.PUT("/:id", h.Posts.Update, requireAuth)
	posts.PATCH("/:id", h.Posts.Update, requireAuth)
	posts.DELETE("/:id", h.Posts.Delete, requireAuth)

	tags := api.Group("/tags")
	tags.GET("", h.Tags.List)
	tags.GET("/:id", h.Tags.Get)
	tags.POST("", h.Tags.Create, requireAuth)
	tags.PUT("/:id", h.Tags.Update, requireAuth)
	tags.PATCH("/:id", h.Tags.Update, requireAuth)
	tags.DELETE("/:id", h.Tags.Delete, requireAuth)
}

// authMiddleware resolves the bearer token to a user through the auth service, so expiry,
// revocation and deleted accounts are all checked in one place.
func authMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.UserContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			user, err := authService.VerifyToken(c.Request().Context(), auth)
			if err != nil {
				return nil, err
			}
			c.Set(handler.TokenContextKey, auth)
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if errors.As(err, &parseErr) {
				return parseErr.Err
			}
			return apperrors.AuthenticationFailed("Not authenticated")
		},
	})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.String("route", c.Path()),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			if user, ok := c.Get(handler.UserContextKey).(*model.User); ok {
				attrs = append(attrs, slog.String("user_id", user.ID.String()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
