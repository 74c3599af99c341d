package api

import (
	"net"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/videotube/videotube-api/docs"
	"github.com/videotube/videotube-api/internal/api/handler"
	"github.com/videotube/videotube-api/internal/api/middleware"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is wired to.
type Dependencies struct {
	Auth      ports.AuthService
	Profile   ports.ProfileService
	Channels  ports.ChannelService
	Tokens    ports.TokenIssuer
	Blacklist ports.TokenBlacklist
	Users     middleware.UserFinder
	Limiter   middleware.Limiter
	Health    map[string]handler.Pinger
	Log       zerolog.Logger
}

// Options tune the transport. Registerer and Gatherer default to the global
// Prometheus registry.
type Options struct {
	CORSOrigins []string
	BodyLimit   string
	Cookies     handler.CookieOptions

	// TrustedProxies may set X-Forwarded-For. Without any, the client IP is
	// the peer address and forwarding headers are ignored.
	TrustedProxies []*net.IPNet
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "16M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.IPExtractor = ipExtractor(opts.TrustedProxies)
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "videotube",
		Registerer: opts.Registerer,
	}))

	authHandler := handler.NewAuthHandler(deps.Auth, opts.Cookies)
	userHandler := handler.NewUserHandler(deps.Profile)
	channelHandler := handler.NewChannelHandler(deps.Channels)
	requireAuth := middleware.Auth(deps.Tokens, deps.Blacklist, deps.Users, deps.Log)

	v1 := e.Group("/api/v1")

	// --- Users ---
	users := v1.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login, middleware.RateLimit(deps.Limiter, "login", deps.Log))
	users.POST("/refresh-token", authHandler.RefreshToken, middleware.RateLimit(deps.Limiter, "refresh", deps.Log))

	users.POST("/logout", authHandler.Logout, requireAuth)
	users.POST("/change-password", authHandler.ChangePassword, requireAuth)
	users.GET("/current-user", authHandler.CurrentUser, requireAuth)
	users.PATCH("/update-details", userHandler.UpdateDetails, requireAuth)
	users.PATCH("/update-avatar", userHandler.UpdateAvatar, requireAuth)
	users.PATCH("/update-cover-image", userHandler.UpdateCoverImage, requireAuth)
	users.GET("/channel/:username", channelHandler.ChannelProfile, requireAuth)
	users.GET("/watch-history", channelHandler.WatchHistory, requireAuth)

	// --- Subscriptions ---
	v1.POST("/subscriptions/c/:channelId", channelHandler.ToggleSubscription, requireAuth)

	// --- Operational ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// ipExtractor resolves the client IP used for rate limiting. Forwarded
// headers count only when the peer is one of the trusted proxies.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

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
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
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
