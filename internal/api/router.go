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

	_ "github.com/comp0022/film-analytics-api/docs"
	"github.com/comp0022/film-analytics-api/internal/api/handler"
	"github.com/comp0022/film-analytics-api/internal/api/middleware"
	"github.com/comp0022/film-analytics-api/internal/core/ports"
)

// Deps carries everything the router needs. Redis and RateLimitStore are nil
// when Redis is not configured. A nil Registry means the default Prometheus
// registry.
type Deps struct {
	Log            zerolog.Logger
	AuthService    ports.AuthService
	DB             ports.HealthChecker
	Redis          ports.HealthChecker
	RateLimitStore echomiddleware.RateLimiterStore
	AuthRateLimit  int
	CORSOrigins    []string
	TrustedProxies []*net.IPNet
	Registry       *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.IPExtractor = clientIPExtractor(d.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
	}))
	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "film_analytics"}
	handlerCfg := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		metricsCfg.Registerer = d.Registry
		handlerCfg.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	// --- Meta, health probes and docs (no auth required) ---
	health := handler.NewHealthHandler(d.DB, d.Redis)
	e.GET("/", health.Root)
	e.GET("/health", health.Health)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(handlerCfg))
	e.GET(handler.DocsPath, func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, handler.DocsPath+"/index.html")
	})
	e.GET(handler.DocsPath+"/*", echoSwagger.WrapHandler)

	requireUser := middleware.Auth(d.AuthService)

	// --- Auth ---
	auth := handler.NewAuthHandler(d.AuthService)
	limit := middleware.RateLimit(d.RateLimitStore, d.AuthRateLimit)
	a := e.Group("/api/auth")
	a.POST("/register", auth.Register, limit)
	a.POST("/login", auth.Login, limit)
	a.POST("/refresh", auth.Refresh, limit)
	a.GET("/me", auth.Me, requireUser)

	// --- Analytics (placeholders) ---
	movies := handler.NewMovieHandler()
	m := e.Group("/api/movies")
	m.GET("", movies.List)
	m.GET("/:movie_id", movies.Get)
	m.GET("/:movie_id/ratings", movies.Ratings)

	genres := handler.NewGenreHandler()
	g := e.Group("/api/genres")
	g.GET("", genres.List)
	g.GET("/popularity", genres.Popularity)
	g.GET("/polarisation", genres.Polarisation)

	ratings := handler.NewRatingHandler()
	r := e.Group("/api/ratings")
	r.GET("/patterns", ratings.Patterns)
	r.GET("/cross-genre", ratings.CrossGenre)
	r.GET("/low-raters", ratings.LowRaters)
	r.GET("/consistency", ratings.Consistency)

	predictions := handler.NewPredictionHandler()
	p := e.Group("/api/predictions")
	p.POST("/predict", predictions.Predict)
	p.GET("/similar/:movie_id", predictions.Similar)

	personality := handler.NewPersonalityHandler()
	ps := e.Group("/api/personality")
	ps.GET("/traits", personality.Traits)
	ps.GET("/genre-correlation", personality.GenreCorrelation)
	ps.GET("/segments", personality.Segments)

	// --- Collections (bearer token required) ---
	collections := handler.NewCollectionHandler()
	col := e.Group("/api/collections", requireUser)
	col.GET("", collections.List)
	col.POST("", collections.Create)
	col.GET("/:collection_id", collections.Get)
	col.PUT("/:collection_id", collections.Update)
	col.DELETE("/:collection_id", collections.Delete)
	col.POST("/:collection_id/movies", collections.AddMovie)
	col.DELETE("/:collection_id/movies/:movie_id", collections.RemoveMovie)

	return e
}

// clientIPExtractor decides what c.RealIP returns, and so what the auth rate
// limiter keys on. Without trusted proxies the TCP peer is the client and
// forwarding headers are ignored. With them, X-Forwarded-For is walked from
// the right and the first hop outside the trusted ranges wins.
func clientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
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
