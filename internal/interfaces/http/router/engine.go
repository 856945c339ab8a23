package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/webstack/backend/internal/infrastructure/config"
	"github.com/webstack/backend/internal/infrastructure/logger"
	"github.com/webstack/backend/internal/infrastructure/telemetry"
	"github.com/webstack/backend/internal/interfaces/http/handler"
	"github.com/webstack/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// DefaultConsolePath is where the database console is mounted unless configured otherwise
const DefaultConsolePath = "/h2"

// DefaultMetricsPath is where Prometheus scrapes unless configured otherwise
const DefaultMetricsPath = "/metrics"

// rateLimitIdleTTL is how long an idle client keeps its token bucket
const rateLimitIdleTTL = 10 * time.Minute

// Handlers groups the HTTP handlers mounted by the engine.
// A nil Console leaves the database console unmounted.
type Handlers struct {
	Customers  *handler.CustomerHandler
	Invoices   *handler.InvoiceHandler
	Products   *handler.ProductHandler
	Books      *handler.BookHandler
	Publishers *handler.PublisherHandler
	Auth       *handler.AuthHandler
	System     *handler.SystemHandler
	Console    *handler.ConsoleHandler
}

// Dependencies are the collaborators of the engine besides its handlers.
// A nil Metrics disables request metrics and the scrape endpoint.
// The scrape endpoint is also gated by the metrics config.
type Dependencies struct {
	Logger        *zap.Logger
	Authenticator middleware.Authenticator
	Metrics       *telemetry.Metrics
}

// Engine is the configured gin engine with the resources it owns
type Engine struct {
	*gin.Engine
	Rules       *middleware.SecurityRules
	rateLimiter *middleware.RateLimiter
}

// Close releases background resources of the middleware
func (e *Engine) Close() {
	if e.rateLimiter != nil {
		e.rateLimiter.Stop()
	}
}

// NewEngine builds the engine with the middleware chain and every route
func NewEngine(cfg *config.Config, h Handlers, deps Dependencies) (*Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	rules, err := securityRules(cfg)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid trusted proxies: %w", err)
		}
	}

	e := &Engine{Engine: engine, Rules: rules}

	// Order matters:
	// request id and recovery first so every later failure is logged with its id,
	// the security filter after tracing so rejected requests still produce a span.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.SecureHeaders(middleware.HeadersConfigFrom(cfg.Security)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		e.rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitBurst, rateLimitIdleTTL)
		engine.Use(middleware.RateLimit(e.rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Float64("requests_per_second", cfg.HTTP.RateLimitRequests),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Security(rules, deps.Authenticator, log))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())

	engine.NoRoute(middleware.NoRoute())
	engine.NoMethod(middleware.NoMethod())

	r := NewRouter(engine)
	r.Register(routeGroups(h)...)
	if h.Console != nil {
		r.Register(consoleRoutes(consolePath(cfg), h.Console))
	}
	if deps.Metrics != nil && cfg.Metrics.Enabled {
		engine.GET(metricsPath(cfg), gin.WrapH(deps.Metrics.Handler()))
	}
	r.Setup()

	for _, rule := range rules.Rules() {
		log.Debug("Security rule", zap.Stringer("rule", rule))
	}
	return e, nil
}

// securityRules adds permit rules for a console or metrics endpoint moved away from its default path
func securityRules(cfg *config.Config) (*middleware.SecurityRules, error) {
	rules, err := middleware.NewSecurityRules(cfg.Security)
	if err != nil {
		return nil, err
	}
	if p := consolePath(cfg); cfg.Database.ConsoleEnabled && p != DefaultConsolePath {
		if err := rules.Permit(p, p+"/**"); err != nil {
			return nil, err
		}
	}
	if p := metricsPath(cfg); cfg.Metrics.Enabled && p != DefaultMetricsPath {
		if err := rules.Permit("GET " + p); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func consolePath(cfg *config.Config) string {
	if cfg.Database.ConsolePath == "" {
		return DefaultConsolePath
	}
	return normalizePath(cfg.Database.ConsolePath)
}

func metricsPath(cfg *config.Config) string {
	if cfg.Metrics.Path == "" {
		return DefaultMetricsPath
	}
	return normalizePath(cfg.Metrics.Path)
}

func routeGroups(h Handlers) []RouteRegistrar {
	customers := NewDomainGroup("customers", "")
	customers.GET("/customers", h.Customers.List)
	customers.GET("/customers/:id", h.Customers.GetByID)
	customers.GET("/customers/:id/invoices", h.Customers.ListInvoices)
	customers.PUT("/customer", h.Customers.Save)
	customers.DELETE("/customers/:id", h.Customers.Delete)

	invoices := NewDomainGroup("invoices", "")
	invoices.GET("/invoices", h.Invoices.List)
	invoices.GET("/invoices/:id", h.Invoices.GetByID)
	invoices.PUT("/invoice", h.Invoices.Save)
	invoices.DELETE("/invoices/:id", h.Invoices.Delete)

	products := NewDomainGroup("products", "")
	products.GET("/products", h.Products.List)
	products.GET("/products/:id", h.Products.GetByID)
	products.PUT("/product", h.Products.Save)
	products.DELETE("/products/:id", h.Products.Delete)

	books := NewDomainGroup("books", "")
	books.GET("/books", h.Books.List)
	books.GET("/books/:id", h.Books.GetByID)
	books.PUT("/book", h.Books.Save)
	books.PATCH("/books/:id/title", h.Books.UpdateTitle)
	books.DELETE("/books/:id", h.Books.Delete)

	publishers := NewDomainGroup("publishers", "/publishers")
	publishers.GET("", h.Publishers.List)
	publishers.GET("/:id", h.Publishers.GetByID)

	auth := NewDomainGroup("auth", "")
	auth.POST("/auth/token", h.Auth.Token)
	auth.POST("/logout", h.Auth.Logout)

	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	return []RouteRegistrar{customers, invoices, products, books, publishers, auth, system}
}

func consoleRoutes(p string, h *handler.ConsoleHandler) *DomainGroup {
	console := NewDomainGroup("console", p)
	console.GET("", h.Overview)
	console.GET("/tables/:name", h.Table)
	return console
}
