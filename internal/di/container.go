package di

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/anandpskerala/ArticleHubBackend/internal/handler"
	"github.com/anandpskerala/ArticleHubBackend/internal/media"
	"github.com/anandpskerala/ArticleHubBackend/internal/middleware"
	"github.com/anandpskerala/ArticleHubBackend/internal/repository"
	"github.com/anandpskerala/ArticleHubBackend/internal/service"
	"github.com/anandpskerala/ArticleHubBackend/pkg/config"
	"github.com/anandpskerala/ArticleHubBackend/pkg/database"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
	pkgmw "github.com/anandpskerala/ArticleHubBackend/pkg/middleware"
	"github.com/anandpskerala/ArticleHubBackend/pkg/redis"
	"github.com/anandpskerala/ArticleHubBackend/pkg/telemetry"
)

// Container holds all dependencies of the API server
type Container struct {
	// Infrastructure
	DB     *database.PostgresDB
	Redis  *redis.Client
	Media  media.Store
	Logger *logger.Logger

	// Repositories
	UserRepo    repository.UserRepository
	ArticleRepo repository.ArticleRepository

	// Services
	Signer         *service.TokenSigner
	SessionManager service.SessionManager
	ArticleService service.ArticleService

	// Handlers
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	ArticleHandler *handler.ArticleHandler

	config *config.Config
}

// ContainerConfig contains what the container is built from. A nil DB
// selects the in-memory repositories; a nil Redis disables idempotency.
type ContainerConfig struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *database.PostgresDB
	Redis     *redis.Client
	Media     media.Store
	Publisher service.EventPublisher
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg.Config == nil {
		return nil, errors.New("di: config is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}
	store := cfg.Media
	if store == nil {
		store = media.NewMemoryStore(cfg.Config.Media.PublicURL, cfg.Config.Media.Folder)
	}

	c := &Container{
		DB:     cfg.DB,
		Redis:  cfg.Redis,
		Media:  store,
		Logger: log,
		config: cfg.Config,
	}

	// Initialize repositories
	if c.DB != nil {
		c.UserRepo = repository.NewPostgresUserRepository(c.DB.Pool())
		c.ArticleRepo = repository.NewPostgresArticleRepository(c.DB.Pool())
	} else {
		users := repository.NewMemoryUserRepository()
		c.UserRepo = users
		c.ArticleRepo = repository.NewMemoryArticleRepository(users)
	}

	// Initialize services
	jwtCfg := cfg.Config.JWT
	signer, err := service.NewTokenSigner(service.TokenSignerConfig{
		Secret:     jwtCfg.Secret,
		AccessTTL:  jwtCfg.AccessTokenTTL,
		RefreshTTL: jwtCfg.RefreshTokenTTL,
		Issuer:     jwtCfg.Issuer,
	})
	if err != nil {
		return nil, err
	}
	c.Signer = signer
	c.SessionManager = service.NewSessionManager(c.UserRepo, service.NewBcryptHasher(jwtCfg.BcryptCost), signer, log)
	c.ArticleService = service.NewArticleService(c.ArticleRepo, store, cfg.Publisher, log)

	// Initialize handlers
	deps := map[string]handler.Pinger{}
	if c.DB != nil {
		deps["database"] = c.DB
	}
	if c.Redis != nil {
		deps["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(cfg.Config.App.Name, deps)
	c.AuthHandler = handler.NewAuthHandler(c.SessionManager, handler.CookieOptions{
		Domain: cfg.Config.Cookie.Domain,
		Secure: cfg.Config.Cookie.Secure,
	})
	c.ArticleHandler = handler.NewArticleHandler(c.ArticleService)

	return c, nil
}

// Router builds the gin engine with every route mounted under /api
func (c *Container) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkgmw.RequestID())
	router.Use(telemetry.Middleware())
	router.Use(pkgmw.AccessLog(c.Logger))
	router.Use(pkgmw.CORS(pkgmw.FrontendCORSConfig(c.config.CORS.FrontendURL)))
	router.MaxMultipartMemory = handler.MaxImageSize

	// Health check endpoints
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	api := router.Group("/api")
	{
		// Public endpoints
		api.POST("/register", c.AuthHandler.Register)
		api.POST("/login", c.AuthHandler.Login)
		api.POST("/refresh", c.AuthHandler.Refresh)
		api.DELETE("/logout", c.AuthHandler.Logout)

		// Protected endpoints
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(c.Signer))
		{
			protected.POST("/verify", c.AuthHandler.Verify)
			protected.PUT("/profile", c.AuthHandler.UpdateProfile)

			create := []gin.HandlerFunc{}
			if c.Redis != nil {
				create = append(create, pkgmw.Idempotency(pkgmw.DefaultIdempotencyConfig(c.Redis)))
			}
			create = append(create, c.ArticleHandler.Create)
			protected.POST("/article", create...)

			protected.PATCH("/article/:id", c.ArticleHandler.Edit)
			protected.DELETE("/article/:id", c.ArticleHandler.Delete)
			protected.GET("/articles", c.ArticleHandler.List)
			protected.PATCH("/like/:id", c.ArticleHandler.Like)
			protected.DELETE("/like/:id", c.ArticleHandler.Unlike)
			protected.PATCH("/block/:id", c.ArticleHandler.Block)
			protected.DELETE("/block/:id", c.ArticleHandler.Unblock)
		}
	}

	return router
}
