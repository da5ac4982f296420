package routes

import (
	"net/http"
	"strings"

	_ "github.com/damoang/angple-memo/docs"
	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/config"
	"github.com/damoang/angple-memo/internal/handler"
	v1handler "github.com/damoang/angple-memo/internal/handler/v1"
	v2handler "github.com/damoang/angple-memo/internal/handler/v2"
	"github.com/damoang/angple-memo/internal/identity"
	"github.com/damoang/angple-memo/internal/middleware"
	"github.com/damoang/angple-memo/internal/repository"
	v2routes "github.com/damoang/angple-memo/internal/routes/v2"
	"github.com/damoang/angple-memo/internal/service"
	pkgcache "github.com/damoang/angple-memo/pkg/cache"
	"github.com/damoang/angple-memo/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies are the external resources the API is built from
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	// Redis is optional; nil disables the identity cache and rate limiting
	Redis *redis.Client
	// IdentityProvider is nil when no provider host could be resolved
	IdentityProvider identity.UserFetcher
	// Mailer is optional; invitations are still created without it
	Mailer service.InvitationMailer
}

// New builds the gin engine with every route and middleware wired
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	sessionRepo := repository.NewSessionRepository(deps.DB)
	profileRepo := repository.NewProfileRepository(deps.DB)
	memoRepo := repository.NewMemoRepository(deps.DB)
	tagRepo := repository.NewTagRepository(deps.DB)
	groupRepo := repository.NewGroupRepository(deps.DB)
	invitationRepo := repository.NewInvitationRepository(deps.DB)

	cacheService := pkgcache.NewService(deps.Redis, pkgcache.WithIdentityTTL(cfg.Identity.CacheTTLDuration()))

	// Identity
	sessionAuth := identity.NewSessionAuthenticator(sessionRepo)
	var providerAuth *identity.ProviderAuthenticator
	var resolver *identity.Resolver
	if deps.IdentityProvider != nil {
		providerAuth = identity.NewProviderAuthenticator(
			jwt.NewVerifier(cfg.Identity.JWTSecret),
			deps.IdentityProvider,
			profileRepo,
			userRepo,
			cacheService,
		)
		resolver = identity.NewResolver(sessionAuth, providerAuth)
	} else {
		resolver = identity.NewResolver(sessionAuth, nil)
	}

	// Services
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.Session.TTL())
	userService := service.NewUserService(userRepo)
	memoService := service.NewMemoService(memoRepo, groupRepo, tagRepo)
	groupService := service.NewGroupService(groupRepo)
	invitationService := service.NewInvitationService(
		invitationRepo, groupRepo, userRepo, deps.Mailer,
		cfg.Invitation.TTL(), cfg.Invitation.AcceptURLBase,
	)
	var provisioningService *service.ProvisioningService
	var forgetter v2handler.TokenForgetter
	if providerAuth != nil {
		provisioningService = service.NewProvisioningService(providerAuth, profileRepo)
		forgetter = providerAuth
	} else {
		provisioningService = service.NewProvisioningService(unavailableVerifier{}, profileRepo)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig(cfg)))

	// Operational
	router.GET("/health", handler.NewHealthHandler(deps.DB, cacheService).Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimitCfg := middleware.DefaultRateLimitConfig()
	rateLimitCfg.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	v1RateLimitCfg := rateLimitCfg
	v1RateLimitCfg.V1Envelope = true
	limiter, v1Limiter := passThrough, passThrough
	if cfg.RateLimit.Enabled {
		limiter = middleware.RateLimit(deps.Redis, rateLimitCfg)
		v1Limiter = middleware.RateLimit(deps.Redis, v1RateLimitCfg)
	}

	// v1: legacy session tokens only
	v1 := router.Group("/api/v1",
		middleware.Deprecation(middleware.DeprecationConfig{
			SunsetDate:        "Fri, 01 Oct 2027 00:00:00 GMT",
			MigrationGuideURL: "/swagger/index.html",
		}),
		v1Limiter,
	)
	v1Sessions := v1handler.NewSessionHandler(authService)
	v1.POST("/sessions", v1Sessions.Login)
	v1.DELETE("/sessions", middleware.RequireAuth(sessionAuth, middleware.WithV1Envelope()), v1Sessions.Logout)

	// v2: session token or provider JWT, header or cookie
	cookie := middleware.WithCookie(cfg.Session.CookieName)
	api := router.Group("/api/v2",
		middleware.OptionalAuth(resolver, cookie),
		limiter,
		middleware.CSRFProtection(cfg.Session.CookieName,
			"POST /api/v2/sessions",
			"POST /api/v2/sessions/provider",
		),
	)
	auth := middleware.RequireAuth(resolver, cookie)

	api.GET("/csrf", middleware.GenerateCSRFToken(!cfg.IsDevelopment()))

	v2routes.SetupSessions(api, v2handler.NewSessionHandler(authService, provisioningService, forgetter, cfg.Session.CookieName, !cfg.IsDevelopment()), auth)
	v2routes.SetupUsers(api, v2handler.NewUserHandler(authService, userService), auth)
	v2routes.SetupMemos(api, v2handler.NewMemoHandler(memoService), auth)
	v2routes.SetupGroups(api, v2handler.NewGroupHandler(groupService), v2handler.NewInvitationHandler(invitationService), auth)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/v1/") {
			common.V1ErrorResponse(c, http.StatusNotFound, "요청한 경로를 찾을 수 없습니다")
			return
		}
		common.V2ErrorResponse(c, http.StatusNotFound, "요청한 경로를 찾을 수 없습니다", nil)
	})

	return router
}

func passThrough(c *gin.Context) { c.Next() }

func corsConfig(cfg *config.Config) cors.Config {
	origins := config.SplitAndTrim(cfg.CORS.AllowOrigins, ",")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-Token", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "Deprecation", "Sunset"},
		MaxAge:           86400,
	}
}
