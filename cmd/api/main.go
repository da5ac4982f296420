package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damoang/angple-memo/internal/config"
	"github.com/damoang/angple-memo/internal/database"
	"github.com/damoang/angple-memo/internal/identity"
	"github.com/damoang/angple-memo/internal/mailer"
	"github.com/damoang/angple-memo/internal/middleware"
	"github.com/damoang/angple-memo/internal/migration"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/internal/routes"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/damoang/angple-memo/pkg/idp"
	pkglogger "github.com/damoang/angple-memo/pkg/logger"
	pkgredis "github.com/damoang/angple-memo/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Memo API
// @version         2.0
// @description     Personal and group memos with legacy session and identity-provider sign-in
//
// @host            localhost:8082
// @BasePath        /api/v2
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token or identity-provider JWT using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv("")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB 연결
	db, err := database.Open(cfg.Database, gormlogger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()
	if err := middleware.RegisterDBStats(sqlDB, cfg.Database.Driver); err != nil {
		pkglogger.Warn("db stats collector not registered: %v", err)
	}
	pkglogger.Info("Connected to %s", cfg.Database.Driver)

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis 연결 (선택)
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			pkglogger.Info("Connected to Redis")
		}
	}

	// Identity provider: the first reachable candidate wins
	var provider identity.UserFetcher
	if len(cfg.Identity.CandidateHosts) > 0 {
		host, err := idp.Discover(ctx, cfg.Identity.CandidateHosts, cfg.Identity.TimeoutDuration())
		if err != nil {
			pkglogger.Warn("Identity provider unreachable: %v (provider sign-in disabled)", err)
		} else {
			provider = idp.NewClient(idp.Options{
				BaseURL: host,
				APIKey:  cfg.Identity.APIKey,
				Timeout: cfg.Identity.TimeoutDuration(),
				Retries: cfg.Identity.Retries,
			})
			pkglogger.Info("Identity provider: %s", host)
		}
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
		Timeout:  cfg.SMTP.TimeoutDuration(),
	})
	if !mail.IsConfigured() {
		pkglogger.Info("SMTP not configured, invitation emails disabled")
	}

	router := routes.New(routes.Dependencies{
		Config:           cfg,
		DB:               db,
		Redis:            redisClient,
		IdentityProvider: provider,
		Mailer:           mail,
	})

	authService := service.NewAuthService(repository.NewUserRepository(db), repository.NewSessionRepository(db), cfg.Session.TTL())
	go purgeSessions(ctx, authService, time.Duration(cfg.Session.PurgeInterval)*time.Minute)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		pkglogger.Info("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	pkglogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("shutdown error: %v", err)
	}
}

// purgeSessions deletes expired legacy sessions until ctx is cancelled
func purgeSessions(ctx context.Context, auth *service.AuthService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				pkglogger.Warn("session purge failed: %v", err)
				continue
			}
			if n > 0 {
				pkglogger.Info("purged %d expired sessions", n)
			}
		}
	}
}
