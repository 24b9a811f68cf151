package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/auth"
	"github.com/abhishek017/GradPilot/internal/config"
	"github.com/abhishek017/GradPilot/internal/graduate"
	"github.com/abhishek017/GradPilot/internal/handler"
	"github.com/abhishek017/GradPilot/internal/httpmiddleware"
	"github.com/abhishek017/GradPilot/internal/photo"
	"github.com/abhishek017/GradPilot/internal/stage"
	"github.com/abhishek017/GradPilot/internal/store"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	photos, err := photo.NewStore(cfg.MediaDir, logger)
	if err != nil {
		return err
	}

	gradRepo := graduate.NewRepository(db.Client)
	grads := graduate.NewService(gradRepo, redisClient.Client, cfg.CountsCacheTTL, logger)
	stageSvc := stage.NewService(gradRepo, stage.NewRepository(db.Client), logger)

	h := handler.New(grads, stageSvc, photos, handler.AuthConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		StaffUser:  cfg.StaffUser,
		StaffPass:  cfg.StaffPass,
	}, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/auth/refresh", h.Refresh)

	// The big screen polls this; it stays open alongside the photo files.
	r.GET("/v1/stage/display", h.StageDisplay)
	r.Static("/media", photos.Dir())

	staffOnly := r.Group("/v1", auth.StaffAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	staffOnly.GET("/admin/dashboard", h.Dashboard)
	staffOnly.GET("/graduates", h.ListGraduates)
	staffOnly.GET("/graduates/search", h.SearchGraduates)
	staffOnly.GET("/graduates/:id", h.GetGraduate)
	staffOnly.PUT("/graduates/:id", h.UpdateAdmin)
	staffOnly.PUT("/graduates/:id/checkin", h.UpdateCheckIn)
	staffOnly.PUT("/graduates/:id/gown", h.UpdateGown)

	staffOnly.GET("/stage/control", h.StageControl)
	staffOnly.POST("/stage/reset", h.StageReset)
	staffOnly.POST("/stage/show", h.StageShow)
	staffOnly.POST("/stage/next", h.StageNext)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
