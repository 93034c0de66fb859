package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/middlewares"
	"github.com/mmdatafocus/ghg_reports/storage"
	"github.com/mmdatafocus/ghg_reports/workflow"
)

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
		DB:   0,
	})
}

// usesRedis reports whether the deployment has redis at all; the rate
// limiter only uses the shared window when it does.
func usesRedis(s config.Settings) bool {
	return s.StoreBackend == config.StoreRedis || s.ReportCacheEnabled
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
}

func corsConfig(s config.Settings) cors.Config {
	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist; elsewhere every origin is allowed.
	if s.Production() {
		if len(s.CORSAllowedOrigins) == 0 {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = s.CORSAllowedOrigins
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = true
	return corsConfig
}

func newRouter(a *app, s config.Settings) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsCfg := corsConfig(s)
	// An empty production allowlist means no cross-origin access at all.
	if corsCfg.AllowAllOrigins || len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}

	if s.RateLimitEnabled {
		if usesRedis(s) {
			r.Use(middlewares.NewRateLimiter(getRedisClient(s.RedisAddress), s.RateLimitMax, s.RateLimitWindow).RateLimitMiddleware)
		} else {
			r.Use(middlewares.NewLocalRateLimiter(s.RateLimitMax, s.RateLimitWindow).RateLimitMiddleware)
		}
	}

	r.Use(middlewares.ErrorLogger(a.logger))
	r.Use(gin.Recovery())

	r.GET("/api/health", a.healthHandler)

	api := r.Group("/api", a.readinessGate)
	api.POST("/export/:reportCode", a.exportStateHandler)

	data := api.Group("/data/:userId", middlewares.UserIdMiddleware())
	data.GET("", a.loadDataHandler)
	data.POST("", a.saveDataHandler)

	// a.sessions is only set once the store is open, so resolve it per request.
	forms := api.Group("/forms/:userId", middlewares.UserIdMiddleware(), func(c *gin.Context) {
		middlewares.SessionMiddleware(a.sessions)(c)
	})
	forms.GET("", a.getFormHandler)
	forms.PUT("", a.replaceFormHandler)
	forms.POST("/actions", a.actionHandler)
	forms.POST("/reset/:reportCode", a.resetHandler)
	forms.POST("/save", a.saveFormHandler)
	forms.GET("/export/:reportCode", a.exportSessionHandler)

	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	logger := config.GetLogger()
	settings, err := config.GetSettings()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "settings"}).Fatal(err.Error())
	}
	config.SetLogLevel(settings.LogLevel)
	if settings.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Interrupt locally, SIGTERM from the platform on shutdown.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	a := &app{
		exporter: workflow.NewExporter(settings),
		logger:   logger,
		now:      time.Now,
	}
	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: newRouter(a, settings),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	if settings.ReportCacheEnabled && settings.StoreBackend != config.StoreRedis {
		go func() {
			if err := config.ConnectRedisWithRetry(sigCtx, settings.RedisAddress); err != nil {
				logger.WithFields(logrus.Fields{"field": "redis"}).Warn("report cache disabled: " + err.Error())
			}
		}()
	}
	store, err := storage.Open(sigCtx, settings)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.WithFields(logrus.Fields{"field": "storage"}).Fatal(err.Error())
	}
	defer store.Close()
	sessions := workflow.NewSessionManager(store, settings.SaveDebounce)
	defer sessions.Close()
	a.start(store, sessions)

	logger.WithFields(logrus.Fields{
		"store": settings.StoreBackend,
		"port":  settings.Port,
	}).Info("report service ready")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
