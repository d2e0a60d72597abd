package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/config"
	"github.com/yourusername/jobhunter-dashboard/internal/gateway"
	"github.com/yourusername/jobhunter-dashboard/internal/handler"
	"github.com/yourusername/jobhunter-dashboard/internal/middleware"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/session"
	"github.com/yourusername/jobhunter-dashboard/internal/store"
	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("api", cfg.APIURL).Msg("Starting Job Hunter dashboard")

	// ── Client storage ───────────────────────────────────
	ctx := context.Background()
	var sessionStore store.SessionStore
	if cfg.DatabaseURL != "" {
		migrator, err := store.NewMigrator(cfg.DatabaseURL, "")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open migrations")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate storage schema")
		}
		if err := migrator.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close migrator")
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		sessionStore = store.NewPostgresStore(pool, cfg.APIURL)
		log.Info().Msg("Client storage: postgres")
	} else {
		fileStore, err := store.NewFileStore(cfg.StorageDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open client storage")
		}
		sessionStore = fileStore
		log.Info().Str("dir", cfg.StorageDir).Msg("Client storage: file")
	}

	// ── Session & views ──────────────────────────────────
	api := gateway.NewClient(ctx, cfg.APIURL, sessionStore)
	sess := session.New(api)
	toasts := notify.NewCenter(50)

	// Subscribe before restoring so a stored user gets views mounted
	mounter := view.NewMounter(view.Deps{
		API:     api,
		Session: sess,
		Toasts:  toasts,
		Catalog: cfg.Catalog,
	}, sess)
	sess.Restore()

	// ── Handlers ─────────────────────────────────────────
	authHandler := handler.NewAuthHandler(view.NewLogin(sess, toasts), sess)
	viewHandler := handler.NewViewHandler(mounter)
	toastHandler := handler.NewToastHandler(toasts)

	// ── Middleware ────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, 5*time.Minute)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "jobhunter-dashboard",
			"session": sess.State(),
			"time":    time.Now().UTC(),
		})
	})

	// ── Public Routes ────────────────────────────────────
	public := r.Group("/", rateLimiter.Limit())
	{
		public.GET("/session", authHandler.Session)
		public.POST("/auth/login", authHandler.Login)
		public.GET("/toasts", toastHandler.Drain)
	}

	// ── Signed-in Routes ─────────────────────────────────
	views := r.Group("/", middleware.RequireSession(sess), rateLimiter.Limit())
	{
		views.POST("/auth/logout", authHandler.Logout)

		// Dashboard
		views.GET("/views/dashboard", viewHandler.Dashboard)

		// Job feed
		views.GET("/views/jobs", viewHandler.Jobs)
		views.POST("/views/jobs/refresh", viewHandler.RefreshJobs)
		views.POST("/views/jobs/more", viewHandler.MoreJobs)
		views.PUT("/views/jobs/filters", viewHandler.SetJobFilters)
		views.DELETE("/views/jobs/filters", viewHandler.ResetJobFilters)
		views.POST("/views/jobs/:id/apply", viewHandler.ApplyToJob)

		// Application tracker
		views.GET("/views/applications", viewHandler.Applications)
		views.PUT("/views/applications/expand", viewHandler.ExpandApplications)
		views.POST("/views/applications/more", viewHandler.MoreApplications)
		views.POST("/views/applications/:id/applied", viewHandler.MarkApplied)
		views.PATCH("/views/applications/:id", viewHandler.UpdateApplication)

		// Portals
		views.GET("/views/portals", viewHandler.Portals)
		views.PUT("/views/portals/:portal/enabled", viewHandler.TogglePortal)
		views.PUT("/views/portals/:portal/priority", viewHandler.SetPortalPriority)
		views.PUT("/views/portals/:portal/config", viewHandler.SavePortalConfig)
		views.POST("/views/portals/:portal/test", viewHandler.TestPortalKey)

		// Preferences
		views.GET("/views/preferences", viewHandler.Preferences)
		views.PUT("/views/preferences", viewHandler.EditPreferences)
		views.POST("/views/preferences/save", viewHandler.SavePreferences)
		views.POST("/views/preferences/resume/validate", viewHandler.ValidateResume)

		// Analytics & schedule
		views.GET("/views/analytics", viewHandler.Analytics)
		views.GET("/views/schedule", viewHandler.Schedule)
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("Dashboard server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if set := mounter.Current(); set != nil {
		set.Close()
	}

	log.Info().Msg("Server stopped")
}

// requestLogger logs every request with zerolog, tagged with the signed-in
// user once the session middleware has run
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Str("user", middleware.GetUserID(c)).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
