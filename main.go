package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/config"
	"github.com/yeremiapane/choprek/database"
	"github.com/yeremiapane/choprek/realtime"
	"github.com/yeremiapane/choprek/router"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

func main() {
	utils.InitLogger()
	cfg := config.LoadConfig()
	utils.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Warn("JWT_SECRET is not set, using the development secret")
	}

	// Set gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	feed := realtime.NewFeed()
	hub := realtime.NewHub()
	detach := hub.Attach(feed)
	defer detach()

	// Change monitor meneruskan isi outbox ke feed
	monitor := services.NewChangeMonitor(db, feed)
	monitor.Interval = cfg.ChangePollInterval
	monitor.Start()
	defer monitor.Stop()

	audit := services.NewAuditLogger(db, cfg.AuditBuffer)
	defer audit.Close()

	users := services.NewUserService(db)
	if err := users.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to create admin account: %v", err)
	}

	// Bersihkan blacklist token yang sudah kadaluarsa
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := utils.CleanupBlacklist(); n > 0 {
					utils.InfoLogger.Infof("Removed %d expired tokens from blacklist", n)
				}
			case <-stopCleanup:
				return
			}
		}
	}()

	r := router.SetupRouter(router.Dependencies{
		Users:      users,
		Menus:      services.NewMenuService(db, feed),
		Orders:     services.NewOrderService(db),
		Drivers:    services.NewDriverService(db, feed),
		Deliveries: services.NewDeliveryService(db, feed, audit),
		Reports:    services.NewReportService(db),
		Audit:      audit,
		Hub:        hub,
		CORSOrigin: cfg.CORSOrigin,
		RateLimit:  cfg.RateLimit,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.WithError(err).Warn("Failed to set trusted proxies")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.WithError(err).Error("Server forced to shutdown")
	}
}
