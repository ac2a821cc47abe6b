package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendly_console/api"
	"attendly_console/attendance"
	"attendly_console/camera"
	"attendly_console/client"
	"attendly_console/config"
	"attendly_console/db"
	"attendly_console/logger"
	"attendly_console/middleware"
	"attendly_console/routes"
	"attendly_console/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatalf("Error loading configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.For("main")
	if envErr != nil {
		log.Warn(".env file not found")
	}

	// Connect to session database
	database, err := db.Initialize(db.Config{Type: cfg.SessionDBType, URL: cfg.SessionDBURL})
	if err != nil {
		log.Fatalf("Error connecting to session database: %v", err)
	}
	defer database.Close()

	// Initialize database schema
	if err := db.InitSchema(database); err != nil {
		log.Fatalf("Error initializing database schema: %v", err)
	}

	store := session.NewStore(database, cfg.SessionDBType)
	backend := client.New(cfg.APIBaseURL, store, cfg.RequestTimeout)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Length",
			"Content-Type",
		}
		corsConfig.AllowMethods = []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
		}
		r.Use(cors.New(corsConfig))
	}

	// Setup routes
	attendanceHandler := routes.SetupRoutes(r, routes.Deps{
		Store:         store,
		Auth:          api.NewAuthAPI(backend),
		Passwords:     api.NewPasswordAPI(backend),
		Tasks:         api.NewTasksAPI(backend),
		Notifications: api.NewNotificationsAPI(backend),
		Attendance:    api.NewAttendanceAPI(backend, api.DirSaver{Dir: cfg.ExportDir}),
		Camera:        cameraDevice(cfg),
		Capture:       attendance.Options{SuccessDelay: cfg.CaptureResetDelay},
	})

	// Run server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.WithField("port", cfg.ServerPort).WithField("api", cfg.APIBaseURL).Info("Console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	attendanceHandler.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
}

func cameraDevice(cfg *config.Config) camera.Device {
	switch {
	case cfg.CameraSnapshotURL != "":
		return camera.NewSnapshotDevice(cfg.CameraSnapshotURL)
	case cfg.CameraImagePath != "":
		return camera.FileDevice{Path: cfg.CameraImagePath}
	default:
		return camera.NoDevice{}
	}
}
