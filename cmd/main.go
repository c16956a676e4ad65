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

	"kursus-backend/config"
	httpDelivery "kursus-backend/internal/delivery/http"
	"kursus-backend/internal/domain"
	"kursus-backend/internal/repository"
	"kursus-backend/internal/usecase"
	"kursus-backend/pkg/logger"
	"kursus-backend/pkg/monitoring"
	"kursus-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	gin.SetMode(cfg.Server.Mode)
	monitoring.Init()
	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.ExpireTime)

	db, err := config.ConnectDB(cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Database connection failed", zap.Error(err))
	}
	if err := config.AutoMigrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	ctx := context.Background()

	files, err := newFileStore(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal("File storage init failed", zap.String("type", cfg.Storage.Type), zap.Error(err))
	}

	var cache domain.CatalogCache
	if cfg.Redis.URL != "" {
		client, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Log.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cache = repository.NewRedisCatalogCache(client, time.Duration(cfg.Redis.TTLMinutes)*time.Minute)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(userRepo)
	userUsecase := usecase.NewUserUsecase(authUsecase)
	catalogUsecase := usecase.NewCatalogUsecase(courseRepo, moduleRepo, questionRepo, files, cache)
	enrollmentUsecase := usecase.NewEnrollmentUsecase(courseRepo, enrollmentRepo)
	progressUsecase := usecase.NewProgressUsecase(courseRepo, moduleRepo, enrollmentRepo, progressRepo)
	quizUsecase := usecase.NewQuizUsecase(courseRepo, moduleRepo, enrollmentRepo, progressRepo, questionRepo)
	certUsecase := usecase.NewCertificateUsecase(courseRepo, moduleRepo, enrollmentRepo, progressRepo, userRepo, files,
		usecase.CertificateOptions{RequirePassedReview: cfg.Certificate.RequirePassedReview})
	dashboardUsecase := usecase.NewDashboardUsecase(userRepo, courseRepo, enrollmentRepo)

	seedAdmin(authUsecase, cfg.Seed)

	handler := httpDelivery.NewHandler(
		authUsecase,
		userUsecase,
		catalogUsecase,
		enrollmentUsecase,
		progressUsecase,
		quizUsecase,
		certUsecase,
		dashboardUsecase,
		files,
	)
	router := httpDelivery.InitRouter(handler, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", cfg.Server.Port), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Info("Server exited")
}

func newFileStore(ctx context.Context, cfg config.StorageConfig) (domain.FileStore, error) {
	switch cfg.Type {
	case "s3":
		return repository.NewS3FileStore(ctx, repository.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
			BaseURL:   cfg.PublicBaseURL,
		})
	case "gridfs":
		mongoDB, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewGridFSFileStore(mongoDB, cfg.PublicBaseURL)
	default:
		return repository.NewLocalFileStore(cfg.LocalPath, cfg.PublicBaseURL), nil
	}
}

// seedAdmin creates the first administrator when a password is configured.
func seedAdmin(authUsecase domain.AuthUsecase, seed config.SeedConfig) {
	if seed.AdminPassword == "" || seed.AdminEmail == "" {
		return
	}

	admin := &domain.User{
		Name:     seed.AdminName,
		Email:    seed.AdminEmail,
		Password: seed.AdminPassword,
		Role:     domain.RoleAdmin,
	}
	err := authUsecase.Register(context.Background(), admin)
	switch {
	case err == nil:
		logger.Log.Info("Seeded admin user", zap.String("email", admin.Email))
	case errors.Is(err, domain.ErrEmailTaken):
	default:
		logger.Log.Warn("Failed to seed admin", zap.Error(err))
	}
}
