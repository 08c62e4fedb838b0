package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sqlgrader-api/internal/config"
	"github.com/noah-isme/sqlgrader-api/internal/database"
	"github.com/noah-isme/sqlgrader-api/internal/handler"
	"github.com/noah-isme/sqlgrader-api/internal/middleware"
	"github.com/noah-isme/sqlgrader-api/internal/repository"
	"github.com/noah-isme/sqlgrader-api/internal/router"
	"github.com/noah-isme/sqlgrader-api/internal/scoring"
	"github.com/noah-isme/sqlgrader-api/internal/service"
	"github.com/noah-isme/sqlgrader-api/pkg/grader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	oracle, err := buildGrader(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create grading oracle: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	policy := scoring.NewPolicy(cfg.LateMultiplier)

	studentRepo := repository.NewStudentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	regradeRunRepo := repository.NewRegradeRunRepository(db)

	authService := service.NewAuthService(studentRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	questionService, err := service.NewQuestionService(questionRepo, logger)
	if err != nil {
		log.Fatalf("failed to create question service: %v", err)
	}
	leaderboardService := service.NewLeaderboardService(submissionRepo, redisClient, cfg.LeaderboardCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, oracle, policy, leaderboardService, validate, logger)
	exportService := service.NewExportService(submissionRepo, policy, logger)
	regradeService := service.NewRegradeService(submissionRepo, regradeRunRepo, oracle, policy, leaderboardService, natsConn, cfg.NATSSubject, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	questionHandler := handler.NewQuestionHandler(questionService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, exportService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)
	adminHandler := handler.NewAdminHandler(regradeService, questionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		QuestionHandler:    questionHandler,
		SubmissionHandler:  submissionHandler,
		LeaderboardHandler: leaderboardHandler,
		AdminHandler:       adminHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildGrader(cfg config.Config, logger zerolog.Logger) (grader.Grader, error) {
	switch cfg.GraderProvider {
	case "openai":
		return grader.NewOpenAIGrader(grader.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Logger: logger,
		})
	case "static":
		return grader.Static{}, nil
	default:
		return grader.NewHTTPGrader(grader.HTTPConfig{
			BaseURL: cfg.OracleURL,
			Timeout: cfg.OracleTimeout,
			Logger:  logger,
		})
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
