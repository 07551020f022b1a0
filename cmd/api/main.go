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
	"github.com/rs/zerolog"

	"github.com/noah-isme/hireflow-go-api/internal/config"
	"github.com/noah-isme/hireflow-go-api/internal/database"
	"github.com/noah-isme/hireflow-go-api/internal/handler"
	"github.com/noah-isme/hireflow-go-api/internal/middleware"
	"github.com/noah-isme/hireflow-go-api/internal/models"
	"github.com/noah-isme/hireflow-go-api/internal/repository"
	"github.com/noah-isme/hireflow-go-api/internal/router"
	"github.com/noah-isme/hireflow-go-api/internal/service"
	"github.com/noah-isme/hireflow-go-api/pkg/ai"
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

	if err := db.AutoMigrate(
		&models.Candidate{},
		&models.Job{},
		&models.Interview{},
		&models.Question{},
		&models.CandidateActivity{},
		&models.OutboxEvent{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		// The outbox keeps events durable until the bus comes back.
		logger.Warn().Err(err).Msg("nats unavailable, outbox events will stay queued")
	} else {
		defer natsConn.Close()
	}

	aiClient, err := newAIClient(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create ai client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	interviewRepo := repository.NewInterviewRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	jobRepo := repository.NewJobRepository(db)
	activityRepo := repository.NewCandidateActivityRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	policy := service.LifecyclePolicy{
		GracePeriod: cfg.GracePeriod,
		IdleTimeout: cfg.IdleTimeout,
		MissedAfter: cfg.MissedAfter,
		TTL:         cfg.InterviewTTL,
	}

	activityService := service.NewActivityService(activityRepo, logger)
	outboxService := service.NewOutboxService(outboxRepo, natsConn, logger)

	scheduleService := service.NewScheduleService(service.ScheduleServiceConfig{
		Interviews:    interviewRepo,
		Questions:     questionRepo,
		Candidates:    candidateRepo,
		Jobs:          jobRepo,
		Generator:     aiClient,
		Activity:      activityService,
		Outbox:        outboxService,
		Validator:     validate,
		Logger:        logger,
		Policy:        policy,
		PublicBaseURL: cfg.PublicBaseURL,
		GenTimeout:    cfg.GenerateTimeout,
		QuestionCount: cfg.QuestionCount,
	})

	accessService := service.NewAccessService(interviewRepo, questionRepo, activityService, logger, policy)

	submissionService := service.NewSubmissionService(service.SubmissionServiceConfig{
		Access:       accessService,
		Interviews:   interviewRepo,
		Questions:    questionRepo,
		Candidates:   candidateRepo,
		Scorer:       aiClient,
		Activity:     activityService,
		Outbox:       outboxService,
		Validator:    validate,
		Logger:       logger,
		ScoreTimeout: cfg.ScoreTimeout,
		Concurrency:  cfg.ScoreConcurrency,
	})

	sweeperService := service.NewSweeperService(interviewRepo, activityService, outboxService, logger, policy)
	boardService := service.NewBoardService(interviewRepo, jobRepo, redisClient, cfg.BoardCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		InterviewAdminHandler:    handler.NewInterviewAdminHandler(scheduleService, logger),
		CandidateFlowHandler:     handler.NewCandidateFlowHandler(accessService, submissionService, logger),
		BoardHandler:             handler.NewBoardHandler(boardService, logger),
		CandidateActivityHandler: handler.NewCandidateActivityHandler(activityService, logger),
		SweepHandler:             handler.NewSweepHandler(sweeperService, cfg.SweepSecret, logger),
		JWTMiddleware:            middleware.JWTProtected(cfg.JWTSecret),
	})

	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	go sweeperService.Start(backgroundCtx, cfg.SweepInterval)
	go outboxService.Start(backgroundCtx, cfg.OutboxInterval)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopBackground)
}

// aiClient is the full model surface the interview lifecycle needs: question
// generation at scheduling time and answer scoring at submission time.
type aiClient interface {
	ai.QuestionGenerator
	ai.Scorer
}

func newAIClient(cfg config.Config, logger zerolog.Logger) (aiClient, error) {
	if cfg.AIProvider == "anthropic" {
		return ai.NewAnthropicClient(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey})
	}

	return ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Logger: logger,
	})
}

func waitForShutdown(app *fiber.App, stopBackground context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
