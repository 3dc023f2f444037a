package bootstrap

import (
	"context"
	"os"
	"strings"
	"time"

	"triage_server/adapter/out/messaging"
	"triage_server/adapter/out/mongodb"
	"triage_server/adapter/out/notify"
	"triage_server/adapter/out/persistence"
	"triage_server/config"
	"triage_server/core/agent/llm"
	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/core/service/draft"
	"triage_server/core/service/extraction"
	"triage_server/core/service/pii"
	"triage_server/core/service/pipeline"
	"triage_server/core/service/review"
	"triage_server/core/service/routing"
	"triage_server/infra/database"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"
	"triage_server/pkg/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	TicketRepo  out.TicketRepository
	DraftRepo   out.DraftRepository
	ReviewRepo  out.ReviewRepository
	BodyArchive out.BodyArchive

	// Notification
	Notifier out.ReviewNotifier

	// Metrics
	Metrics *metrics.Sink

	// Agent
	LLMClient *llm.Client
	Fallback  out.FallbackClassifier

	// Services
	ReviewService   *review.Service
	PipelineService *pipeline.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the repository adapters)
	sqlxURL := cfg.DatabaseURL
	if strings.Contains(sqlxURL, "?") {
		sqlxURL += "&default_query_exec_mode=simple_protocol"
	} else {
		sqlxURL += "?default_query_exec_mode=simple_protocol"
	}
	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	deps.TicketRepo = persistence.NewTicketAdapter(sqlDB)
	deps.DraftRepo = persistence.NewDraftAdapter(sqlDB)
	deps.ReviewRepo = persistence.NewReviewAdapter(sqlDB)

	// MongoDB (full masked bodies)
	if cfg.MongoDBURL == "" {
		cleanup()
		return nil, nil, apperr.ConfigError("MONGODB_URL is required")
	}
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		mongoClient.Disconnect(context.Background())
	})

	bodyAdapter := mongodb.NewBodyAdapter(mongoClient.Database(cfg.MongoDBName))
	if err := bodyAdapter.EnsureIndexes(context.Background()); err != nil {
		logger.WithError(err).Warn("Failed to ensure ticket body indexes")
	}
	deps.BodyArchive = bodyAdapter

	// Redis (reviewer stream)
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Redis = redisClient
	cleanups = append(cleanups, func() { redisClient.Close() })

	// Reviewer notification channel: Redis stream by default, webhook
	// when configured instead.
	zlog := zerolog.New(os.Stdout).With().Timestamp().Str("component", "review-stream").Logger()
	switch {
	case cfg.NotifyStreamEnabled:
		deps.Notifier = messaging.NewStreamNotifier(redisClient, zlog)
	case cfg.NotifyWebhookURL != "":
		deps.Notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	default:
		cleanup()
		return nil, nil, apperr.ConfigError("no reviewer notification channel configured")
	}

	// Metrics
	deps.Metrics = metrics.NewSink(1000)

	// LLM fallback
	deps.LLMClient = llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})
	fallbackLang := domain.Language(cfg.FallbackLanguage)
	deps.Fallback = llm.NewExtractor(deps.LLMClient, cfg.LLMTimeout, fallbackLang, deps.Metrics)

	// Services
	deps.ReviewService = review.NewService(
		deps.TicketRepo,
		deps.DraftRepo,
		deps.ReviewRepo,
		deps.Notifier,
		deps.Metrics,
		review.Config{
			MaxAttempts: cfg.NotifyMaxAttempts,
			BaseDelay:   cfg.NotifyBaseDelay,
			MaxDelay:    cfg.NotifyMaxDelay,
		},
	)

	deps.PipelineService = pipeline.NewService(
		pii.NewMasker(),
		extraction.NewExtractor(fallbackLang),
		routing.NewRouter(routing.Thresholds{
			ResolveThreshold: cfg.ResolveThreshold,
			ViabilityFloor:   cfg.ViabilityFloor,
		}),
		deps.Fallback,
		draft.NewGenerator(),
		deps.ReviewService,
		deps.TicketRepo,
		deps.DraftRepo,
		deps.ReviewRepo,
		deps.BodyArchive,
		deps.Metrics,
	)

	logger.Info("Dependencies initialized")

	return deps, cleanup, nil
}
