package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/contractiq/contractiq/internal/api/handlers"
	"github.com/contractiq/contractiq/internal/api/middleware"
	"github.com/contractiq/contractiq/internal/config"
	"github.com/contractiq/contractiq/internal/database"
	"github.com/contractiq/contractiq/internal/jobs"
	"github.com/contractiq/contractiq/internal/openai"
	"github.com/contractiq/contractiq/internal/parsing"
	"github.com/contractiq/contractiq/internal/repository"
	"github.com/contractiq/contractiq/internal/server"
	"github.com/contractiq/contractiq/internal/service"
	"github.com/contractiq/contractiq/internal/storage"
	"github.com/contractiq/contractiq/internal/telemetry"
	"github.com/contractiq/contractiq/internal/token"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the contractiq API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnv,
			TracesSampleRate: cfg.SentrySampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	cfg.Port = resolvePort(cmd, cfg)

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)

	tokenSvc := token.NewServiceWithTTL([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
	authSvc := service.NewAuthService(userRepo, service.NewBcryptHasher(), tokenSvc)

	var archiver service.ObjectArchiver
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archiver = s3Client
	}

	var embedder service.EmbeddingClient
	var synthesizer service.AnswerSynthesizer
	if cfg.HasOpenAI() {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		embedder = client
		synthesizer = client
	} else {
		log.Println("OPENAI_API_KEY not set: uploads and questions will be rejected")
		noop := &NoOpEmbeddingProvider{}
		embedder = noop
		synthesizer = noop
	}

	docSvc := service.NewDocumentService(docRepo, parsing.NewParser(), embedder, archiver)
	askSvc := service.NewAskService(chunkRepo, embedder, synthesizer, cfg.AskTopK)

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
	}

	router := server.NewRouter(server.RouterConfig{
		TokenValidator:  tokenSvc,
		UserResolver:    authSvc,
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		ContractHandler: handlers.NewContractHandler(docSvc),
		AskHandler:      handlers.NewAskHandler(askSvc),
		RateLimiter:     limiter,
		MaxBodyBytes:    cfg.MaxUploadBytes,
	})

	var sweepWorker *jobs.Worker
	if cfg.LifecycleSweepMinutes > 0 {
		sweeper := jobs.NewLifecycleSweeper(docRepo,
			time.Duration(cfg.RenewalWindowDays)*24*time.Hour)
		sweepWorker = jobs.NewWorker(sweeper,
			time.Duration(cfg.LifecycleSweepMinutes)*time.Minute)
		go sweepWorker.Start(ctx)
		log.Println("lifecycle sweeper started")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if sweepWorker != nil {
		sweepWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// resolvePort prefers an explicitly set --port flag over the configured
// port, even when the flag value equals the flag default.
func resolvePort(cmd *cobra.Command, cfg *config.Config) string {
	if cmd.Flags().Changed("port") {
		portFlag, _ := cmd.Flags().GetString("port")
		return portFlag
	}
	return cfg.Port
}

// NoOpEmbeddingProvider rejects embedding and synthesis requests when no
// provider is configured.
type NoOpEmbeddingProvider struct{}

func (p *NoOpEmbeddingProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding provider not configured: OPENAI_API_KEY required")
}

func (p *NoOpEmbeddingProvider) Synthesize(ctx context.Context, question string, matches []*service.ChunkMatch) (string, error) {
	return "", fmt.Errorf("embedding provider not configured: OPENAI_API_KEY required")
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}

	if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
