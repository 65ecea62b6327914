package main

// @title           CreatorSync Core API
// @version         1.0
// @description     Creator management API. CreatorSync Core connects creator accounts to social platforms and schedules content publishing.

// @contact.name   CreatorSync OSS
// @contact.url    https://github.com/creatorsync-labs/creatorsync-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/creatorsync-labs/creatorsync-core/internal/adapters/driven/auth"
	"github.com/creatorsync-labs/creatorsync-core/internal/adapters/driven/platforms"
	"github.com/creatorsync-labs/creatorsync-core/internal/adapters/driven/postgres"
	postgresqueue "github.com/creatorsync-labs/creatorsync-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/creatorsync-labs/creatorsync-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/creatorsync-labs/creatorsync-core/internal/adapters/driven/redis"
	"github.com/creatorsync-labs/creatorsync-core/internal/adapters/driving/http"
	"github.com/creatorsync-labs/creatorsync-core/internal/config"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/domain"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/services"
	"github.com/creatorsync-labs/creatorsync-core/internal/worker"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Command line arg overrides RUN_MODE
	mode := cfg.Mode
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	if cfg.Version != "dev" {
		version = cfg.Version
	}

	log.Printf("creatorsync-core %s starting in %s mode", version, mode)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	dbConfig := postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
	}
	db, err := postgres.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Driven adapters (infrastructure) =====
	authAdapter := auth.NewAdapter(cfg.JWTSecret)

	encryptor, err := postgres.NewSecretEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to create secret encryptor: %v", err)
	}

	// ===== Platform clients =====
	platformCreds := make(map[domain.PlatformType]platforms.Credentials, len(cfg.Platforms))
	for platform, c := range cfg.Platforms {
		platformCreds[platform] = platforms.Credentials{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURI:  c.RedirectURI,
			Scopes:       c.Scopes,
		}
	}
	platformFactory := platforms.NewFactory(platformCreds)
	log.Printf("Configured platforms: %v", platformFactory.Supported())

	// ===== PostgreSQL Stores =====
	userStore := postgres.NewUserStore(db)
	connectionStore := postgres.NewConnectionStore(db, encryptor)
	contentStore := postgres.NewContentStore(db)
	schedulerStore := postgres.NewSchedulerStore(db)

	// ===== Session Store (Redis if available, otherwise PostgreSQL) =====
	var sessionStore driven.SessionStore
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		log.Println("Using Redis session store")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		log.Println("Using PostgreSQL session store")
	}

	// ===== Task Queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		var err error
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using Redis task queue")
	} else {
		taskQueue = postgresqueue.NewQueue(db.DB)
		log.Println("Using PostgreSQL task queue")
	}

	// ===== Distributed Lock (Redis if available, otherwise PostgreSQL advisory locks) =====
	var distributedLock driven.DistributedLock
	if redisClient != nil {
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis distributed lock")
	} else {
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	}

	// Services (core business logic)
	authService := services.NewAuthService(userStore, sessionStore, authAdapter)
	connectService := services.NewConnectService(services.ConnectServiceConfig{
		Platforms:   platformFactory,
		Connections: connectionStore,
		Auth:        authService,
		Logger:      slog.Default(),
	})
	connectionService := services.NewConnectionService(connectionStore, platformFactory, slog.Default())
	contentService := services.NewContentService(contentStore, connectionStore)
	publisherService := services.NewPublisherService(services.PublisherServiceConfig{
		Content:     contentStore,
		Connections: connectionStore,
		Platforms:   platformFactory,
		TaskQueue:   taskQueue,
		Logger:      slog.Default(),
	})

	// Create scheduler for worker mode (if enabled)
	var scheduler *services.Scheduler
	if cfg.SchedulerEnabled {
		scheduler = services.NewScheduler(services.SchedulerConfig{
			Store:        schedulerStore,
			TaskQueue:    taskQueue,
			Lock:         distributedLock,
			Logger:       slog.Default(),
			LockRequired: cfg.SchedulerLockRequired,
		})

		// Seed the default schedule so due content gets published
		for _, job := range domain.DefaultSchedule() {
			if _, err := schedulerStore.GetScheduledJob(ctx, job.ID); err == domain.ErrNotFound {
				if err := schedulerStore.SaveScheduledJob(ctx, job); err != nil {
					log.Printf("Warning: failed to seed scheduled job %s: %v", job.ID, err)
				}
			}
		}
		log.Printf("Scheduler enabled (lock_required=%t)", cfg.SchedulerLockRequired)
	} else {
		log.Println("Scheduler disabled via SCHEDULER_ENABLED=false")
	}

	var redisPing http.Pinger
	if redisClient != nil {
		redisPing = redisPinger{client: redisClient}
	}

	switch mode {
	case "api":
		// API-only mode: HTTP server, no worker
		runAPI(cfg, authService, connectService, connectionService, contentService, taskQueue, db, redisPing)

	case "worker":
		// Worker-only mode: Task processing, scheduler, no HTTP server
		runWorkerMode(ctx, cfg, taskQueue, publisherService, scheduler)

	case "all":
		// Combined mode: Run both API and Worker
		go runWorkerMode(ctx, cfg, taskQueue, publisherService, scheduler)
		runAPI(cfg, authService, connectService, connectionService, contentService, taskQueue, db, redisPing)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

func runAPI(
	cfg *config.Config,
	authService driving.AuthService,
	connectService driving.ConnectService,
	connectionService driving.ConnectionService,
	contentService driving.ContentService,
	taskQueue driven.TaskQueue,
	db http.Pinger,
	redisPing http.Pinger,
) {
	serverCfg := http.Config{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Version: version,
	}

	server := http.NewServer(
		serverCfg,
		authService,
		connectService,
		connectionService,
		contentService,
		taskQueue,
		db,
		redisPing,
	)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the worker and scheduler.
// It processes publish tasks from the queue and runs the schedule.
func runWorkerMode(
	ctx context.Context,
	cfg *config.Config,
	taskQueue driven.TaskQueue,
	publisher driving.PublisherService,
	scheduler *services.Scheduler,
) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.WorkerConfig{
		TaskQueue:      taskQueue,
		Publisher:      publisher,
		Scheduler:      scheduler,
		Logger:         slog.Default(),
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.WorkerDequeueTimeout,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing tasks...")
	log.Println("Worker handles:")
	log.Println("  - publish_due: Enqueue every content item whose schedule has passed")
	log.Println("  - publish_item: Publish a specific content item")

	// Wait for context cancellation
	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// redisPinger adapts the Redis client to the readiness Pinger interface.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
