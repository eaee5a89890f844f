package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hoplink/hoplink/internal"
	"github.com/hoplink/hoplink/internal/clicks"
	"github.com/hoplink/hoplink/internal/config"
	"github.com/hoplink/hoplink/internal/intent"
	applog "github.com/hoplink/hoplink/internal/logger"
	"github.com/hoplink/hoplink/internal/resolve"
	"github.com/hoplink/hoplink/internal/server"
	"github.com/hoplink/hoplink/internal/verify"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn(".env file not found, relying on env vars", "err", err)
	}

	applog.InitFromEnv()
	cfg := config.Load()
	ctx := context.Background()

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{Logger: applog.NewGormLogger(os.Getenv("GORM_LOG_LEVEL"))})
	if err != nil {
		slog.Error("Unable to connect to database", "err", err)
		os.Exit(1)
	}

	slog.Info("Running GORM auto-migration")
	err = db.AutoMigrate(
		&internal.Account{}, &internal.Tenant{}, &internal.Link{},
		&internal.ClickEvent{}, &internal.LinkStats{},
		&internal.DomainVerification{}, &internal.Domain{},
	)
	if err != nil {
		slog.Error("Failed to auto-migrate database", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "err", err)
		os.Exit(1)
	}

	rabbitConn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		slog.Error("Unable to connect to RabbitMQ", "err", err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	rabbitCH, err := rabbitConn.Channel()
	if err != nil {
		slog.Error("Unable to open RabbitMQ channel", "err", err)
		os.Exit(1)
	}
	defer rabbitCH.Close()

	_, err = rabbitCH.QueueDeclare(
		cfg.ClickQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		slog.Error("Failed to declare click queue", "queue", cfg.ClickQueue, "err", err)
		os.Exit(1)
	}

	domainSvc := verify.NewService(db, verify.NewNetResolver(), cfg.CNAMETarget)
	sweeper := verify.NewSweeper(domainSvc, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	srv := server.New(
		cfg,
		resolve.NewTenantResolver(db, rdb, cfg.MainDomain),
		resolve.NewLinkResolver(db),
		intent.NewStore(rdb),
		clicks.NewPublisher(rabbitCH, cfg.ClickQueue),
		domainSvc,
	)

	app := fiber.New()
	app.Use(applog.FiberMiddleware())
	app.Use(cors.New())
	srv.Register(app)

	slog.Info("Starting redirector", "port", cfg.Port, "main_domain", cfg.MainDomain)
	if err := app.Listen(cfg.Port); err != nil {
		slog.Error("Redirector failed", "err", err)
		os.Exit(1)
	}
}
