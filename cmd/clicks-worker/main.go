package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hoplink/hoplink/internal/clicks"
	"github.com/hoplink/hoplink/internal/config"
	applog "github.com/hoplink/hoplink/internal/logger"
)

const (
	batchSize     = 100
	flushInterval = 2 * time.Second
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Warn(".env file not found, relying on env vars", "err", err)
	}

	applog.InitFromEnv()
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{Logger: applog.NewGormLogger(os.Getenv("GORM_LOG_LEVEL"))})
	if err != nil {
		slog.Error("Unable to connect to database", "err", err)
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

	q, err := rabbitCH.QueueDeclare(
		cfg.ClickQueue,
		true, false, false, false, nil,
	)
	if err != nil {
		slog.Error("Failed to declare queue", "err", err)
		os.Exit(1)
	}

	// Grab up to one batch worth of messages at a time.
	if err := rabbitCH.Qos(batchSize, 0, false); err != nil {
		slog.Error("Failed to set QoS", "err", err)
		os.Exit(1)
	}

	msgs, err := rabbitCH.Consume(
		q.Name, "", false, false, false, false, nil,
	)
	if err != nil {
		slog.Error("Failed to register consumer", "err", err)
		os.Exit(1)
	}

	slog.Info("Clicks worker started, waiting for events")

	var forever chan struct{}
	var events []clicks.Event
	var deliveries []amqp091.Delivery

	ticker := time.NewTicker(flushInterval)

	go func() {
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					slog.Warn("RabbitMQ channel closed")
					return
				}
				var event clicks.Event
				if err := json.Unmarshal(d.Body, &event); err != nil {
					slog.Error("Error decoding click event, rejecting", "err", err)
					// 'false' means don't re-queue
					d.Reject(false)
					continue
				}
				events = append(events, event)
				deliveries = append(deliveries, d)

				if len(events) >= batchSize {
					flush(db, events, deliveries)
					events, deliveries = nil, nil
					ticker.Reset(flushInterval)
				}

			case <-ticker.C:
				if len(events) > 0 {
					slog.Info("Timer flush: persisting queued events", "count", len(events))
					flush(db, events, deliveries)
					events, deliveries = nil, nil
				}
			}
		}
	}()

	<-forever
}

func flush(db *gorm.DB, events []clicks.Event, deliveries []amqp091.Delivery) {
	if err := clicks.PersistBatch(db, events); err != nil {
		slog.Error("Failed to persist click batch, nacking", "count", len(events), "err", err)
		for _, d := range deliveries {
			d.Nack(false, true)
		}
		return
	}
	for _, d := range deliveries {
		d.Ack(false)
	}
	slog.Info("Persisted click batch", "count", len(events))
}
