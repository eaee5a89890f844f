// Package clicks records redirects. The redirect path publishes events to
// RabbitMQ and never waits for them; the clicks worker drains the queue and
// persists rows in batches.
package clicks

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Event is the wire payload for one redirect.
type Event struct {
	LinkID    uint      `json:"link_id"`
	Platform  string    `json:"platform"`
	Browser   string    `json:"browser"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	ch    *amqp091.Channel
	queue string
}

func NewPublisher(ch *amqp091.Channel, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

// Publish sends one click event. Every failure is logged and swallowed:
// analytics must never delay or break a redirect.
func (p *Publisher) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		slog.Error("marshal click event failed", "link_id", e.LinkID, "err", err)
		return
	}
	err = p.ch.PublishWithContext(
		context.Background(),
		"", p.queue, false, false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		slog.Error("publish click event failed", "link_id", e.LinkID, "err", err)
	}
}
