package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/promptforge/promptforge-api/internal/domain"
)

// DefaultSubject is the subject completion events are published on.
const DefaultSubject = "promptforge.prompts.completed"

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher publishes events as JSON on a core NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(nc *nats.Conn, subject string) *NATSPublisher {
	return newNATSPublisher(nc, subject)
}

func newNATSPublisher(c conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: c, subject: subject}
}

// Connect dials url with reconnect handling suited to a long-running
// service. The connection is retried in the background when the server is
// not reachable yet.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("promptforge-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return nc, nil
}

// PublishPromptCompleted implements Publisher.
func (p *NATSPublisher) PublishPromptCompleted(ctx context.Context, rec *domain.PromptRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(FromRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal prompt event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}
