package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/services"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/mroshb/game_journal/pkg/logger"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "journal.entries.mutated"

// Recorder stores entry mutations as activity events.
type Recorder interface {
	Record(ctx context.Context, m services.EntryMutation) (*models.ActivityEvent, bool, error)
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500 * time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// Consumer feeds entry mutations from a NATS subject into a Recorder.
// Members of the same queue group share the subject's messages.
type Consumer struct {
	nc       *nats.Conn
	sub      *nats.Subscription
	recorder Recorder
	subject  string
	queue    string
	timeout  time.Duration
}

func NewConsumer(nc *nats.Conn, recorder Recorder, subject, queue string, timeout time.Duration) *Consumer {
	if subject == "" {
		subject = DefaultSubject
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Consumer{
		nc:       nc,
		recorder: recorder,
		subject:  subject,
		queue:    queue,
		timeout:  timeout,
	}
}

// Start subscribes to the subject.
func (c *Consumer) Start() error {
	var (
		sub *nats.Subscription
		err error
	)
	if c.queue == "" {
		sub, err = c.nc.Subscribe(c.subject, c.onMessage)
	} else {
		sub, err = c.nc.QueueSubscribe(c.subject, c.queue, c.onMessage)
	}
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.subject, err)
	}

	c.sub = sub
	logger.Info("Activity consumer started", "subject", c.subject, "queue", c.queue)
	return nil
}

func (c *Consumer) onMessage(m *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	_ = c.Handle(ctx, m.Data)
}

// Handle decodes and records one payload. Bad payloads are logged and
// dropped; redelivery would not fix them.
func (c *Consumer) Handle(ctx context.Context, data []byte) error {
	var m services.EntryMutation
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("Dropping malformed entry mutation", "subject", c.subject, "error", err)
		return errors.Wrap(err, errors.ErrCodeValidation, "malformed entry mutation")
	}

	event, created, err := c.recorder.Record(ctx, m)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternalError {
			logger.Error("Failed to record entry mutation", "mutation_id", m.MutationID, "error", err)
		} else {
			logger.Warn("Dropping invalid entry mutation", "mutation_id", m.MutationID, "error", err)
		}
		return err
	}

	if created {
		logger.Debug("Entry mutation recorded", "mutation_id", m.MutationID, "event_id", event.ID)
	}
	return nil
}

// Close drains the subscription.
func (c *Consumer) Close() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Drain()
}

// Publish sends m to subject. Used by tooling that replays journal history.
func Publish(nc *nats.Conn, subject string, m services.EntryMutation) error {
	if subject == "" {
		subject = DefaultSubject
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode entry mutation: %w", err)
	}
	if err := nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nc.Flush()
}
