package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/startera/internal/mailer"
)

const maxBackoff = 30 * time.Second

// Consumer reads verification requests and mails the codes.
type Consumer struct {
	url    string
	sender mailer.Sender
	log    *zap.Logger

	sendTimeout time.Duration
}

func NewConsumer(url string, sender mailer.Sender, log *zap.Logger) *Consumer {
	return &Consumer{url: url, sender: sender, log: log, sendTimeout: 30 * time.Second}
}

// Run connects to the broker, declares the queue and consumes until ctx is
// done, reconnecting with exponential backoff (1s doubling up to 30s).
// It returns nil once ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("verification-consumer: dial failed",
				zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("verification-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("verification-consumer: set QoS failed", zap.Error(err))
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(VerificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Warn("verification-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev VerificationRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	ev.Email = strings.TrimSpace(ev.Email)
	if ev.Email == "" || strings.TrimSpace(ev.Code) == "" {
		return errors.New("event without email or code")
	}
	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()
	if err := c.sender.Send(sendCtx, ev.Email, ev.Code); err != nil {
		return err
	}
	c.log.Info("verification mail sent", zap.String("to", ev.Email))
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
