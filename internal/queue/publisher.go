package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultDialTimeout = 5 * time.Second

// Publisher publishes verification requests to RabbitMQ. Each publish dials
// its own connection, bounded by DialTimeout and the context deadline.
type Publisher struct {
	url string
	now func() time.Time

	DialTimeout time.Duration
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, now: time.Now, DialTimeout: defaultDialTimeout}
}

// Send makes the publisher a mailer.Sender, so it can run behind
// mailer.AsyncNotifier and keep the broker off the request path.
func (p *Publisher) Send(ctx context.Context, to, code string) error {
	return p.NotifyVerification(ctx, to, code)
}

// dialTimeout is DialTimeout shortened to the context deadline.
func (p *Publisher) dialTimeout(ctx context.Context) time.Duration {
	d := p.DialTimeout
	if d <= 0 {
		d = defaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			d = left
		}
	}
	return d
}

// NotifyVerification publishes a VerificationRequestedEvent. Messages are
// marked as persistent.
func (p *Publisher) NotifyVerification(ctx context.Context, email, code string) error {
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if err := declare(ch); err != nil {
		return err
	}

	body, err := json.Marshal(VerificationRequestedEvent{
		Email:       email,
		Code:        code,
		RequestedAt: p.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		VerificationQueueName, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		VerificationQueueName, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
