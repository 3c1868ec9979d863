package mq

import (
	"ShareVault/config"
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeAccess = "share.access.exchange"
	ExchangeDLQ    = "share.access.dlq.exchange"

	QueueAccess = "share.access.queue"
	QueueDLQ    = "share.access.dlq.queue"

	RoutingAccess = "share.access"
	RoutingDLQ    = "share.access.dlq"
)

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

const dialTimeout = 5 * time.Second

var (
	publisherMu sync.Mutex
	publisher   *Client

	// dialFn is swapped in tests.
	dialFn = Dial

	lastDialErr    error
	lastDialAt     time.Time
	redialCooldown = 15 * time.Second
)

func Dial() (*Client, error) {
	conn, err := amqp.DialConfig(config.AppConfig.RabbitMQURL, amqp.Config{
		Dial: amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns a shared publisher, redialing if the old one died.
// A failed dial is cached for a cooldown so concurrent callers never queue
// behind repeated dials to a dead broker.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	if lastDialErr != nil && time.Since(lastDialAt) < redialCooldown {
		return nil, lastDialErr
	}
	client, err := dialFn()
	if err != nil {
		lastDialErr = err
		lastDialAt = time.Now()
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		lastDialErr = err
		lastDialAt = time.Now()
		return nil, err
	}
	lastDialErr = nil
	publisher = client
	return publisher, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

func (c *Client) DeclareTopology() error {
	if err := c.Channel.ExchangeDeclare(
		ExchangeAccess,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if err := c.Channel.ExchangeDeclare(
		ExchangeDLQ,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueAccess,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    ExchangeDLQ,
			"x-dead-letter-routing-key": RoutingDLQ,
		},
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueDLQ,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if err := c.Channel.QueueBind(
		QueueAccess,
		RoutingAccess,
		ExchangeAccess,
		false,
		nil,
	); err != nil {
		return err
	}
	return c.Channel.QueueBind(
		QueueDLQ,
		RoutingDLQ,
		ExchangeDLQ,
		false,
		nil,
	)
}

// PublishAccess publishes a share-access event.
func (c *Client) PublishAccess(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeAccess, RoutingAccess, body)
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	return c.Channel.PublishWithContext(
		ctx,
		exchange,
		key,
		false,
		false,
		msg,
	)
}
