package worker

import (
	"ShareVault/config"
	"ShareVault/internal/mq"
	"ShareVault/internal/task"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const persistTimeout = 10 * time.Second

// RunAccessLogWorker consumes share-access events and persists them.
func RunAccessLogWorker(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueAccess,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	concurrency := config.AppConfig.AccessLogWorkers
	if concurrency <= 0 {
		concurrency = 1
	}
	return consumeLoop(ctx, deliveries, concurrency, handleAccessMessage)
}

// consumeLoop dispatches deliveries to handle with bounded concurrency.
// On shutdown it waits for in-flight handlers before returning, so their
// acks still reach the broker.
func consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery, concurrency int, handle func(amqp.Delivery)) error {
	sem := make(chan struct{}, concurrency)
	drain := func() {
		for i := 0; i < concurrency; i++ {
			sem <- struct{}{}
		}
	}
	for {
		select {
		case <-ctx.Done():
			drain()
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				drain()
				return errors.New("access worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handle(d)
			}(delivery)
		}
	}
}

// handleAccessMessage persists one event. The write runs on its own
// deadline so a shutdown does not fail in-flight persists.
func handleAccessMessage(delivery amqp.Delivery) {
	var event task.AccessEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		log.Printf("access worker: invalid message: %v", err)
		// Poison message, push to the DLQ.
		_ = delivery.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := task.PersistAccessEvent(ctx, event); err != nil {
		if delivery.Redelivered {
			log.Printf("access worker: persist failed twice, dead-lettering: %v", err)
			_ = delivery.Nack(false, false)
			return
		}
		log.Printf("access worker: persist failed, requeueing: %v", err)
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}
