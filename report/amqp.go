package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/telenornms/skuld"
	"github.com/telenornms/skuld/inventory"
)

// Publish ships the JSON snapshot to an AMQP queue. One connection, one
// message, then we're gone: this is a post-pass delivery, not a consumer
// loop.
func Publish(broker, queue string, snap *inventory.Snapshot) error {
	u, err := url.Parse(broker)
	if err != nil {
		return fmt.Errorf("can't parse broker url: %w", err)
	}
	skuld.Debugf("Connecting to broker: %v", u.Redacted())
	conn, err := amqp.Dial(broker)
	if err != nil {
		return fmt.Errorf("can't connect to broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("can't get channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue, // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("can't declare queue: %w", err)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot json marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(ctx,
		"",     // exchange
		q.Name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	skuld.Logf("Published snapshot %s (%d bytes) to %s", snap.ID, len(body), q.Name)
	return nil
}
