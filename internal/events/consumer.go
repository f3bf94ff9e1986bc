package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

type Handler func(ctx context.Context, evt Event) error

// Consumer reads one queue with explicit acks. A handler error nacks the
// delivery back onto the queue, so handlers must be idempotent against
// redelivery.
type Consumer struct {
	conn    *Conn
	queue   string
	handler Handler
	log     *slog.Logger
}

func NewConsumer(conn *Conn, queue string, handler Handler, log *slog.Logger) *Consumer {
	return &Consumer{conn: conn, queue: queue, handler: handler, log: log}
}

// Start blocks until ctx is done, reopening its channel whenever the
// underlying connection is replaced by the supervisor.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ch, err := c.conn.NewChannel()
		if err != nil {
			c.wait(ctx)
			continue
		}
		deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
		if err != nil {
			c.log.Warn("consume failed", "queue", c.queue, "err", err)
			_ = ch.Close()
			c.wait(ctx)
			continue
		}
		c.log.Info("consumer started", "queue", c.queue)

	loop:
		for {
			select {
			case <-ctx.Done():
				_ = ch.Close()
				return ctx.Err()
			case d, ok := <-deliveries:
				if !ok { // channel closed, reconnect
					break loop
				}
				var evt Event
				if err := json.Unmarshal(d.Body, &evt); err != nil {
					c.log.Error("malformed event dropped", "queue", c.queue, "err", err)
					_ = d.Ack(false)
					continue
				}
				if err := c.handler(ctx, evt); err != nil {
					c.log.Error("event handling failed, requeueing", "queue", c.queue, "type", evt.Type, "err", err)
					_ = d.Nack(false, true)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}
}

func (c *Consumer) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}
