package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ledgerkit/banking-ledger/internal/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrBusUnavailable = errors.New("event bus unavailable")

const (
	reconnectBase = time.Second
	reconnectCap  = 30 * time.Second
)

// Conn owns the broker connection plus one channel used for publishing.
// A supervisor goroutine watches for closes and reconnects with capped
// exponential backoff; consumers open their own channels via NewChannel.
type Conn struct {
	url string
	log *slog.Logger

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConn(url string, log *slog.Logger) *Conn {
	return &Conn{url: url, log: log}
}

// Start dials the broker and launches the reconnect supervisor. The initial
// dial failure is returned so a process can fail fast at boot.
func (c *Conn) Start(ctx context.Context) error {
	if err := c.connect(); err != nil {
		return err
	}
	go c.supervise(ctx)
	return nil
}

func (c *Conn) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := declareTopology(ch); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn, c.ch = conn, ch
	c.mu.Unlock()
	metrics.BusConnectionState.Set(1)
	c.log.Info("event bus connected")
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeTransactions, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	bindings := []struct{ queue, key string }{
		{QueueBalanceUpdates, KeyBalanceRequested},
		{QueueNotifications, KeyBalanceUpdated},
		{QueueAuditLog, "#"},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.queue, b.key, ExchangeTransactions, false, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) supervise(ctx context.Context) {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		closed := make(chan *amqp.Error, 1)
		conn.NotifyClose(closed)

		select {
		case <-ctx.Done():
			c.Close()
			return
		case err := <-closed:
			if err == nil { // clean shutdown
				return
			}
			metrics.BusConnectionState.Set(0)
			c.log.Error("event bus connection lost", "err", err)
		}

		backoff := reconnectBase
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if err := c.connect(); err == nil {
				break
			} else {
				c.log.Warn("event bus reconnect failed", "err", err, "backoff", backoff)
			}
			if backoff *= 2; backoff > reconnectCap {
				backoff = reconnectCap
			}
		}
	}
}

// Channel returns the shared publishing channel.
func (c *Conn) Channel() (*amqp.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ch == nil || c.ch.IsClosed() {
		return nil, ErrBusUnavailable
	}
	return c.ch, nil
}

// NewChannel opens a dedicated channel, one per consumer.
func (c *Conn) NewChannel() (*amqp.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil, ErrBusUnavailable
	}
	return c.conn.Channel()
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil && !c.conn.IsClosed() {
		_ = c.conn.Close()
	}
	metrics.BusConnectionState.Set(0)
}
