// Package notify publishes user notifications to a Redis channel.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	defaultChannel   = "notifications"
	defaultQueueSize = 256
	publishTimeout   = 5 * time.Second
)

// Publisher is the part of the redis client the dispatcher uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type message struct {
	entity.Notification
	CreatedAt time.Time `json:"createdAt"`
}

// Dispatcher queues notifications and publishes them from a single
// goroutine. Notify never blocks: when the queue is full the notification is
// dropped and logged.
type Dispatcher struct {
	publisher Publisher
	channel   string
	queue     chan message
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(publisher Publisher, channel string, queueSize int) *Dispatcher {
	if channel == "" {
		channel = defaultChannel
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Dispatcher{
		publisher: publisher,
		channel:   channel,
		queue:     make(chan message, queueSize),
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for msg := range d.queue {
		d.publish(msg)
	}
}

func (d *Dispatcher) publish(msg message) {
	log := logger.Get().With("channel", d.channel, "target_user_id", msg.TargetUserId.String(), "type", msg.Type)

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to encode notification", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, d.channel, payload).Err(); err != nil {
		log.Error("failed to publish notification", "error", err)
		return
	}

	log.Debug("notification published")
}

func (d *Dispatcher) Notify(ctx context.Context, n entity.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.FromContext(ctx).Warn("notification dropped, dispatcher closed", "type", n.Type)
		return
	}

	select {
	case d.queue <- message{Notification: n, CreatedAt: d.now().UTC()}:
	default:
		logger.FromContext(ctx).Warn("notification dropped, queue full",
			"type", n.Type, "target_user_id", n.TargetUserId.String())
	}
}

// Close stops accepting notifications and waits until the queued ones are
// published or ctx is done. The dispatcher must have been started.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
