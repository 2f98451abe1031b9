package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/rsrini-dev/vectorrank/pkg/kafka"
)

// Collector forwards query events to Kafka through a buffered channel so
// tracking never blocks the request path.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan QueryEvent
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector with the given channel capacity.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan QueryEvent, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. It drains remaining events when ctx is
// cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event := <-c.eventCh:
				if err := c.producer.Publish(ctx, kafka.Event{Key: "query", Value: event}); err != nil {
					c.logger.Error("failed to publish query event", "error", err)
				}
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event, dropping it when the buffer is full.
func (c *Collector) Track(event QueryEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics buffer full, event dropped", "query", event.Query)
	}
}

// Close waits for the publish loop to finish.
func (c *Collector) Close() {
	<-c.done
}

func (c *Collector) drainRemaining() {
	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-c.eventCh:
			if err := c.producer.Publish(drainCtx, kafka.Event{Key: "query", Value: event}); err != nil {
				c.logger.Error("failed to drain query event", "error", err)
				return
			}
		default:
			return
		}
	}
}
