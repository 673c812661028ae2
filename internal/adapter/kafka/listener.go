package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/psdplots/plot-catalog-service/internal/config"
	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/psdplots/plot-catalog-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Invalidator drops cached thumbnails by node path.
type Invalidator interface {
	Invalidate(path string) bool
}

// NodePather maps archive segments to a node path.
type NodePather interface {
	Path(segments ...string) (string, error)
}

// messageReader is the subset of *kafkago.Reader the listener uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Listener consumes plot change notifications and invalidates the cached
// thumbnails of the changed node and its ancestors.
type Listener struct {
	reader  messageReader
	cache   Invalidator
	paths   NodePather
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewListener creates a consumer-group listener on the configured topic.
func NewListener(cfg *config.Config, cache Invalidator, paths NodePather, logger *slog.Logger, metrics *observability.Metrics) *Listener {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  time.Second,
	})
	return newListener(r, cache, paths, logger, metrics)
}

func newListener(r messageReader, cache Invalidator, paths NodePather, logger *slog.Logger, metrics *observability.Metrics) *Listener {
	return &Listener{
		reader:  r,
		cache:   cache,
		paths:   paths,
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes messages until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("change feed started")
	l.metrics.ChangeFeedRunning.Set(1)
	defer l.metrics.ChangeFeedRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("change feed stopping", "reason", ctx.Err())
				return nil
			}
			l.logger.Error("fetch change notification failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		l.handle(msg)

		if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			l.logger.Warn("commit offset failed", "error", err,
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

// Close releases the underlying consumer.
func (l *Listener) Close() error {
	return l.reader.Close()
}

// handle invalidates every cache entry affected by one notification. It
// returns the number of entries dropped.
func (l *Listener) handle(msg kafkago.Message) int {
	l.metrics.ChangeFeedMessages.Inc()

	ref, err := parseMessage(msg)
	if err != nil {
		l.metrics.ChangeFeedBadMessage.Inc()
		l.logger.Warn("ignoring change notification", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
		return 0
	}

	dropped := 0
	for _, segs := range ref.Lineage() {
		path, err := l.paths.Path(segs...)
		if err != nil {
			continue
		}
		if l.cache.Invalidate(path) {
			dropped++
		}
	}
	l.logger.Debug("thumbnail cache invalidated", "node", ref.String(), "entries", dropped)
	return dropped
}

// parseMessage reads the node from a JSON value, falling back to a
// "NET[.STA[.CHA]]" key.
func parseMessage(msg kafkago.Message) (domain.NodeRef, error) {
	if len(msg.Value) > 0 {
		var ref domain.NodeRef
		if err := json.Unmarshal(msg.Value, &ref); err != nil {
			return domain.NodeRef{}, fmt.Errorf("decode change notification: %w", err)
		}
		if err := ref.Validate(); err != nil {
			return domain.NodeRef{}, fmt.Errorf("invalid node %q: %w", ref.String(), err)
		}
		return ref, nil
	}
	ref, err := domain.ParseNodeRef(string(msg.Key))
	if err != nil {
		return domain.NodeRef{}, fmt.Errorf("invalid node key %q: %w", msg.Key, err)
	}
	return ref, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
