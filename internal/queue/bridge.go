package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"email-dispatch-go/internal/config"
	"email-dispatch-go/internal/metrics"
	"email-dispatch-go/internal/models"
)

// ErrDisabled is returned by Publish when the broker was unreachable at
// startup (or not configured) and the queue integration is off.
var ErrDisabled = errors.New("queue integration is disabled")

// Dispatcher is the engine capability the bridge feeds decoded requests into.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.EmailRequest) (models.EmailRecord, error)
}

// Bridge connects the dispatch engine to a Kafka topic in both
// directions: a consumer loop that turns inbound messages into dispatch
// calls, and a publisher for the asynchronous send endpoint. Broker
// connectivity is best effort; when the startup dial fails the bridge
// stays disabled and the rest of the process keeps running.
type Bridge struct {
	cfg        *config.KafkaConfig
	dispatcher Dispatcher
	metrics    *metrics.Metrics

	reader  *kafka.Reader
	writer  *kafka.Writer
	enabled atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewBridge creates a queue bridge
func NewBridge(cfg *config.KafkaConfig, d Dispatcher, m *metrics.Metrics) *Bridge {
	return &Bridge{
		cfg:        cfg,
		dispatcher: d,
		metrics:    m,
	}
}

// Start attempts a bounded dial to the broker and, on success, spawns
// the consumer loop. Any startup failure is logged and leaves the
// bridge disabled; it never returns an error that would abort boot.
func (b *Bridge) Start(ctx context.Context) {
	if b.cfg.Broker == "" {
		logrus.Info("Kafka broker not configured, skipping queue integration")
		return
	}

	dialTimeout := b.cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 15 * time.Second
	}

	logrus.Infof("Connecting to Kafka broker %s", b.cfg.Broker)
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := kafka.DialContext(dialCtx, "tcp", b.cfg.Broker)
	if err != nil {
		logrus.Errorf("Kafka broker unreachable, continuing without queue integration: %v", err)
		return
	}
	if cerr := conn.Close(); cerr != nil {
		logrus.Warnf("Failed to close Kafka dial check connection: %v", cerr)
	}

	b.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{b.cfg.Broker},
		GroupID:  b.cfg.GroupID,
		Topic:    b.cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	b.writer = &kafka.Writer{
		Addr:     kafka.TCP(b.cfg.Broker),
		Topic:    b.cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}

	loopCtx, loopCancel := context.WithCancel(context.Background())
	b.cancel = loopCancel
	b.enabled.Store(true)

	b.wg.Add(1)
	go b.consume(loopCtx)

	logrus.Infof("Kafka queue bridge started, consuming topic %q as group %q", b.cfg.Topic, b.cfg.GroupID)
}

// consume reads messages until the bridge is closed. A failing message
// is logged and skipped; it never stops the loop.
func (b *Bridge) consume(ctx context.Context) {
	defer b.wg.Done()

	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Kafka consumer loop stopped")
				return
			}
			logrus.Errorf("Failed to read Kafka message: %v", err)
			continue
		}
		b.handle(ctx, msg.Value)
	}
}

// handle decodes one inbound message and dispatches it. Deserialization
// and dispatch failures are both confined to this message.
func (b *Bridge) handle(ctx context.Context, value []byte) {
	b.metrics.QueueConsumed.Inc()

	var req models.EmailRequest
	if err := json.Unmarshal(value, &req); err != nil {
		b.metrics.QueueRejected.Inc()
		logrus.Errorf("Skipping malformed queue message: %v", err)
		return
	}

	if _, err := b.dispatcher.Dispatch(ctx, req); err != nil {
		// The failed attempt is already recorded in history; queue
		// callers get no direct feedback.
		logrus.Errorf("Queue-triggered dispatch failed: %v", err)
	}
}

// Publish sends one email request to the topic, keyed by recipient.
func (b *Bridge) Publish(ctx context.Context, req models.EmailRequest) error {
	if !b.enabled.Load() {
		return ErrDisabled
	}

	payload, err := json.Marshal(struct {
		models.EmailRequest
		Timestamp time.Time `json:"timestamp"`
	}{req, time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.ToEmail),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to publish to Kafka: %w", err)
	}

	b.metrics.QueuePublished.Inc()
	return nil
}

// Enabled reports whether the queue integration is active.
func (b *Bridge) Enabled() bool {
	return b.enabled.Load()
}

// Close stops the consumer loop and releases broker connections.
func (b *Bridge) Close() error {
	if !b.enabled.Swap(false) {
		return nil
	}

	b.cancel()

	var errs []error
	if err := b.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close Kafka reader: %w", err))
	}
	if err := b.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close Kafka writer: %w", err))
	}
	b.wg.Wait()

	logrus.Info("Kafka queue bridge stopped")
	return errors.Join(errs...)
}
