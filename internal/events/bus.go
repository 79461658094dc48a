// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Wetende/mind-digest-sub001/internal/breaker"
	"github.com/Wetende/mind-digest-sub001/internal/logging"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

// Backends.
const (
	BackendChannel = "channel"
	BackendNATS    = "nats"
)

// DefaultTopic carries interaction events.
const DefaultTopic = "mind-digest.interactions"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event bus is closed")

// Config configures the event bus.
type Config struct {
	Backend       string
	NATSURL       string
	Topic         string
	ConsumerGroup string

	// ChannelBuffer is the gochannel output buffer per subscriber.
	ChannelBuffer int64

	MaxReconnects int
	ReconnectWait time.Duration
}

// Bus publishes interaction events and exposes a subscriber for consumers.
type Bus struct {
	pub     message.Publisher
	sub     message.Subscriber
	topic   string
	backend string
	breaker *gobreaker.CircuitBreaker[interface{}]
	logger  zerolog.Logger
	wmLog   watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

var _ recommend.EventPublisher = (*Bus)(nil)

// WatermillLogger adapts a zerolog logger for Watermill.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WatermillLogger(logger zerolog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(slog.New(logging.NewSlogHandler(logger)))
}

// NewBus creates a bus for the configured backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	logger = logger.With().Str("component", "event_bus").Str("backend", cfg.Backend).Logger()
	wmLog := WatermillLogger(logger)

	b := &Bus{
		topic:   cfg.Topic,
		backend: cfg.Backend,
		logger:  logger,
		wmLog:   wmLog,
		breaker: breaker.New(breaker.DefaultConfig("event_publish"), logger),
	}

	switch cfg.Backend {
	case BackendChannel, "":
		buffer := cfg.ChannelBuffer
		if buffer <= 0 {
			buffer = 256
		}
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buffer}, wmLog)
		b.pub, b.sub, b.backend = ch, ch, BackendChannel
	case BackendNATS:
		pub, sub, err := newNATS(&cfg, logger, wmLog)
		if err != nil {
			return nil, err
		}
		b.pub, b.sub = pub, sub
	default:
		return nil, fmt.Errorf("unknown event backend %q", cfg.Backend)
	}

	logger.Info().Str("topic", cfg.Topic).Msg("Event bus ready")
	return b, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newNATS(cfg *Config, logger zerolog.Logger, wmLog watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("mind-digest"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLog)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	group := cfg.ConsumerGroup
	if group == "" {
		group = "mind-digest"
	}
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: group,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: group,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverNew(),
				natsgo.AckExplicit(),
			},
		},
	}, wmLog)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return pub, sub, nil
}

// Publish sends an event to the bus topic.
//
//nolint:gocritic // hugeParam: events are immutable values
func (b *Bus) Publish(ctx context.Context, event recommend.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	id := event.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, payload)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("action", string(event.Action))
	msg.Metadata.Set("category", string(event.Category))
	if b.backend == BackendNATS {
		msg.Metadata.Set(natsgo.MsgIdHdr, id)
	}
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		middleware.SetCorrelationID(cid, msg)
	}

	_, err = breaker.Execute(b.breaker, func() (interface{}, error) {
		return nil, b.pub.Publish(b.topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", b.topic, err)
	}
	return nil
}

// Subscriber returns the bus subscriber.
func (b *Bus) Subscriber() message.Subscriber { return b.sub }

// Topic returns the event topic.
func (b *Bus) Topic() string { return b.topic }

// Backend returns the active backend name.
func (b *Bus) Backend() string { return b.backend }

// Close shuts down the publisher and subscriber.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.pub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if b.sub != nil && b.backend != BackendChannel {
		if err := b.sub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DecodeEvent reads an event from a message payload.
func DecodeEvent(msg *message.Message) (recommend.Event, error) {
	var ev recommend.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}
