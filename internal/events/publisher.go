// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package events publishes domain events for downstream consumers
// (notification fan-out, audit trails, analytics exports). Publishing is
// best-effort: a failed publish is logged and never fails the operation
// that produced it.
package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/logging"
	"github.com/tunescale/tunescale/internal/metrics"
	"github.com/tunescale/tunescale/internal/models"
)

// Topics published by the scoring core.
const (
	TopicClassificationRunCompleted = "classification.run.completed"
	TopicRecommendationRunGenerated = "recommendation.run.generated"
	TopicSwipeRecorded              = "swipe.recorded"
)

// Publisher emits domain events. The zero value is unusable; construct
// with New.
type Publisher struct {
	pub message.Publisher
}

// New builds the publisher over the configured transport. Without NATS
// enabled it uses an in-process pub/sub so internal subscribers keep
// working in single-binary deployments.
func New(cfg *config.EventsConfig) (*Publisher, func() error, error) {
	wmLogger := newLoggerAdapter(logging.With().Str("component", "events").Logger())

	if !cfg.Enabled {
		pub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		return &Publisher{pub: pub}, pub.Close, nil
	}

	url := cfg.NATSURL
	var shutdownServer func()
	if cfg.EmbeddedServer {
		serverURL, stop, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, nil, err
		}
		url = serverURL
		shutdownServer = stop
	}

	pub, err := newNATSPublisher(url, wmLogger)
	if err != nil {
		if shutdownServer != nil {
			shutdownServer()
		}
		return nil, nil, fmt.Errorf("connect nats publisher: %w", err)
	}

	closer := func() error {
		err := pub.Close()
		if shutdownServer != nil {
			shutdownServer()
		}
		return err
	}
	return &Publisher{pub: pub}, closer, nil
}

// envelope is the wire form every event shares.
type envelope struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// PublishRunCompleted emits the terminal state of a classification run.
func (p *Publisher) PublishRunCompleted(run *models.ClassificationRun) {
	p.publish(TopicClassificationRunCompleted, run)
}

// PublishRecommendationGenerated emits a persisted recommendation run.
func (p *Publisher) PublishRecommendationGenerated(run *models.RecommendationRun) {
	p.publish(TopicRecommendationRunGenerated, run)
}

// PublishSwipeRecorded emits a recorded swipe decision.
func (p *Publisher) PublishSwipeRecorded(orgID string, swipe *models.Swipe) {
	p.publish(TopicSwipeRecorded, struct {
		OrgID string        `json:"org_id"`
		Swipe *models.Swipe `json:"swipe"`
	}{OrgID: orgID, Swipe: swipe})
}

func (p *Publisher) publish(topic string, payload any) {
	raw, err := json.Marshal(envelope{
		ID:         uuid.NewString(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		logging.Error().Err(err).Str("topic", topic).Msg("event marshal failed")
		return
	}

	msg := message.NewMessage(uuid.NewString(), raw)
	if err := p.pub.Publish(topic, msg); err != nil {
		logging.Warn().Err(err).Str("topic", topic).Msg("event publish failed")
		return
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
}
