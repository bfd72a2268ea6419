// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/logging"
)

const embeddedServerStartTimeout = 10 * time.Second

// startEmbeddedServer runs an in-process NATS server with JetStream so a
// single-binary deployment gets durable events without external infra.
func startEmbeddedServer(cfg *config.EventsConfig) (url string, stop func(), err error) {
	opts := &natsserver.Options{
		Port:      -1, // random free port
		JetStream: true,
		StoreDir:  cfg.StoreDir,
	}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return "", nil, fmt.Errorf("create embedded nats server: %w", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(embeddedServerStartTimeout) {
		srv.Shutdown()
		return "", nil, fmt.Errorf("embedded nats server not ready within %s", embeddedServerStartTimeout)
	}

	logging.Info().Str("url", srv.ClientURL()).Msg("embedded nats server started")
	return srv.ClientURL(), srv.Shutdown, nil
}

// newNATSPublisher connects a JetStream-backed watermill publisher.
func newNATSPublisher(url string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:       url,
		Marshaler: &wmnats.NATSMarshaler{},
		NatsOptions: []nats.Option{
			nats.RetryOnFailedConnect(true),
			nats.Timeout(10 * time.Second),
			nats.ReconnectWait(time.Second),
		},
		JetStream: wmnats.JetStreamConfig{
			AutoProvision: true,
		},
	}, logger)
}
