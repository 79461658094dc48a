// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

/*
Package events fans interaction events out over Watermill.

A Bus publishes every recorded recommend.Event to one topic. Two backends
are supported:

  - channel: an in-process gochannel pub/sub, the default for a single
    instance.
  - nats: NATS JetStream through watermill-nats, for several instances
    sharing one cache.

A Router consumes the topic and runs the Invalidator, which drops a user's
cached bundles whenever they act on a recommendation. Shown events are
skipped; they are written on every generation and would otherwise clear
the cache that generation just filled.

	bus, err := events.NewBus(events.Config{Backend: "channel", Topic: "interactions"}, logger)
	router, err := events.NewRouter(events.DefaultRouterConfig(), bus, events.NewInvalidator(engine, logger), logger)
	go router.Run(ctx)
*/
package events
