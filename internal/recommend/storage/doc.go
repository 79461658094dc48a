// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package storage persists the interaction event log in BadgerDB.
//
// Events are append-only. Each event is stored once under a key ordered by
// user and timestamp:
//
//	ev:{user_id}\x00{unix_nanos, 20 digits}\x00{event_id}
//
// Recent reads a user's newest events with a reverse prefix scan. ForEach
// walks every stored event and is used at startup to warm the feedback
// counters.
//
// Usage:
//
//	log, err := storage.OpenBadgerLog(storage.Options{Path: "/data/interactions"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	engine, err := recommend.NewEngine(cfg, recommend.Deps{Interactions: log}, logger)
package storage
