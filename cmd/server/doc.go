// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

/*
Package main is the entry point for the Mind Digest recommendation server.

The server learns from a user's mood history, journal entries and
interactions and serves contextual wellness recommendations over HTTP.

# Application Architecture

	RootSupervisor ("mind-digest")
	├── DataSupervisor ("data-layer")
	│   ├── Cache sweeper
	│   └── Badger value-log GC
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event router (cache invalidation)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, .env, environment)
 2. Logging: zerolog
 3. History store: DuckDB or Postgres (pgx)
 4. Interaction log: BadgerDB, replayed into feedback counters
 5. Recommendation cache: in-process or Redis
 6. Event bus: watermill gochannel or NATS
 7. Optional peer directory (Qdrant) and AI provider (OpenAI-compatible)
 8. Recommendation engine
 9. Supervisor tree and HTTP server

# Example Usage

Development with everything in-process:

	export AUTH_MODE=none
	export HISTORY_DUCKDB_PATH=./data/history.duckdb
	./mind-digest

Production:

	export JWT_SECRET=$(openssl rand -base64 32)
	export HISTORY_DRIVER=postgres
	export DATABASE_URL=postgres://...
	export CACHE_BACKEND=redis REDIS_ADDR=redis:6379
	export EVENTS_BACKEND=nats NATS_URL=nats://nats:4222
	export QDRANT_ENABLED=true OPENAI_ENABLED=true OPENAI_API_KEY=sk-...
	./mind-digest

SIGINT and SIGTERM stop the supervisor tree, which shuts the HTTP server
down gracefully before stores are closed.
*/
package main
