// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package supervisor runs Mind Digest's long-lived services under a suture
// v4 tree.
//
// The tree has three layers, each its own supervisor so a crash in one does
// not restart the others:
//
//	mind-digest
//	├── data-layer       cache sweeper, badger value-log GC
//	├── messaging-layer  watermill event router
//	└── api-layer        HTTP server
//
// Supervisor events are logged through sutureslog.
package supervisor
