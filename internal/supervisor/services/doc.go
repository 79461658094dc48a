// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

/*
Package services adapts Mind Digest components to suture.Service.

Each wrapper translates a component's lifecycle (ListenAndServe/Shutdown,
Run/Close, or a periodic task) into Serve(ctx) error and names itself via
String for supervisor logs.

	tree.AddDataService(services.NewCacheSweeper(c, 10*time.Minute, logger))
	tree.AddDataService(services.NewBadgerGC(log, 10*time.Minute, logger))
	tree.AddMessagingService(services.NewEventRouterService(router, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
*/
package services
