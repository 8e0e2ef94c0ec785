// Package service provides the operation layer between the control surfaces
// and the bot core.
//
// The service package implements:
//   - One BotService interface shared by the REST and MCP transports
//   - Board observation enriched with score, max tile, and move ranking
//   - Loop control (start, stop, pause, resume, single step, board reset)
//   - Strategy and direction-priority configuration
//   - Run-history and profile listings
//
// Core Interfaces:
//
// BotService is the main service interface providing high-level bot
// operations. EngineManager, LoopController, RunStore, and ProfileStore are
// the narrow surfaces it consumes; the concrete manager, driver, runs, and
// config types satisfy them, and tests substitute fakes.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game packages. Handlers never touch the driver or engine manager
// directly: every surface calls the same service methods and therefore
// reports identical JSON shapes.
//
// Usage:
//
//	svc := service.NewBotService(engines, drv, game,
//		service.WithRuns(runStore),
//		service.WithProfiles(profileStore),
//		service.WithProfileName("default"),
//	)
//
//	status, err := svc.Status(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
package service
