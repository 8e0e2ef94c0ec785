// Package mcp provides the Model Context Protocol control surface for the bot.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for observing and steering the bot loop
//   - Text results with an ASCII board grid
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - bot_status: Engine lifecycle, loop state, and active profile
//   - bot_board: Current board grid with score and the planner's ordering
//   - bot_start: Begin a run
//   - bot_stop: End the run at the next tick boundary
//   - bot_pause / bot_resume: Suspend and continue without ending the run
//   - bot_step: Exactly one planning/execution cycle
//   - set_strategy: Partial strategy update (kind, heuristic, depth, probability)
//   - set_direction_priority: Pin the move ordering, or clear the pin
//   - bot_stats: Loop counters
//   - list_runs: Finished runs, newest first
//   - list_profiles: Loadable bot profiles
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: mounted at /mcp via GetMCPServer().HandleMessage
//
// Every tool delegates to the service.BotService facade, the same layer the
// REST API uses, so agents and HTTP clients always see consistent state.
//
// Usage:
//
//	mcpServer := mcp.NewServer(botService, mcp.WithLogger(logger))
//
//	// Stdio mode
//	server.ServeStdio(mcpServer.GetMCPServer())
//
//	// HTTP mode
//	response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)
package mcp
