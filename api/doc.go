// Package api provides the HTTP REST control surface for the bot.
//
// The api package implements:
//   - RESTful endpoints for observing and driving the bot
//   - Strategy and direction-priority configuration
//   - Run history listing and cleanup
//   - WebSocket upgrade for the live event stream
//   - Static file serving for the control panel
//
// Endpoints:
//
// Observation:
//   - GET /api/status - Engine lifecycle plus loop state
//   - GET /api/board - Current board cells, score, ranked moves
//   - GET /api/stats - Loop counters and run-history size
//   - GET /api/health - Liveness probe
//
// Strategy:
//   - GET /api/strategy - Retained strategy and serving engine mode
//   - PUT /api/strategy - Partial update, e.g. {"depth": 5}
//
// Loop Control:
//   - POST /api/driver/start - Begin (or resume) a run
//   - POST /api/driver/stop - End the run at the next tick boundary
//   - POST /api/driver/pause - Suspend, keeping the loop alive
//   - POST /api/driver/resume - Continue a paused run
//   - POST /api/driver/step - One planning/execution cycle
//   - PUT /api/driver/priority - Pin move ordering: {"directions": ["left","down"]}
//   - DELETE /api/driver/priority - Return ordering control to the planner
//
// Run History:
//   - GET /api/runs - All recorded runs, newest first
//   - GET /api/runs/{id} - One run record
//   - DELETE /api/runs/{id} - Remove a record
//
// Profiles:
//   - GET /api/profiles - Loadable bot profiles
//
// Events:
//   - GET /ws - WebSocket upgrade onto the broadcast stream
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Errors are returned as JSON with
// an appropriate HTTP status code:
//
//	{"error": "no board surface configured"}
//
// Handlers hold no business logic: every operation delegates to the
// service.BotService facade, so REST and MCP clients see identical shapes.
// Successful control operations additionally broadcast a fresh status
// snapshot to WebSocket subscribers.
//
// Usage:
//
//	server := api.NewServer(botService, hub, api.WithLogger(logger))
//	http.ListenAndServe(":8080", server)
package api
