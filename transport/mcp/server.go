package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/service"
)

// Server exposes the bot over the Model Context Protocol.
type Server struct {
	service   service.BotService
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger. Components default to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server wrapping the bot facade.
func NewServer(botService service.BotService, opts ...Option) *Server {
	s := &Server{
		service: botService,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"2048 Autopilot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 Autopilot - MCP Interface

This server drives a 2048 sliding-tile bot. Engines rank candidate moves,
the driver executes them against the board surface, and every tool below
reads or steers that loop.

AVAILABLE TOOLS:
- bot_status: Engine lifecycle, loop state, and active profile
- bot_board: Current board grid with score and the planner's move ordering
- bot_start / bot_stop / bot_pause / bot_resume: Loop control
- bot_step: Exactly one planning/execution cycle
- bot_reset: Stop the run and reset the board to a fresh game
- set_strategy: Partial strategy update (kind, heuristic, depth, probability)
- set_direction_priority: Pin the move ordering, bypassing the planner
- bot_stats: Loop counters (moves, ticks, stuck, recoveries, read failures)
- list_runs: Finished runs, newest first
- list_profiles: Loadable bot profiles

TYPICAL WORKFLOW:
1. bot_status to see which engine is serving and whether a run is active
2. bot_board to inspect the position
3. bot_start to let the loop play, or bot_step to drive it move by move
4. bot_stats and list_runs to review outcomes

Strategy and priority changes take effect at the next tick boundary; they
never interrupt an in-flight move.`),
	)

	// Register all tools
	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Observation
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_status",
		Description: "Get the engine lifecycle, loop state, pinned priority, and active profile",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStatus)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_board",
		Description: "Get the current board as a grid, with score, max tile, and the planner's move ordering",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleBoard)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_stats",
		Description: "Get the loop counters: moves, ticks, stuck detections, recoveries, read failures",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStats)

	// Loop control
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_start",
		Description: "Start a run. The loop plans and executes moves until game over, a budget, or bot_stop",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStart)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_stop",
		Description: "Stop the run at the next tick boundary; an in-flight move completes first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStop)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_pause",
		Description: "Pause the run, keeping the loop alive for bot_resume",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handlePause)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_resume",
		Description: "Resume a paused run",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleResume)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_step",
		Description: "Run exactly one planning/execution cycle and report whether the board changed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStep)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bot_reset",
		Description: "Stop any active run and reset the board to a fresh two-tile game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleReset)

	// Configuration
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "set_strategy",
		Description: "Update the planning strategy. Omitted fields keep their current values; depth and probability are clamped to safe ranges",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Search algorithm, e.g. \"expectimax\"",
				},
				"heuristic": map[string]interface{}{
					"type":        "string",
					"description": "Board evaluation heuristic, e.g. \"corner\"",
				},
				"depth": map[string]interface{}{
					"type":        "integer",
					"description": "Search depth (clamped to 1-8)",
				},
				"probability": map[string]interface{}{
					"type":        "number",
					"description": "Chance-node pruning cutoff (clamped to 0.0001-0.2)",
				},
			},
		},
	}, s.handleSetStrategy)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "set_direction_priority",
		Description: "Pin the move ordering, bypassing the planner. Pass an empty array (or omit directions) to return control to the planner. Partial lists are completed to a full permutation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"directions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "right", "down", "left"},
					},
					"description": "Directions to try first, most preferred first",
				},
			},
		},
	}, s.handleSetDirectionPriority)

	// History and profiles
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List finished runs, newest first, with final score, max tile, and end reason",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListRuns)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_profiles",
		Description: "List the loadable bot profiles with their engine and depth",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListProfiles)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool handlers

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.service.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStatus(status)), nil
}

func (s *Server) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := s.service.Board(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(board)), nil
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.service.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStats(stats)), nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.Start(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Info("mcp start requested", zap.String("run_id", result.RunID))
	return mcp.NewToolResultText(formatControl(result)), nil
}

func (s *Server) handleStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.Stop(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Info("mcp stop requested")
	return mcp.NewToolResultText(formatControl(result)), nil
}

func (s *Server) handlePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.Pause(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatControl(result)), nil
}

func (s *Server) handleResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.Resume(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatControl(result)), nil
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.Step(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "No move changed the board."
	if result.Changed {
		status = "Board changed."
	}

	text := fmt.Sprintf("%s\nMoves: %d | Ticks: %d | Stuck: %d",
		status, result.Stats.Moves, result.Stats.Ticks, result.Stats.Stuck)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.Reset(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Info("mcp reset requested")
	return mcp.NewToolResultText(formatControl(result)), nil
}

func (s *Server) handleSetStrategy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	var update engine.StrategyUpdate
	if kind, ok := args["kind"].(string); ok && kind != "" {
		update.Kind = &kind
	}
	if heuristic, ok := args["heuristic"].(string); ok && heuristic != "" {
		update.Heuristic = &heuristic
	}
	if depth, ok := args["depth"].(float64); ok {
		d := int(depth)
		update.Depth = &d
	}
	if probability, ok := args["probability"].(float64); ok {
		update.Probability = &probability
	}

	result, err := s.service.SetStrategy(ctx, update)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Strategy updated.\n%s\nServing engine: %s",
		formatStrategy(result.Strategy), result.Mode)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSetDirectionPriority(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	directionsRaw, _ := args["directions"].([]interface{})

	directions := make([]string, 0, len(directionsRaw))
	for _, d := range directionsRaw {
		if name, ok := d.(string); ok {
			directions = append(directions, name)
		}
	}

	if len(directions) == 0 {
		if _, err := s.service.ClearDirectionPriority(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Move ordering returned to the planner."), nil
	}

	result, err := s.service.SetDirectionPriority(ctx, directions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Move ordering pinned: %s", strings.Join(result.Priority, " > "))
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.service.ListRuns(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No runs recorded yet."), nil
	}

	result := fmt.Sprintf("Recorded Runs (%d):\n\n", len(records))
	for _, rec := range records {
		result += fmt.Sprintf("- %s [%s] score=%d max_tile=%d moves=%d %s (%s, started %s)\n",
			rec.ID, rec.Profile, rec.Score, rec.MaxTile, rec.Moves, rec.EndReason,
			rec.Duration().Round(time.Second), rec.StartedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles, err := s.service.ListProfiles(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(profiles) == 0 {
		return mcp.NewToolResultText("No profiles available."), nil
	}

	result := "Available Profiles:\n\n"
	for _, p := range profiles {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Engine: %s, Depth: %d\n\n",
			p.ProfileID, p.Name, p.Description, p.Engine, p.Depth)
	}

	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatStatus(status *service.StatusResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Engine: %s (%s)\n", status.Engine.Mode, status.Engine.Status))
	if status.Engine.LastError != "" {
		b.WriteString(fmt.Sprintf("Last engine error: %s\n", status.Engine.LastError))
	}
	b.WriteString(formatStrategy(status.Engine.Strategy))
	b.WriteString("\n")

	d := status.Driver
	b.WriteString(fmt.Sprintf("Driver: %s", d.State))
	if d.RunID != "" {
		b.WriteString(fmt.Sprintf(" | Run: %s | Moves: %d | Ticks: %d", d.RunID, d.Moves, d.Ticks))
	}
	b.WriteString("\n")

	if len(status.Priority) > 0 {
		b.WriteString(fmt.Sprintf("Priority: pinned %s\n", strings.Join(status.Priority, " > ")))
	} else {
		b.WriteString("Priority: planner decides\n")
	}

	if status.Profile != "" {
		b.WriteString(fmt.Sprintf("Profile: %s\n", status.Profile))
	}

	return b.String()
}

func formatStrategy(s engine.Strategy) string {
	return fmt.Sprintf("Strategy: %s/%s depth=%d probability=%.4f",
		s.Kind, s.Heuristic, s.Depth, s.Probability)
}

func formatBoard(board *service.BoardResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Score: %d | Max tile: %d", board.Score, board.MaxTile))
	if board.GameOver {
		b.WriteString(" | GAME OVER")
	}
	b.WriteString("\n\n")

	for _, row := range board.Cells {
		for x, v := range row {
			if x > 0 {
				b.WriteString(" ")
			}
			if v == 0 {
				b.WriteString(fmt.Sprintf("%5s", "."))
			} else {
				b.WriteString(fmt.Sprintf("%5d", v))
			}
		}
		b.WriteString("\n")
	}

	if len(board.Ranked) > 0 {
		b.WriteString(fmt.Sprintf("\nPlanner ordering: %s\n", strings.Join(board.Ranked, " > ")))
	}

	return b.String()
}

func formatStats(stats *service.StatsResult) string {
	d := stats.Driver

	var b strings.Builder
	b.WriteString(fmt.Sprintf("State: %s", d.State))
	if d.RunID != "" {
		b.WriteString(fmt.Sprintf(" | Run: %s", d.RunID))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Moves: %d | Ticks: %d | Stuck: %d | Recoveries: %d | Read failures: %d\n",
		d.Moves, d.Ticks, d.Stuck, d.Recoveries, d.ReadFailures))
	b.WriteString(fmt.Sprintf("Runs kept: %d\n", stats.RunsKept))

	if !d.StartedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Started: %s\n", d.StartedAt.Format("15:04:05")))
	}

	return b.String()
}

func formatControl(result *service.ControlResult) string {
	text := fmt.Sprintf("%s\nState: %s", result.Message, result.State)
	if result.RunID != "" {
		text += fmt.Sprintf("\nRun: %s", result.RunID)
	}
	return text
}
