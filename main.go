// Command autopilot2048 starts the 2048 autopilot.
//
// It supports three modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the
//     WebSocket event stream, and an /mcp HTTP endpoint, with the bot playing
//     the in-process simulator
//  2. "play" – runs one headless game against the simulator until it ends,
//     printing progress and a summary
//  3. "stdio-mcp" – runs an MCP server speaking JSON-RPC over stdin/stdout
//
// Flags control host/port, profile selection, debug logging, version output,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/autopilot2048/api"
	"github.com/wricardo/autopilot2048/game/config"
	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/jsengine"
	"github.com/wricardo/autopilot2048/game/manager"
	"github.com/wricardo/autopilot2048/game/runs"
	"github.com/wricardo/autopilot2048/game/service"
	"github.com/wricardo/autopilot2048/game/sim"
	"github.com/wricardo/autopilot2048/transport/mcp"
	"github.com/wricardo/autopilot2048/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Autopilot"
)

// Configuration flags control how the bot starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing bot profiles")
	profileName  = flag.String("profile", "", "Profile to load (empty uses the directory default)")
	runsDir      = flag.String("runs-dir", getRunsDirDefault(), "Directory for persisted run records")
	keepRuns     = flag.Int("keep-runs", 50, "Run records to keep before pruning the oldest")
	seed         = flag.Int64("seed", 0, "Simulator seed override (0 keeps the profile's seed)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault returns the default profile directory.
// It first honors the CONFIG_DIR environment variable, then falls back to "configs".
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

// getRunsDirDefault returns the default run-history directory.
// It first honors the RUNS_DIR environment variable, then falls back to "runs".
func getRunsDirDefault() string {
	if runsDir := os.Getenv("RUNS_DIR"); runsDir != "" {
		return runsDir
	}
	return "runs"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  serve, server    Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  play             Run one headless game against the simulator\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                        # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090             # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -profile blitz play    # One fast headless game\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp              # Run MCP stdio server\n", os.Args[0])
	}
}

// buildLogger constructs the process logger. Production config writes JSON to
// stderr, which keeps stdout clean for the stdio-mcp transport and the play
// mode summary.
func buildLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if *debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger := buildLogger()
	defer logger.Sync()

	if envErr != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(envErr) {
			logger.Warn("error loading .env file", zap.Error(envErr))
		}
	} else {
		logger.Info("loaded environment variables from .env file")
	}

	// Determine mode from command
	args := flag.Args()
	mode := "serve" // default
	if len(args) > 0 {
		mode = args[0]
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", mode))

	// Initialize services
	bot, err := initializeServices(logger)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		// Run MCP server over stdin/stdout
		runStdioMCP(bot, logger)
		return

	case "play":
		// Run one headless game and exit
		runPlay(bot, logger)

	case "serve", "server", "http":
		// Run HTTP server with API, WebSocket, and MCP endpoint
		runHTTPServer(bot, logger)

	default:
		logger.Fatal("unknown mode; use 'serve' (default), 'play', or 'stdio-mcp'",
			zap.String("mode", mode))
	}
}

// bot bundles the wired components. The service facade is what the transports
// consume; the concrete pieces stay reachable for lifecycle work main owns
// (engine warmup, driver teardown, history maintenance).
type bot struct {
	service service.BotService
	driver  *driver.Driver
	game    *sim.Game
	engines *manager.Manager
	runs    *runs.Manager
	history *runs.FilePersistence
	profile *config.Profile
}

// initializeServices wires the profile, simulator, planning engines, driver,
// and run history into a bot service. It also starts the background
// maintenance routines for run history.
func initializeServices(logger *zap.Logger) (*bot, error) {
	// Create config manager first (owns profile loading)
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	// Resolve the profile
	profile := configManager.GetDefault()
	if *profileName != "" {
		profile, err = configManager.Load(*profileName)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %q: %w", *profileName, err)
		}
	}
	logger.Info("profile loaded",
		zap.String("profile", profile.Name),
		zap.String("engine_mode", profile.EngineMode()))

	// Create the simulated board surface
	simSeed := profile.Sim.Seed
	if *seed != 0 {
		simSeed = *seed
	}
	var simOpts []sim.Option
	if simSeed != 0 {
		simOpts = append(simOpts, sim.WithSeed(simSeed))
	}
	if profile.Sim.MoveFailureRate > 0 {
		simOpts = append(simOpts, sim.WithMoveFailureRate(profile.Sim.MoveFailureRate))
	}
	game := sim.New(simOpts...)

	// Create the engine manager. The loader closure defers artifact loading
	// to Initialize so a broken artifact degrades to the builtin heuristic
	// instead of failing startup.
	managerCfg := manager.Config{
		Disabled:    profile.Engine.Disabled,
		LoadTimeout: profile.LoadTimeout(),
	}
	if artifact := profile.Engine.Artifact; artifact != "" {
		managerCfg.Loader = func(ctx context.Context) (manager.NativePlanner, error) {
			eng, err := jsengine.Load(ctx, artifact, jsengine.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return eng, nil
		}
	}
	engines := manager.New(managerCfg, manager.WithLogger(logger))

	// Apply the profile's strategy
	st := profile.Strategy
	engines.SetStrategy(engine.StrategyUpdate{
		Kind:        &st.Kind,
		Heuristic:   &st.Heuristic,
		Depth:       &st.Depth,
		Probability: &st.Probability,
	})

	// Create the driver and attach the simulator
	drv := driver.New(engines, profile.DriverConfig(), driver.WithLogger(logger))
	if err := drv.Attach(game); err != nil {
		return nil, fmt.Errorf("failed to attach board surface: %w", err)
	}

	// Create run history with file persistence
	history, err := runs.NewFilePersistence(*runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create run persistence: %w", err)
	}
	store := runs.NewManager(runs.WithPersistence(history), runs.WithLogger(logger))

	// Load persisted runs on startup
	if err := store.LoadPersisted(); err != nil {
		logger.Warn("failed to load persisted runs", zap.Error(err))
	}

	// Record finished runs from the driver's event stream
	recorder := runs.NewRecorder(store, runs.Source{
		Stats:   drv.GetStats,
		Score:   game.Score,
		MaxTile: game.MaxTile,
	}, runs.WithProfile(profile.Name), runs.WithRecorderLogger(logger))
	drv.Subscribe(recorder.Handle)

	// Create the bot service facade
	botService := service.NewBotService(engines, drv, game,
		service.WithRuns(store),
		service.WithProfiles(configManager),
		service.WithProfileName(profile.Name),
		service.WithLogger(logger))

	// Start run history maintenance routines
	go historyPruneRoutine(store, *keepRuns, logger)
	go historySyncRoutine(store, history, logger)

	return &bot{
		service: botService,
		driver:  drv,
		game:    game,
		engines: engines,
		runs:    store,
		history: history,
		profile: profile,
	}, nil
}

// historyPruneRoutine periodically drops the oldest run records so the
// history stays bounded.
func historyPruneRoutine(store *runs.Manager, keep int, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		removed := store.Prune(keep)
		if removed > 0 {
			logger.Info("pruned old run records", zap.Int("removed", removed))
		}
	}
}

// historySyncRoutine periodically syncs in-memory run records with the
// filesystem. It removes records from memory when their corresponding files
// are deleted, so operators can clear history with rm.
func historySyncRoutine(store *runs.Manager, history *runs.FilePersistence, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pruned := 0
		for _, rec := range store.List() {
			if history.Exists(rec.ID) {
				continue
			}
			// File deleted, remove from memory
			if err := store.Delete(rec.ID); err == nil {
				pruned++
			}
		}
		if pruned > 0 {
			logger.Info("filesystem sync pruned orphaned run records", zap.Int("pruned", pruned))
		}
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an
// /mcp endpoint. If ngrok is enabled (via flag or environment), it also
// provisions a public tunnel.
func runHTTPServer(b *bot, logger *zap.Logger) {
	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create WebSocket hub and forward driver events to it
	hub := websocket.NewHub(websocket.WithLogger(logger))
	go hub.Run(ctx)
	b.driver.Subscribe(func(ev driver.Event) {
		hub.BroadcastEvent(string(ev.Type), ev)
	})

	// Create API server
	apiServer := api.NewServer(b.service, hub, api.WithLogger(logger))

	// Setup HTTP server address
	addr := fmt.Sprintf("%s:%d", *host, *port)

	// Create MCP server for the /mcp endpoint
	mcpServer := mcp.NewServer(b.service, mcp.WithLogger(logger))

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	// Always add MCP endpoint for HTTP server
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	// Warm the native engine so status reports ready before the first run
	go func() {
		if err := b.engines.Initialize(ctx); err != nil {
			logger.Warn("engine initialization interrupted", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", zap.String("addr", addr))
		logger.Info("endpoints",
			zap.String("rest", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		// Check environment variable if flag not set
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	// Start ngrok tunnel if enabled
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Get auth token from flag or environment (support both naming conventions)
			authToken := *ngrokAuth
			if authToken == "" {
				authToken = os.Getenv("NGROK_AUTHTOKEN")
				if authToken == "" {
					authToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
				}
			}

			if authToken == "" {
				logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
				return
			}

			logger.Info("starting ngrok tunnel")

			// Get domain from flag or environment
			domain := *ngrokDomain
			if domain == "" {
				domain = os.Getenv("NGROK_DOMAIN")
			}

			// Configure ngrok endpoint
			var tunnel ngrokConfig.Tunnel
			if domain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
				logger.Info("using custom ngrok domain", zap.String("domain", domain))
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			// Start ngrok tunnel
			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				logger.Error("failed to start ngrok tunnel", zap.Error(err))
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					logger.Error("failed to close ngrok tunnel", zap.Error(err))
				}
			}()

			ngrokURL := tun.URL()
			logger.Info("ngrok tunnel established",
				zap.String("url", ngrokURL),
				zap.String("rest", ngrokURL+"/api"),
				zap.String("websocket", ngrokURL+"/ws"),
				zap.String("mcp", ngrokURL+"/mcp"))

			// Serve HTTP through ngrok tunnel
			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				logger.Error("ngrok server error", zap.Error(err))
			}
			logger.Info("ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop the loop and drop subscribers before exiting
	b.driver.Destroy()

	// Wait for all goroutines to finish
	wg.Wait()
	logger.Info("server stopped")
}

// runPlay runs one headless game against the simulator. It subscribes to the
// driver's event stream for progress, starts the loop, and waits for the run
// to end on its own (game over or move budget) or on Ctrl-C.
func runPlay(b *bot, logger *zap.Logger) {
	done := make(chan struct{})
	var once sync.Once

	// Handlers run serialized in the emitting goroutine, so the counter
	// needs no lock.
	moves := 0
	b.driver.Subscribe(func(ev driver.Event) {
		switch ev.Type {
		case driver.EventMove:
			moves++
			if moves%25 == 0 && ev.Score != nil {
				fmt.Printf("move %4d  score %6d  max tile %d\n", moves, *ev.Score, b.game.MaxTile())
			}
		case driver.EventRecovery:
			if ev.Direction != nil {
				fmt.Printf("stuck: forcing a random %s\n", ev.Direction)
			}
		case driver.EventGameOver:
			fmt.Println("game over")
		case driver.EventStopped:
			once.Do(func() { close(done) })
		}
	})

	if err := b.driver.Start(); err != nil {
		logger.Fatal("failed to start run", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
	case sig := <-stop:
		logger.Info("received signal, stopping run", zap.String("signal", sig.String()))
		b.driver.Stop()
		<-done
	}

	stats := b.driver.GetStats()
	score, _ := b.game.Score()
	fmt.Println()
	fmt.Printf("Final score: %d\n", score)
	fmt.Printf("Max tile:    %d\n", b.game.MaxTile())
	fmt.Printf("Moves:       %d (ticks %d, stuck %d, recoveries %d)\n",
		stats.Moves, stats.Ticks, stats.Stuck, stats.Recoveries)
	if !stats.StartedAt.IsZero() {
		fmt.Printf("Duration:    %s\n", time.Since(stats.StartedAt).Round(time.Second))
	}

	b.driver.Destroy()
}

// runStdioMCP runs the MCP server over stdin/stdout. The MCP server wraps the
// bot service directly, so no HTTP server is involved; logs go to stderr,
// leaving stdout to the JSON-RPC transport.
func runStdioMCP(b *bot, logger *zap.Logger) {
	mcpServer := mcp.NewServer(b.service, mcp.WithLogger(logger))

	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpServer.GetMCPServer()); err != nil {
		logger.Fatal("MCP stdio server error", zap.Error(err))
	}

	b.driver.Destroy()
}
