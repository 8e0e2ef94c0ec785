// Command selfplay batch-evaluates planning strategies against the simulator.
//
// It plays N headless games by stepping the driver directly, with no tick
// delays, then prints a per-game line and an aggregate summary. Games seed
// deterministically from a base seed (game i plays seed+i), so two runs with
// different strategy settings compare on identical boards.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wricardo/autopilot2048/game/config"
	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/jsengine"
	"github.com/wricardo/autopilot2048/game/manager"
	"github.com/wricardo/autopilot2048/game/sim"
)

func main() {
	cmd := &cli.Command{
		Name:    "selfplay",
		Usage:   "play headless batches against the simulator and report strategy performance",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "games",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "number of games to play",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Sources: cli.EnvVars("CONFIG_DIR"),
				Usage:   "directory containing bot profiles",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "profile to load (empty uses the directory default)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "base seed; game i plays seed+i (0 means time-seeded)",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 5000,
				Usage: "hard move cap per game",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "override the search kind (empty keeps the profile's)",
			},
			&cli.StringFlag{
				Name:  "heuristic",
				Usage: "override the heuristic (empty keeps the profile's)",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "override the search depth (0 keeps the profile's)",
			},
			&cli.FloatFlag{
				Name:  "probability",
				Usage: "override the spawn-probability cutoff (0 keeps the profile's)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "emit the summary as JSON on stdout",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable structured engine logs",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := zap.NewNop()
	if cmd.Bool("verbose") {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		built, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = built
		defer logger.Sync()
	}

	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return fmt.Errorf("create config manager: %w", err)
	}
	profile := configManager.GetDefault()
	if name := cmd.String("profile"); name != "" {
		profile, err = configManager.Load(name)
		if err != nil {
			return fmt.Errorf("load profile %q: %w", name, err)
		}
	}

	engines := buildEngines(profile, logger)
	applyStrategy(engines, profile, cmd)

	// Load the native engine before the clock starts so artifact evaluation
	// does not distort the first game's timing.
	if err := engines.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engines: %w", err)
	}
	snap := engines.GetStatus()

	games := int(cmd.Int("games"))
	if games < 1 {
		games = 1
	}
	maxMoves := int(cmd.Int("max-moves"))
	baseSeed := cmd.Int64("seed")
	jsonOut := cmd.Bool("json")

	if !jsonOut {
		fmt.Printf("profile %s  engine %s  %s\n\n", profile.Name, snap.Mode, describeStrategy(engines.GetStrategy()))
	}

	results := make([]gameResult, 0, games)
	for i := 0; i < games; i++ {
		var gameSeed int64
		if baseSeed != 0 {
			gameSeed = baseSeed + int64(i)
		}

		res, err := playGame(ctx, engines, profile, gameSeed, maxMoves, logger)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		res.Game = i + 1
		results = append(results, res)

		if !jsonOut {
			fmt.Printf("game %3d  seed %-8d score %6d  max %5d  moves %5d  %7.1f moves/s\n",
				res.Game, res.Seed, res.Score, res.MaxTile, res.Moves, res.MovesPerSec())
		}
	}

	summary := summarize(results, string(snap.Mode), engines.GetStrategy())

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Println()
	fmt.Printf("games:      %d in %s (%.1f moves/s)\n",
		summary.Games, summary.Duration.Round(time.Millisecond), summary.MovesPerSec)
	fmt.Printf("score:      min %d  mean %.0f  max %d\n",
		summary.ScoreMin, summary.ScoreMean, summary.ScoreMax)
	fmt.Printf("moves:      mean %.0f  recoveries %d\n", summary.MovesMean, summary.Recoveries)
	fmt.Printf("max tiles:  %s\n", formatTiles(summary.Tiles, summary.Games))
	return nil
}

// buildEngines creates the engine manager for the profile. The loader closure
// defers artifact evaluation to Initialize.
func buildEngines(profile *config.Profile, logger *zap.Logger) *manager.Manager {
	cfg := manager.Config{
		Disabled:    profile.Engine.Disabled,
		LoadTimeout: profile.LoadTimeout(),
	}
	if artifact := profile.Engine.Artifact; artifact != "" {
		cfg.Loader = func(ctx context.Context) (manager.NativePlanner, error) {
			eng, err := jsengine.Load(ctx, artifact, jsengine.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return eng, nil
		}
	}
	return manager.New(cfg, manager.WithLogger(logger))
}

// applyStrategy installs the profile's strategy, then any command-line
// overrides on top of it.
func applyStrategy(engines *manager.Manager, profile *config.Profile, cmd *cli.Command) {
	st := profile.Strategy
	engines.SetStrategy(engine.StrategyUpdate{
		Kind:        &st.Kind,
		Heuristic:   &st.Heuristic,
		Depth:       &st.Depth,
		Probability: &st.Probability,
	})

	var override engine.StrategyUpdate
	if kind := cmd.String("kind"); kind != "" {
		override.Kind = &kind
	}
	if heuristic := cmd.String("heuristic"); heuristic != "" {
		override.Heuristic = &heuristic
	}
	if depth := int(cmd.Int("depth")); depth != 0 {
		override.Depth = &depth
	}
	if probability := cmd.Float("probability"); probability != 0 {
		override.Probability = &probability
	}
	if override.Kind != nil || override.Heuristic != nil || override.Depth != nil || override.Probability != nil {
		engines.SetStrategy(override)
	}
}

// playGame runs one headless game to completion by stepping the driver in a
// tight loop. The driver's stuck recovery still applies; the tick cap only
// guards against a surface that never changes.
func playGame(ctx context.Context, engines *manager.Manager, profile *config.Profile, seed int64, maxMoves int, logger *zap.Logger) (gameResult, error) {
	var simOpts []sim.Option
	if seed != 0 {
		simOpts = append(simOpts, sim.WithSeed(seed))
	}
	if profile.Sim.MoveFailureRate > 0 {
		simOpts = append(simOpts, sim.WithMoveFailureRate(profile.Sim.MoveFailureRate))
	}
	game := sim.New(simOpts...)

	// The simulator applies moves synchronously, so the profile's
	// confirmation window would only add latency here. One millisecond is
	// the smallest value the driver keeps.
	cfg := profile.DriverConfig()
	cfg.ConfirmDelay = time.Millisecond

	drv := driver.New(engines, cfg, driver.WithLogger(logger))
	defer drv.Destroy()
	if err := drv.Attach(game); err != nil {
		return gameResult{}, fmt.Errorf("attach simulator: %w", err)
	}

	tickCap := 1 << 20
	if maxMoves > 0 {
		tickCap = 4 * maxMoves
	}
	start := time.Now()
	for !game.GameOver() {
		stats := drv.GetStats()
		if maxMoves > 0 && stats.Moves >= maxMoves {
			break
		}
		if stats.Ticks >= tickCap {
			break
		}
		if _, err := drv.Step(ctx); err != nil {
			return gameResult{}, err
		}
	}
	elapsed := time.Since(start)

	stats := drv.GetStats()
	score, _ := game.Score()
	return gameResult{
		Seed:       seed,
		Score:      score,
		MaxTile:    game.MaxTile(),
		Moves:      stats.Moves,
		Ticks:      stats.Ticks,
		Recoveries: stats.Recoveries,
		Duration:   elapsed,
	}, nil
}

// gameResult is one finished game.
type gameResult struct {
	Game       int           `json:"game"`
	Seed       int64         `json:"seed"`
	Score      int           `json:"score"`
	MaxTile    int           `json:"max_tile"`
	Moves      int           `json:"moves"`
	Ticks      int           `json:"ticks"`
	Recoveries int           `json:"recoveries"`
	Duration   time.Duration `json:"duration_ns"`
}

// MovesPerSec reports effective planning throughput for one game.
func (r gameResult) MovesPerSec() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Moves) / r.Duration.Seconds()
}

// batchSummary aggregates a batch of games.
type batchSummary struct {
	Games       int             `json:"games"`
	Engine      string          `json:"engine"`
	Strategy    engine.Strategy `json:"strategy"`
	ScoreMin    int             `json:"score_min"`
	ScoreMean   float64         `json:"score_mean"`
	ScoreMax    int             `json:"score_max"`
	MovesMean   float64         `json:"moves_mean"`
	MovesPerSec float64         `json:"moves_per_sec"`
	Recoveries  int             `json:"recoveries"`
	// Tiles counts games by the highest tile they reached.
	Tiles    map[int]int   `json:"tiles"`
	Duration time.Duration `json:"duration_ns"`
	Results  []gameResult  `json:"results"`
}

// summarize folds per-game results into a batch summary.
func summarize(results []gameResult, engineMode string, strategy engine.Strategy) batchSummary {
	s := batchSummary{
		Games:    len(results),
		Engine:   engineMode,
		Strategy: strategy,
		Tiles:    make(map[int]int),
		Results:  results,
	}
	if len(results) == 0 {
		return s
	}

	s.ScoreMin = results[0].Score
	totalScore, totalMoves := 0, 0
	for _, r := range results {
		if r.Score < s.ScoreMin {
			s.ScoreMin = r.Score
		}
		if r.Score > s.ScoreMax {
			s.ScoreMax = r.Score
		}
		totalScore += r.Score
		totalMoves += r.Moves
		s.Recoveries += r.Recoveries
		s.Tiles[r.MaxTile]++
		s.Duration += r.Duration
	}
	s.ScoreMean = float64(totalScore) / float64(len(results))
	s.MovesMean = float64(totalMoves) / float64(len(results))
	if s.Duration > 0 {
		s.MovesPerSec = float64(totalMoves) / s.Duration.Seconds()
	}
	return s
}

// formatTiles renders the max-tile distribution, highest tile first.
func formatTiles(tiles map[int]int, games int) string {
	if len(tiles) == 0 || games == 0 {
		return "none"
	}
	values := make([]int, 0, len(tiles))
	for tile := range tiles {
		values = append(values, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	out := ""
	for i, tile := range values {
		if i > 0 {
			out += "  "
		}
		count := tiles[tile]
		out += fmt.Sprintf("%d x%d (%.0f%%)", tile, count, 100*float64(count)/float64(games))
	}
	return out
}

// describeStrategy renders a strategy on one line.
func describeStrategy(s engine.Strategy) string {
	return fmt.Sprintf("%s/%s depth=%d probability=%.4f", s.Kind, s.Heuristic, s.Depth, s.Probability)
}
