package jsengine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/engine"
)

func loadMinimal(t *testing.T) *Engine {
	t.Helper()
	eng, err := Load(context.Background(), filepath.Join("testdata", "minimal.js"))
	require.NoError(t, err)
	return eng
}

func TestLoadMinimalArtifact(t *testing.T) {
	eng := loadMinimal(t)

	assert.Equal(t, "native", eng.Name())
	assert.Contains(t, eng.Source(), "minimal.js")
	assert.Equal(t, engine.DefaultStrategy(), eng.Strategy())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join("testdata", "absent.js"))
	require.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadNoFactory(t *testing.T) {
	_, err := LoadSource(context.Background(), "nofactory.js", `var somethingElse = 1;`)
	require.ErrorIs(t, err, ErrLoadFailed)
	assert.Contains(t, err.Error(), FactoryName)
}

func TestLoadArtifactThrows(t *testing.T) {
	_, err := LoadSource(context.Background(), "throws.js", `throw new Error("corrupt artifact");`)
	require.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadCompileError(t *testing.T) {
	_, err := LoadSource(context.Background(), "syntax.js", `function createEngine( {`)
	require.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadIncompleteContract(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			"empty handle",
			`function createEngine() { return {}; }`,
		},
		{
			"missing strategy",
			`function createEngine() {
				return {
					encode: function(e) { return e; },
					decode: function(b) { return b; },
					canMove: function(b, d) { return false; },
					applyMove: function(b, d) { return b; }
				};
			}`,
		},
		{
			"factory returns nothing",
			`function createEngine() {}`,
		},
	}

	for _, test := range tests {
		_, err := LoadSource(context.Background(), test.name, test.source)
		assert.ErrorIs(t, err, ErrLoadFailed, test.name)
	}
}

func TestLoadTimeoutInterruptsEvaluation(t *testing.T) {
	start := time.Now()
	_, err := LoadSource(context.Background(), "spin.js", `for (;;) {}`,
		WithLoadTimeout(100*time.Millisecond))
	require.ErrorIs(t, err, ErrLoadFailed)
	assert.Less(t, time.Since(start), 5*time.Second, "interrupt did not fire")
}

func TestRankMovesPermutation(t *testing.T) {
	eng := loadMinimal(t)

	// Single tile in the top-left corner: only right and down are legal,
	// and the artifact's pickMove returns the first legal ordinal (right).
	exps := board.Exponents{1}
	ranked, err := eng.RankMoves(context.Background(), exps)
	require.NoError(t, err)

	require.Len(t, ranked, 4)
	assert.Equal(t, board.Right, ranked[0])
	seen := map[board.Direction]bool{}
	for _, d := range ranked {
		assert.True(t, d.Valid(), "invalid direction %v", d)
		assert.False(t, seen[d], "duplicate direction %v", d)
		seen[d] = true
	}
}

func TestRankMovesDeadBoard(t *testing.T) {
	eng := loadMinimal(t)

	// Checkerboard with no legal moves: pickMove returns -1 and the
	// ranking falls back to the evaluation order.
	exps := board.Exponents{
		1, 2, 1, 2,
		2, 1, 2, 1,
		1, 2, 1, 2,
		2, 1, 2, 1,
	}
	ranked, err := eng.RankMoves(context.Background(), exps)
	require.NoError(t, err)
	assert.Len(t, ranked, 4)
}

func TestRankMovesRuntimeFailure(t *testing.T) {
	source := `function createEngine() {
		return {
			encode: function(e) { return e; },
			decode: function(b) { return b; },
			canMove: function(b, d) { return true; },
			applyMove: function(b, d) { return b; },
			strategy: {
				configure: function(k, h, d, p) {},
				pickMove: function(b) { throw new Error("search blew up"); },
				evaluateBoard: function(b) { return 0; }
			}
		};
	}`
	eng, err := LoadSource(context.Background(), "broken.js", source)
	require.NoError(t, err)

	_, err = eng.RankMoves(context.Background(), board.Exponents{1})
	require.ErrorIs(t, err, ErrRuntime)
	assert.Contains(t, err.Error(), "pickMove")
}

func TestConfigureReachesModule(t *testing.T) {
	// The probe artifact reports the configured depth back through
	// evaluateBoard, so the test can observe what actually arrived.
	source := `function createEngine() {
		var depth = 0;
		return {
			encode: function(e) { return e; },
			decode: function(b) { return b; },
			canMove: function(b, d) { return false; },
			applyMove: function(b, d) { return b; },
			strategy: {
				configure: function(k, h, d, p) { depth = d; },
				pickMove: function(b) { return -1; },
				evaluateBoard: function(b) { return depth; }
			}
		};
	}`
	eng, err := LoadSource(context.Background(), "probe.js", source)
	require.NoError(t, err)

	// Out-of-range values clamp before they reach the module.
	require.NoError(t, eng.Configure(engine.Strategy{Depth: 99, Probability: 0.01}))

	info, err := eng.BoardInfo(context.Background(), board.Exponents{})
	require.NoError(t, err)
	assert.Equal(t, float64(engine.MaxDepth), info.Score)
}

func TestConfigureRuntimeFailure(t *testing.T) {
	source := `function createEngine() {
		var calls = 0;
		return {
			encode: function(e) { return e; },
			decode: function(b) { return b; },
			canMove: function(b, d) { return false; },
			applyMove: function(b, d) { return b; },
			strategy: {
				// First call (the loader's initial push) succeeds, later
				// ones fail.
				configure: function(k, h, d, p) {
					calls++;
					if (calls > 1) throw new Error("config rejected");
				},
				pickMove: function(b) { return -1; },
				evaluateBoard: function(b) { return 0; }
			}
		};
	}`
	eng, err := LoadSource(context.Background(), "rejecting.js", source)
	require.NoError(t, err)

	err = eng.Configure(engine.DefaultStrategy())
	require.ErrorIs(t, err, ErrRuntime)
}

func TestBoardInfo(t *testing.T) {
	eng := loadMinimal(t)

	exps := board.Exponents{11, 3} // 2048 and 8, rest empty
	info, err := eng.BoardInfo(context.Background(), exps)
	require.NoError(t, err)

	assert.Equal(t, 2048, info.MaxTile)
	assert.False(t, info.GameOver)
	assert.Equal(t, float64(14), info.Score, "minimal artifact scores empty cells")
}

func TestBoardInfoGameOver(t *testing.T) {
	eng := loadMinimal(t)

	exps := board.Exponents{
		1, 2, 1, 2,
		2, 1, 2, 1,
		1, 2, 1, 2,
		2, 1, 2, 1,
	}
	info, err := eng.BoardInfo(context.Background(), exps)
	require.NoError(t, err)
	assert.True(t, info.GameOver)
}

// loadShipped loads the expectimax artifact that the default profiles point
// at, so the contract tests below cover what actually ships.
func loadShipped(t *testing.T) *Engine {
	t.Helper()
	eng, err := Load(context.Background(), filepath.Join("..", "..", "engines", "expectimax.js"))
	require.NoError(t, err)
	return eng
}

func TestShippedArtifactLoads(t *testing.T) {
	eng := loadShipped(t)

	assert.Equal(t, "native", eng.Name())
	assert.Contains(t, eng.Source(), "expectimax.js")
	assert.Equal(t, engine.DefaultStrategy(), eng.Strategy())
}

func TestShippedArtifactForcedMove(t *testing.T) {
	eng := loadShipped(t)

	// Full top row with no adjacent equals: up, left and right change
	// nothing, so down is the only legal move and the search must find it.
	exps := board.Exponents{1, 2, 3, 4}

	for _, kind := range []string{"expectimax", "minimax"} {
		require.NoError(t, eng.Configure(engine.Strategy{
			Kind:        kind,
			Heuristic:   "corner",
			Depth:       1,
			Probability: 0.0025,
		}))

		ranked, err := eng.RankMoves(context.Background(), exps)
		require.NoError(t, err)
		require.Len(t, ranked, 4, kind)
		assert.Equal(t, board.Down, ranked[0], kind)

		seen := map[board.Direction]bool{}
		for _, d := range ranked {
			assert.False(t, seen[d], "duplicate direction %v", d)
			seen[d] = true
		}
	}
}

func TestShippedArtifactMaterialHeuristic(t *testing.T) {
	eng := loadShipped(t)

	require.NoError(t, eng.Configure(engine.Strategy{
		Kind:        "expectimax",
		Heuristic:   "score",
		Depth:       1,
		Probability: 0.0025,
	}))

	// Two 2-tiles and fourteen empty cells: 2+2 material plus 14*256 room.
	exps := board.Exponents{1, 1}
	info, err := eng.BoardInfo(context.Background(), exps)
	require.NoError(t, err)
	assert.Equal(t, float64(3588), info.Score)
}

func TestShippedArtifactUnknownHeuristicFallsBack(t *testing.T) {
	eng := loadShipped(t)

	require.NoError(t, eng.Configure(engine.Strategy{
		Kind:        "expectimax",
		Heuristic:   "corner",
		Depth:       1,
		Probability: 0.0025,
	}))
	exps := board.Exponents{1}
	want, err := eng.BoardInfo(context.Background(), exps)
	require.NoError(t, err)

	require.NoError(t, eng.Configure(engine.Strategy{
		Kind:        "expectimax",
		Heuristic:   "experimental",
		Depth:       1,
		Probability: 0.0025,
	}))
	got, err := eng.BoardInfo(context.Background(), exps)
	require.NoError(t, err)
	assert.Equal(t, want.Score, got.Score, "unknown heuristic should score like corner")
}

func TestShippedArtifactGameOver(t *testing.T) {
	eng := loadShipped(t)

	exps := board.Exponents{
		1, 2, 1, 2,
		2, 1, 2, 1,
		1, 2, 1, 2,
		2, 1, 2, 1,
	}
	info, err := eng.BoardInfo(context.Background(), exps)
	require.NoError(t, err)
	assert.True(t, info.GameOver)
	assert.Equal(t, 4, info.MaxTile)

	ranked, err := eng.RankMoves(context.Background(), exps)
	require.NoError(t, err)
	assert.Len(t, ranked, 4)
}
