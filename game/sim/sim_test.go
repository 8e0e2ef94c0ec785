package sim

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/manager"
)

var _ driver.BoardAdapter = (*Game)(nil)

func countTiles(cells [][]int) int {
	n := 0
	for _, row := range cells {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func TestNewStartsWithTwoTiles(t *testing.T) {
	g := New(WithSeed(1))

	cells, err := g.ReadBoard()
	require.NoError(t, err)
	assert.Equal(t, 2, countTiles(cells))

	for _, row := range cells {
		for _, v := range row {
			if v != 0 && v != 2 && v != 4 {
				t.Errorf("spawned tile must be 2 or 4, got %d", v)
			}
		}
	}

	score, ok := g.Score()
	assert.True(t, ok)
	assert.Equal(t, 0, score)
	assert.False(t, g.GameOver())
}

func TestSameSeedSameGame(t *testing.T) {
	a := New(WithSeed(99))
	b := New(WithSeed(99))

	moves := []board.Direction{board.Left, board.Down, board.Left, board.Up, board.Right}
	for _, dir := range moves {
		require.NoError(t, a.SendMove(dir))
		require.NoError(t, b.SendMove(dir))
	}

	gridA, _ := a.ReadBoard()
	gridB, _ := b.ReadBoard()
	if diff := cmp.Diff(gridA, gridB); diff != "" {
		t.Errorf("seeded games diverged (-a +b):\n%s", diff)
	}
	scoreA, _ := a.Score()
	scoreB, _ := b.Score()
	assert.Equal(t, scoreA, scoreB)
}

func TestEffectiveMoveSpawnsAndScores(t *testing.T) {
	g := New(WithSeed(3))
	g.exps = board.Exponents{}
	g.exps[0] = 1 // 2
	g.exps[1] = 1 // 2, merges into 4 on a left slide

	require.NoError(t, g.SendMove(board.Left))

	score, _ := g.Score()
	assert.Equal(t, 4, score, "merging two 2s scores 4")
	assert.Equal(t, 1, g.Moves())

	cells, _ := g.ReadBoard()
	assert.Equal(t, 2, countTiles(cells), "merge leaves one tile, spawn adds one")
	assert.Equal(t, 4, cells[0][0])
}

func TestIneffectiveMoveIsIgnored(t *testing.T) {
	g := New(WithSeed(5))
	g.exps = board.Exponents{}
	g.exps[0] = 1 // single tile in the top-left corner

	before, _ := g.ReadBoard()
	require.NoError(t, g.SendMove(board.Up))
	require.NoError(t, g.SendMove(board.Left))
	after, _ := g.ReadBoard()

	assert.Equal(t, board.Hash(before), board.Hash(after))
	assert.Equal(t, 0, g.Moves())
	score, _ := g.Score()
	assert.Equal(t, 0, score)
}

func TestGameOverWhenNoMoveChangesBoard(t *testing.T) {
	g := New(WithSeed(7))
	// Checkerboard of alternating tiles: nothing slides, nothing merges.
	g.exps = board.Exponents{
		1, 2, 1, 2,
		2, 1, 2, 1,
		1, 2, 1, 2,
		2, 1, 2, 1,
	}

	assert.True(t, g.GameOver())

	before, _ := g.ReadBoard()
	for _, dir := range board.Directions() {
		require.NoError(t, g.SendMove(dir))
	}
	after, _ := g.ReadBoard()
	assert.Equal(t, board.Hash(before), board.Hash(after))
}

func TestMoveFailureRateDropsEverything(t *testing.T) {
	g := New(WithSeed(11), WithMoveFailureRate(1.0))

	before, _ := g.ReadBoard()
	for i := 0; i < 20; i++ {
		require.NoError(t, g.SendMove(board.Left))
		require.NoError(t, g.SendMove(board.Down))
	}
	after, _ := g.ReadBoard()

	assert.Equal(t, board.Hash(before), board.Hash(after))
	assert.Equal(t, 0, g.Moves())
}

func TestResetClearsScoreAndBoard(t *testing.T) {
	g := New(WithSeed(13))
	for i := 0; i < 10; i++ {
		_ = g.SendMove(board.Left)
		_ = g.SendMove(board.Down)
	}
	require.Greater(t, g.Moves(), 0)

	g.Reset()

	cells, _ := g.ReadBoard()
	assert.Equal(t, 2, countTiles(cells))
	score, _ := g.Score()
	assert.Equal(t, 0, score)
	assert.Equal(t, 0, g.Moves())
}

func TestDriverPlaysSimulatedGame(t *testing.T) {
	g := New(WithSeed(2048))
	mgr := manager.New(manager.Config{}) // builtin engine only
	drv := driver.New(mgr, driver.Config{
		TickDelay:    time.Millisecond,
		ConfirmDelay: time.Millisecond,
	})
	defer drv.Destroy()
	require.NoError(t, drv.Attach(g))

	ctx := context.Background()
	for i := 0; i < 40 && !g.GameOver(); i++ {
		changed, err := drv.Step(ctx)
		require.NoError(t, err)
		if !changed {
			break
		}
	}

	assert.Greater(t, g.Moves(), 0, "loop must make progress on a live board")
	assert.Equal(t, g.Moves(), drv.GetStats().Moves)
	score, _ := g.Score()
	assert.GreaterOrEqual(t, score, 0)
	assert.GreaterOrEqual(t, g.MaxTile(), 4)
}
