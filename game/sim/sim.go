package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/autopilot2048/game/board"
	"github.com/wricardo/autopilot2048/game/engine"
)

// fourChance is the probability a spawned tile is a 4 instead of a 2.
const fourChance = 0.1

// Game is a self-contained 2048 board. It is safe for concurrent use and
// satisfies the driver's BoardAdapter contract.
type Game struct {
	mu          sync.Mutex
	rng         *rand.Rand
	exps        board.Exponents
	score       int
	moves       int
	failureRate float64
}

// Option configures a Game.
type Option func(*Game)

// WithSeed makes the game deterministic. Games with the same seed and move
// sequence produce identical boards.
func WithSeed(seed int64) Option {
	return func(g *Game) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithMoveFailureRate silently drops that fraction of sent moves, turning
// the game into a flaky surface for stuck-handling tests. Clamped to [0,1].
func WithMoveFailureRate(rate float64) Option {
	return func(g *Game) {
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		g.failureRate = rate
	}
}

// New creates a game with two spawned tiles.
func New(opts ...Option) *Game {
	g := &Game{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.spawn()
	g.spawn()
	return g
}

// Reset clears the board back to a fresh two-tile start. The randomness
// stream continues; it is not re-seeded.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exps = board.Exponents{}
	g.score = 0
	g.moves = 0
	g.spawn()
	g.spawn()
}

// CanAttach reports the surface is present. The simulator always is.
func (g *Game) CanAttach() bool { return true }

// ReadBoard returns the grid as raw tile values, row-major.
func (g *Game) ReadBoard() ([][]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exps.Grid(), nil
}

// SendMove applies one slide. Moves that change nothing are silently
// ignored, exactly like a real board surface; effective moves score their
// merges and spawn one new tile.
func (g *Game) SendMove(dir board.Direction) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failureRate > 0 && g.rng.Float64() < g.failureRate {
		return nil
	}
	next, gained, moved := engine.ApplyScored(g.exps, dir)
	if !moved {
		return nil
	}
	g.exps = next
	g.score += gained
	g.moves++
	g.spawn()
	return nil
}

// Score returns the accumulated merge score.
func (g *Game) Score() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score, true
}

// GameOver reports whether no direction can change the board.
func (g *Game) GameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !engine.AnyLegal(g.exps)
}

// MaxTile returns the largest tile value on the board.
func (g *Game) MaxTile() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return board.Tile(g.exps.Max())
}

// Moves returns how many effective moves the game has accepted.
func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// Exponents returns a snapshot of the board in exponent encoding.
func (g *Game) Exponents() board.Exponents {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exps
}

// spawn places a 2 or 4 in a random empty cell. Callers hold g.mu.
func (g *Game) spawn() {
	empty := make([]int, 0, board.CellCount)
	for i, k := range g.exps {
		if k == 0 {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return
	}
	cell := empty[g.rng.Intn(len(empty))]
	value := 1
	if g.rng.Float64() < fourChance {
		value = 2
	}
	g.exps[cell] = value
}
