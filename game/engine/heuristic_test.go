package engine

import (
	"context"
	"testing"

	"github.com/wricardo/autopilot2048/game/board"
)

func TestHeuristicQuadrantBias(t *testing.T) {
	tests := []struct {
		name     string
		cells    [][]int
		expected []board.Direction
	}{
		{
			"top left",
			[][]int{
				{64, 2, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			[]board.Direction{board.Up, board.Left, board.Right, board.Down},
		},
		{
			"top right",
			[][]int{
				{0, 0, 2, 64},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			[]board.Direction{board.Up, board.Right, board.Left, board.Down},
		},
		{
			"bottom left",
			[][]int{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{64, 2, 0, 0},
			},
			[]board.Direction{board.Down, board.Left, board.Right, board.Up},
		},
		{
			"bottom right",
			[][]int{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 2, 2, 64},
			},
			[]board.Direction{board.Down, board.Right, board.Left, board.Up},
		},
	}

	for _, test := range tests {
		exps := gridExps(t, test.cells)
		got := quadrantOrder(exps)
		for i := range test.expected {
			if got[i] != test.expected[i] {
				t.Errorf("%s: position %d: expected %v, got %v", test.name, i, test.expected[i], got[i])
			}
		}
	}
}

func TestHeuristicFiltersNoOpMoves(t *testing.T) {
	// Max tile top-left, row fully packed left: Left must not be suggested
	// because it changes nothing.
	exps := gridExps(t, [][]int{
		{64, 4, 2, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	planner := NewHeuristicEngine()
	ranked, err := planner.RankMoves(context.Background(), exps)
	if err != nil {
		t.Fatalf("RankMoves failed: %v", err)
	}

	for _, d := range ranked {
		if d == board.Left {
			t.Errorf("Left is a no-op here but was suggested: %v", ranked)
		}
		if d == board.Up {
			t.Errorf("Up is a no-op here but was suggested: %v", ranked)
		}
	}
	if len(ranked) == 0 {
		t.Fatal("Expected at least one legal move")
	}
	if ranked[0] != board.Right {
		t.Errorf("Expected right ranked first, got %v", ranked)
	}
}

func TestHeuristicDeadBoardReturnsFullOrder(t *testing.T) {
	// No direction changes a checkerboard; the engine returns its complete
	// preference order so the caller still has all four candidates.
	exps := gridExps(t, [][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	})

	planner := NewHeuristicEngine()
	ranked, err := planner.RankMoves(context.Background(), exps)
	if err != nil {
		t.Fatalf("RankMoves failed: %v", err)
	}
	if len(ranked) != 4 {
		t.Errorf("Expected all 4 directions, got %v", ranked)
	}
}

func TestHeuristicConfigure(t *testing.T) {
	planner := NewHeuristicEngine()

	if planner.Name() != "builtin" {
		t.Errorf("Expected name builtin, got %s", planner.Name())
	}

	err := planner.Configure(Strategy{Kind: "expectimax", Heuristic: "corner", Depth: 99, Probability: 5})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	s := planner.Strategy()
	if s.Depth != MaxDepth {
		t.Errorf("Expected depth clamped to %d, got %d", MaxDepth, s.Depth)
	}
	if s.Probability != MaxProbability {
		t.Errorf("Expected probability clamped to %v, got %v", MaxProbability, s.Probability)
	}
}
