package engine

import "testing"

func TestDefaultStrategy(t *testing.T) {
	s := DefaultStrategy()

	if s.Kind != DefaultKind {
		t.Errorf("Expected kind %s, got %s", DefaultKind, s.Kind)
	}
	if s.Heuristic != DefaultHeuristic {
		t.Errorf("Expected heuristic %s, got %s", DefaultHeuristic, s.Heuristic)
	}
	if s.Depth != DefaultDepth {
		t.Errorf("Expected depth %d, got %d", DefaultDepth, s.Depth)
	}
	if s.Probability != DefaultProbability {
		t.Errorf("Expected probability %v, got %v", DefaultProbability, s.Probability)
	}

	// Defaults must already satisfy their own clamps.
	if s != s.Clamp() {
		t.Errorf("Default strategy changed under Clamp: %+v", s.Clamp())
	}
}

func TestStrategyClamp(t *testing.T) {
	tests := []struct {
		name        string
		input       Strategy
		depth       int
		probability float64
	}{
		{"depth too low", Strategy{Depth: 0, Probability: 0.01}, MinDepth, 0.01},
		{"depth too high", Strategy{Depth: 20, Probability: 0.01}, MaxDepth, 0.01},
		{"probability too low", Strategy{Depth: 4, Probability: 0}, 4, MinProbability},
		{"probability too high", Strategy{Depth: 4, Probability: 0.9}, 4, MaxProbability},
		{"negative probability", Strategy{Depth: 4, Probability: -1}, 4, MinProbability},
		{"in range", Strategy{Depth: 5, Probability: 0.05}, 5, 0.05},
	}

	for _, test := range tests {
		got := test.input.Clamp()
		if got.Depth != test.depth {
			t.Errorf("%s: expected depth %d, got %d", test.name, test.depth, got.Depth)
		}
		if got.Probability != test.probability {
			t.Errorf("%s: expected probability %v, got %v", test.name, test.probability, got.Probability)
		}
		if got.Kind == "" || got.Heuristic == "" {
			t.Errorf("%s: empty names must fill from defaults, got %+v", test.name, got)
		}
	}
}

func TestStrategyMerge(t *testing.T) {
	base := DefaultStrategy()

	depth := 6
	merged := base.Merge(StrategyUpdate{Depth: &depth})
	if merged.Depth != 6 {
		t.Errorf("Expected depth 6, got %d", merged.Depth)
	}
	if merged.Kind != base.Kind || merged.Heuristic != base.Heuristic || merged.Probability != base.Probability {
		t.Errorf("Merge touched fields it should not: %+v", merged)
	}

	// Updates clamp on the way in.
	badDepth := 50
	badProb := 3.0
	kind := "montecarlo"
	merged = base.Merge(StrategyUpdate{Kind: &kind, Depth: &badDepth, Probability: &badProb})
	if merged.Kind != "montecarlo" {
		t.Errorf("Expected kind montecarlo, got %s", merged.Kind)
	}
	if merged.Depth != MaxDepth {
		t.Errorf("Expected depth clamped to %d, got %d", MaxDepth, merged.Depth)
	}
	if merged.Probability != MaxProbability {
		t.Errorf("Expected probability clamped to %v, got %v", MaxProbability, merged.Probability)
	}

	// Empty update changes nothing.
	if base.Merge(StrategyUpdate{}) != base {
		t.Error("Empty update must be a no-op")
	}
}
