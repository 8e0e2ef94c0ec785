package board

import (
	"encoding/json"
	"testing"
)

func TestDirectionOrdinals(t *testing.T) {
	tests := []struct {
		direction Direction
		ordinal   int
		name      string
	}{
		{Up, 0, "up"},
		{Right, 1, "right"},
		{Down, 2, "down"},
		{Left, 3, "left"},
	}

	for _, test := range tests {
		if int(test.direction) != test.ordinal {
			t.Errorf("%s: expected ordinal %d, got %d", test.name, test.ordinal, int(test.direction))
		}
		if test.direction.String() != test.name {
			t.Errorf("Expected name %s, got %s", test.name, test.direction.String())
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"up", Up, false},
		{"LEFT", Left, false},
		{" down ", Down, false},
		{"1", Right, false},
		{"north", 0, true},
		{"", 0, true},
		{"4", 0, true},
	}

	for _, test := range tests {
		got, err := ParseDirection(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q): expected error, got %v", test.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirection(%q) failed: %v", test.input, err)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseDirection(%q): expected %v, got %v", test.input, test.expected, got)
		}
	}
}

func TestUniqueDirectionsAlwaysComplete(t *testing.T) {
	tests := []struct {
		name  string
		input []Direction
	}{
		{"nil", nil},
		{"empty", []Direction{}},
		{"single", []Direction{Left}},
		{"duplicates", []Direction{Left, Left, Left}},
		{"full permutation", []Direction{Down, Up, Left, Right}},
		{"out of range", []Direction{Direction(-1), Direction(4), Direction(99)}},
		{"mixed garbage", []Direction{Right, Direction(7), Right, Up, Direction(-2), Up}},
	}

	for _, test := range tests {
		got := UniqueDirections(test.input)
		if len(got) != 4 {
			t.Errorf("%s: expected 4 directions, got %d (%v)", test.name, len(got), got)
			continue
		}
		var seen [4]bool
		for _, d := range got {
			if !d.Valid() {
				t.Errorf("%s: invalid direction %d in output", test.name, int(d))
				continue
			}
			if seen[d] {
				t.Errorf("%s: duplicate direction %v in output", test.name, d)
			}
			seen[d] = true
		}
	}
}

func TestUniqueDirectionsPreservesOrder(t *testing.T) {
	got := UniqueDirections([]Direction{Down, Down, Left})

	if got[0] != Down || got[1] != Left {
		t.Errorf("First-seen order not preserved: %v", got)
	}
	// Missing directions append in canonical order.
	if got[2] != Up || got[3] != Right {
		t.Errorf("Expected missing directions {up, right} appended, got %v", got)
	}
}

func TestDefaultOrder(t *testing.T) {
	expected := []Direction{Left, Down, Right, Up}
	got := DefaultOrder()

	if len(got) != len(expected) {
		t.Fatalf("Expected %d directions, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Position %d: expected %v, got %v", i, expected[i], got[i])
		}
	}
}

func TestDirectionJSON(t *testing.T) {
	data, err := json.Marshal(Left)
	if err != nil {
		t.Fatalf("Failed to marshal direction: %v", err)
	}
	if string(data) != `"left"` {
		t.Errorf(`Expected "left", got %s`, data)
	}

	var byName Direction
	if err := json.Unmarshal([]byte(`"up"`), &byName); err != nil {
		t.Fatalf("Failed to unmarshal by name: %v", err)
	}
	if byName != Up {
		t.Errorf("Expected Up, got %v", byName)
	}

	var byOrdinal Direction
	if err := json.Unmarshal([]byte(`2`), &byOrdinal); err != nil {
		t.Fatalf("Failed to unmarshal by ordinal: %v", err)
	}
	if byOrdinal != Down {
		t.Errorf("Expected Down, got %v", byOrdinal)
	}

	var invalid Direction
	if err := json.Unmarshal([]byte(`"sideways"`), &invalid); err == nil {
		t.Error("Expected error for unknown direction name")
	}
}
