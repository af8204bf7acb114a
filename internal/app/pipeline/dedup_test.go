package pipeline

import (
	"reflect"
	"testing"
)

func TestFilterSuppressesPreviouslySeen(t *testing.T) {
	current := []string{"Hello", "World"}
	previous := []string{"Hello"}

	got := Filter(current, previous, nil, true)
	if !reflect.DeepEqual(got, []string{"World"}) {
		t.Fatalf("unexpected filter output: %v", got)
	}
}

func TestFilterIdempotent(t *testing.T) {
	current := []string{"a", "b", "c"}
	previous := []string{"b"}

	first := Filter(current, previous, nil, true)
	second := Filter(current, previous, nil, true)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("filter not deterministic: %v vs %v", first, second)
	}

	// Re-filtering against a screen that already showed everything
	// yields nothing new.
	if got := Filter(current, current, nil, true); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestFilterNoiseSuppression(t *testing.T) {
	current := []string{"Send", "Press Send to reply", "Alice: hi"}
	got := Filter(current, nil, []string{"Send"}, true)
	if !reflect.DeepEqual(got, []string{"Alice: hi"}) {
		t.Fatalf("noise tokens should match as substrings: %v", got)
	}
}

func TestFilterNoiseAppliesEvenWhenDedupDisabled(t *testing.T) {
	current := []string{"Send", "Alice: hi"}
	got := Filter(current, []string{"Alice: hi"}, []string{"Send"}, false)
	if !reflect.DeepEqual(got, []string{"Alice: hi"}) {
		t.Fatalf("with dedup off previous must be ignored but noise kept: %v", got)
	}
}

func TestFilterCollapsesWithinFrameDuplicates(t *testing.T) {
	current := []string{"x", "x", "y", "x"}
	got := Filter(current, nil, nil, true)
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("duplicates should collapse in discovery order: %v", got)
	}
}

func TestFilterEmptyNoiseTokenIgnored(t *testing.T) {
	current := []string{"anything"}
	got := Filter(current, nil, []string{""}, true)
	if !reflect.DeepEqual(got, []string{"anything"}) {
		t.Fatalf("empty noise token must not match everything: %v", got)
	}
}

func TestFilterEmptyInputs(t *testing.T) {
	if got := Filter(nil, []string{"a"}, []string{"b"}, true); len(got) != 0 {
		t.Fatalf("nil current should yield empty output, got %v", got)
	}
	got := Filter([]string{"a"}, nil, nil, true)
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("nil previous should pass everything: %v", got)
	}
}
