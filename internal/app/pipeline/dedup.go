package pipeline

import "strings"

// Filter returns the items of current that are genuinely new. With dedup
// enabled, items textually identical to an item of previous are suppressed
// (exact match, no fuzzing); with dedup disabled, previous is ignored. Any
// candidate containing a noise token as a case-sensitive substring is removed
// regardless of novelty, which keeps recurring interface chrome out of the
// stream. Output preserves current's discovery order with duplicates
// collapsed. Pure and deterministic.
func Filter(current, previous, noise []string, dedupEnabled bool) []string {
	var prev map[string]struct{}
	if dedupEnabled {
		prev = make(map[string]struct{}, len(previous))
		for _, t := range previous {
			prev[t] = struct{}{}
		}
	}

	out := make([]string, 0, len(current))
	seen := make(map[string]struct{}, len(current))
	for _, t := range current {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if dedupEnabled {
			if _, old := prev[t]; old {
				continue
			}
		}
		if containsNoise(t, noise) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsNoise(t string, noise []string) bool {
	for _, token := range noise {
		if token != "" && strings.Contains(t, token) {
			return true
		}
	}
	return false
}
