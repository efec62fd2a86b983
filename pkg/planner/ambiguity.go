package planner

// Ambiguity is one phrase that fuzzy-matched more than one navigation
// target, forcing the caller to pick one and resubmit with a resolution
// (spec §4.3 step 6 / §7 needs_disambiguation payload).
type Ambiguity struct {
	Original    string   `json:"original"`
	Suggestions []string `json:"suggestions"`
}

const maxSuggestions = 5

// newAmbiguity caps the suggestion list at maxSuggestions, per spec §7
// ("suggestions[≤5]").
func newAmbiguity(original string, candidates []string) Ambiguity {
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return Ambiguity{Original: original, Suggestions: candidates}
}
