package planner

import (
	"regexp"
	"strconv"
)

// Intent is the structured classification Graph Assembly consults to
// decide whether to wrap part of the script in a loop block (spec §4.3
// step 7). It is derived from the raw prompt by regex/keyword rules only
// — no LLM call.
type Intent struct {
	HasLoop   bool
	LoopCount int
}

var loopCountRe = regexp.MustCompile(`(?i)\b(\d+)\s*times\b`)

// ExtractIntent looks for a repetition count ("... 2 times ...") in the
// raw instruction. Everything after the last navigation step is treated
// as the candidate loop body by AssemblePlan; ExtractIntent itself only
// decides whether a loop exists and how many times it runs.
func ExtractIntent(instruction string) Intent {
	m := loopCountRe.FindStringSubmatch(instruction)
	if m == nil {
		return Intent{}
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return Intent{}
	}
	return Intent{HasLoop: true, LoopCount: count}
}
