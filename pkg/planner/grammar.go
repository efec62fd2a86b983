package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/virtualpytest/core/pkg/models"
)

var (
	navigateRe = regexp.MustCompile(`(?i)^navigate to (.+)$`)
	tapRe      = regexp.MustCompile(`(?i)^tap (\d+) (\d+)$`)
	pressRe    = regexp.MustCompile(`(?i)^press (\w+)$`)
	verifyRe   = regexp.MustCompile(`(?i)^verify (\w+) (.+)$`)
	sleepRe    = regexp.MustCompile(`(?i)^sleep (\d+)$`)
)

// ParseScript applies the total regex grammar the LLM reply is parsed
// with (spec §4.3 step 10): one recognized instruction per line, blank
// lines and anything unrecognized are dropped rather than aborting the
// whole parse.
func ParseScript(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case navigateRe.MatchString(line), tapRe.MatchString(line), pressRe.MatchString(line),
			verifyRe.MatchString(line), sleepRe.MatchString(line):
			lines = append(lines, line)
		}
	}
	return lines
}

// AssemblePlan converts parsed script lines into a Plan graph: a linear
// chain of blocks, start -> each instruction in order -> success, with a
// failure edge from every fallible block straight to a shared failure
// terminal (spec §4.3 step 11 graph assembly). When intent.HasLoop, every
// step after the last navigation step is treated as the loop body and
// wrapped in a loop block with iterations = intent.LoopCount, matching
// the "go to live then zap 2 times, for each zap check audio and video"
// seed scenario: the leading navigation stays outside the loop, the
// action+verification steps that follow repeat.
func AssemblePlan(lines []string, intent Intent) (*models.Plan, error) {
	plan := &models.Plan{ID: uuid.NewString()}

	start := &models.Block{ID: "start", Type: models.BlockStart}
	success := &models.Block{ID: "success", Type: models.BlockSuccess}
	failure := &models.Block{ID: "failure", Type: models.BlockFailure}
	plan.Blocks = append(plan.Blocks, start)

	blocks := make([]*models.Block, len(lines))
	for i, line := range lines {
		block, err := lineToBlock(fmt.Sprintf("b%d", i), line)
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}

	loopStart := -1
	if intent.HasLoop {
		loopStart = 0
		for i := len(blocks) - 1; i >= 0; i-- {
			if blocks[i].Type == models.BlockNavigation {
				loopStart = i + 1
				break
			}
		}
		if loopStart >= len(blocks) {
			loopStart = -1 // nothing left to repeat
		}
	}

	edgeSeq := 0
	nextEdgeID := func() string {
		edgeSeq++
		return fmt.Sprintf("e%d", edgeSeq)
	}

	prefixEnd := len(blocks)
	if loopStart >= 0 {
		prefixEnd = loopStart
	}

	prevID := start.ID
	for i := 0; i < prefixEnd; i++ {
		block := blocks[i]
		plan.Blocks = append(plan.Blocks, block)
		plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: prevID, To: block.ID, Handle: models.HandleSuccess})
		plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: block.ID, To: failure.ID, Handle: models.HandleFailure})
		prevID = block.ID
	}

	if loopStart < 0 {
		plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: prevID, To: success.ID, Handle: models.HandleSuccess})
	} else {
		loop := &models.Block{ID: "loop", Type: models.BlockLoop, Config: map[string]interface{}{"iterations": intent.LoopCount}}
		plan.Blocks = append(plan.Blocks, loop)
		plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: prevID, To: loop.ID, Handle: models.HandleSuccess})

		bodyPrev := loop.ID
		for i := loopStart; i < len(blocks); i++ {
			block := blocks[i]
			plan.Blocks = append(plan.Blocks, block)
			handle := models.HandleSuccess
			if i == loopStart {
				// The loop block's failure handle means "not done yet,
				// run the body again" (see blockexec.runLoop).
				handle = models.HandleFailure
			}
			plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: bodyPrev, To: block.ID, Handle: handle})
			plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: block.ID, To: failure.ID, Handle: models.HandleFailure})
			bodyPrev = block.ID
		}
		// The last body block's success edge cycles back into the loop
		// block for the next iteration attempt.
		plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: bodyPrev, To: loop.ID, Handle: models.HandleSuccess})
		// The loop block's own success handle fires once iterations are
		// exhausted, continuing the plan past the loop.
		plan.Edges = append(plan.Edges, &models.Edge{ID: nextEdgeID(), From: loop.ID, To: success.ID, Handle: models.HandleSuccess})
	}

	plan.Blocks = append(plan.Blocks, success, failure)

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func lineToBlock(id, line string) (*models.Block, error) {
	switch {
	case navigateRe.MatchString(line):
		m := navigateRe.FindStringSubmatch(line)
		return &models.Block{ID: id, Type: models.BlockNavigation, Config: map[string]interface{}{"target_label": m[1]}}, nil
	case tapRe.MatchString(line):
		m := tapRe.FindStringSubmatch(line)
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return &models.Block{ID: id, Type: models.BlockAction, Config: map[string]interface{}{
			"type": "tap", "params": map[string]interface{}{"x": x, "y": y},
		}}, nil
	case pressRe.MatchString(line):
		m := pressRe.FindStringSubmatch(line)
		return &models.Block{ID: id, Type: models.BlockAction, Config: map[string]interface{}{
			"type": "press", "params": map[string]interface{}{"key": m[1]},
		}}, nil
	case verifyRe.MatchString(line):
		m := verifyRe.FindStringSubmatch(line)
		return &models.Block{ID: id, Type: models.BlockVerification, Config: map[string]interface{}{
			"verification_type": m[1], "params": map[string]interface{}{"text": m[2]},
		}}, nil
	case sleepRe.MatchString(line):
		m := sleepRe.FindStringSubmatch(line)
		ms, _ := strconv.Atoi(m[1])
		return &models.Block{ID: id, Type: models.BlockSleep, Config: map[string]interface{}{"duration_ms": ms}}, nil
	default:
		return nil, fmt.Errorf("unrecognized plan instruction: %q", line)
	}
}
