// Package planner implements the AI Plan Builder (spec §4.3): turns a
// free-text instruction into an executable Plan, short-circuiting through
// a plan cache and a learned-mapping table before ever calling the LLM.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/adapters"
	"github.com/virtualpytest/core/pkg/models"
	"github.com/virtualpytest/core/pkg/navcache"
)

// Store is the Plan Builder's narrow persistence surface, built on top of
// adapters.Persistence (spec §4.6's 4-op contract).
type Store interface {
	GetPlanCacheEntry(ctx context.Context, key string) (*models.PlanCacheEntry, error)
	PutPlanCacheEntry(ctx context.Context, entry *models.PlanCacheEntry) error
	GetLearnedMapping(ctx context.Context, teamID, interfaceID, phrase string) (*models.LearnedMapping, error)
	PutLearnedMapping(ctx context.Context, m *models.LearnedMapping) error
}

// Config bounds the context the builder feeds to the LLM (spec §9 Open
// Questions).
type Config struct {
	MaxNodes         int
	MaxActions       int
	MaxVerifications int
	FuzzyThreshold   float64
}

// Context is the candidate universe the builder ranks and filters before
// calling the LLM: every node label, action name, and verification name
// available for the team+interface, plus the device model the fingerprint
// folds into its context signature (spec §4.3 step 1 / step 2).
type Context struct {
	DeviceModel       string
	NodeLabels        []string
	ActionNames       []string
	VerificationNames []string
}

// Builder runs the AI Plan Builder pipeline.
type Builder struct {
	store    Store
	navCache *navcache.Cache
	llm      adapters.LLMClient
	cfg      Config
}

// NewBuilder constructs a Builder.
func NewBuilder(store Store, nav *navcache.Cache, llm adapters.LLMClient, cfg Config) *Builder {
	return &Builder{store: store, navCache: nav, llm: llm, cfg: cfg}
}

// Build runs the full 14-stage pipeline described in spec §4.3 and
// returns an executable Plan.
func (b *Builder) Build(ctx context.Context, teamID, interfaceID, instruction string, fetchContext func(ctx context.Context) (Context, error)) (*models.Plan, error) {
	// Step 1: load context before anything else — the fingerprint folds
	// the context signature in, so it can't be computed without it.
	planCtx, err := fetchContext(ctx)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "failed to load plan context", err)
	}

	// Step 2: fingerprint + cache lookup.
	fp := Fingerprint(teamID, interfaceID, planCtx.DeviceModel, instruction, planCtx.NodeLabels)
	if cached, err := b.store.GetPlanCacheEntry(ctx, fp); err == nil && cached != nil {
		cached.LastUsedAt = time.Now()
		_ = b.store.PutPlanCacheEntry(ctx, cached)
		return cached.Plan, nil
	}

	// Step 3: phrase extraction / stopword filter.
	normalized := Normalize(instruction)
	phrases := Tokenize(normalized)
	if len(phrases) == 0 {
		return nil, apierr.New(apierr.KindInvalidInput, "instruction contains no actionable content")
	}

	// Step 5: learned-mapping short-circuit for a previously disambiguated
	// exact phrase.
	joined := normalized
	if mapping, err := b.store.GetLearnedMapping(ctx, teamID, interfaceID, joined); err == nil && mapping != nil {
		plan, err := b.assembleSingleTargetPlan(mapping.Target)
		if err == nil {
			plan, err = b.finalizePlan(ctx, teamID, interfaceID, plan, planCtx.NodeLabels)
			if err == nil {
				b.storeCache(ctx, fp, teamID, plan)
				return plan, nil
			}
		}
	}

	// Step 6: fuzzy match the instruction phrases against node labels,
	// flagging an ambiguous tie for disambiguation instead of guessing.
	target, needsDisambiguation, candidates := b.resolveTarget(joined, planCtx.NodeLabels)
	if needsDisambiguation {
		return nil, apierr.New(apierr.KindNeedsDisambiguation, "instruction matches multiple navigation targets").
			WithDetails(map[string]interface{}{"ambiguities": []Ambiguity{newAmbiguity(joined, candidates)}})
	}

	// Step 7: intent extraction — regex/keyword only, no LLM call.
	intent := ExtractIntent(instruction)

	// Step 8: TF-IDF context filtering bounds what we hand to the LLM.
	filteredNodes := rankedContext(phrases, planCtx.NodeLabels, b.cfg.MaxNodes)
	filteredActions := rankedContext(phrases, planCtx.ActionNames, b.cfg.MaxActions)
	filteredVerifications := rankedContext(phrases, planCtx.VerificationNames, b.cfg.MaxVerifications)

	// Step 9-10: call the LLM and parse its reply, unless the fuzzy match
	// already resolved a concrete navigation target.
	var scriptLines []string
	if target != "" {
		scriptLines = []string{fmt.Sprintf("navigate to %s", target)}
	} else {
		resp, err := b.llm.Complete(ctx, adapters.LLMRequest{
			SystemPrompt: buildSystemPrompt(filteredNodes, filteredActions, filteredVerifications),
			UserPrompt:   instruction,
		})
		if err != nil {
			return nil, apierr.Wrap(apierr.KindInternal, "plan generation LLM call failed", err)
		}
		scriptLines = ParseScript(resp.Text)
		if len(scriptLines) == 0 {
			return nil, apierr.New(apierr.KindInfeasible, "could not derive an executable plan from the instruction")
		}
	}

	// Step 11: graph assembly, wrapping a loop block around the scoped
	// range when the intent calls for one.
	plan, err := AssemblePlan(scriptLines, intent)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInfeasible, "assembled plan failed validation", err)
	}

	// Steps 12-13: node validation and transition pre-fetch.
	plan, err = b.finalizePlan(ctx, teamID, interfaceID, plan, planCtx.NodeLabels)
	if err != nil {
		return nil, err
	}

	// Step 14: cache store.
	b.storeCache(ctx, fp, teamID, plan)
	return plan, nil
}

// finalizePlan runs the AI Plan Builder's post-processing pass (spec §4.3
// steps 12-13) over a freshly assembled plan: every navigation block's
// target is checked against the current unified graph, falling back to
// the same fuzzy logic stage 6 uses, then the Pathfinder pre-expands the
// resolved route into the block's transitions so the executor never has
// to consult the tree at runtime.
func (b *Builder) finalizePlan(ctx context.Context, teamID, interfaceID string, plan *models.Plan, nodeLabels []string) (*models.Plan, error) {
	graph, err := b.navCache.Get(ctx, teamID, interfaceID)
	if err != nil {
		return nil, err
	}

	from := graph.RootNodeID
	for _, block := range plan.Blocks {
		if block.Type != models.BlockNavigation {
			continue
		}

		label, _ := block.Config["target_label"].(string)
		node := graph.NodeByLabel(label)
		if node == nil {
			resolved, needsDisambiguation, candidates := b.resolveTarget(label, nodeLabels)
			if needsDisambiguation {
				return nil, apierr.New(apierr.KindNeedsDisambiguation, "assembled navigation target matches multiple nodes").
					WithDetails(map[string]interface{}{"ambiguities": []Ambiguity{newAmbiguity(label, candidates)}})
			}
			if resolved == "" {
				return nil, apierr.New(apierr.KindInfeasible, fmt.Sprintf("navigation target %q does not exist in the navigation tree", label))
			}
			label = resolved
			node = graph.NodeByLabel(label)
			if node == nil {
				return nil, apierr.New(apierr.KindInfeasible, fmt.Sprintf("navigation target %q does not exist in the navigation tree", label))
			}
		}

		path, err := navcache.FindPath(graph, from, node.ID)
		if err != nil {
			return nil, err
		}

		transitions := make(map[string]interface{}, len(path.Edges))
		for _, edge := range path.Edges {
			transitions[edge.ID] = edge.Actions
		}

		block.Config["target_label"] = label
		block.Config["target_node"] = node.ID
		block.Config["transitions"] = transitions

		from = node.ID
	}

	return plan, nil
}

func (b *Builder) storeCache(ctx context.Context, fp, teamID string, plan *models.Plan) {
	now := time.Now()
	_ = b.store.PutPlanCacheEntry(ctx, &models.PlanCacheEntry{
		Key: fp, TeamID: teamID, Plan: plan, CreatedAt: now, LastUsedAt: now,
	})
}

func (b *Builder) resolveTarget(phrase string, labels []string) (target string, needsDisambiguation bool, candidates []string) {
	if len(labels) == 0 {
		return "", false, nil
	}
	top := TopMatches(phrase, labels, 0.05)
	if len(top) > 1 {
		return "", true, top
	}
	best, score := BestMatch(phrase, labels)
	threshold := b.cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.82
	}
	if score >= threshold {
		return best, false, nil
	}
	return "", false, nil
}

func rankedContext(query []string, candidates []string, topN int) []string {
	docs := make([]Document, len(candidates))
	for i, c := range candidates {
		docs[i] = Document{ID: c, Terms: Tokenize(Normalize(c))}
	}
	ranked := tfidfRank(query, docs)
	return TopN(ranked, topN)
}

func buildSystemPrompt(nodes, actions, verifications []string) string {
	return fmt.Sprintf(
		"You control a navigation graph. Available screens: %v. Available actions: %v. Available verifications: %v. Respond with one instruction per line.",
		nodes, actions, verifications,
	)
}

// assembleSingleTargetPlan builds a plan consisting of a single navigation
// block to a learned target.
func (b *Builder) assembleSingleTargetPlan(target string) (*models.Plan, error) {
	return AssemblePlan([]string{fmt.Sprintf("navigate to %s", target)}, Intent{})
}
