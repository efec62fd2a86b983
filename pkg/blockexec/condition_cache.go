package blockexec

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// conditionCache is a thread-safe bounded LRU of compiled expr-lang
// programs, so re-running the same edge condition or evaluate_condition
// block across many executions doesn't recompile it each time.
type conditionCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type cacheItem struct {
	key     string
	program *vm.Program
}

func newConditionCache(capacity int) *conditionCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &conditionCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *conditionCache) get(key string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).program, true
}

func (c *conditionCache) put(key string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem).program = program
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheItem{key: key, program: program})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *conditionCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheItem).key)
}

func (c *conditionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// ConditionEvaluator compiles and runs the expr-lang boolean expressions
// used by evaluate_condition blocks and conditional edges. Expressions see
// `output` (the previous block's output map) and `vars` (the execution's
// variable scope).
type ConditionEvaluator struct {
	cache *conditionCache
}

// NewConditionEvaluator builds an evaluator with an LRU of the given size.
func NewConditionEvaluator(cacheSize int) *ConditionEvaluator {
	return &ConditionEvaluator{cache: newConditionCache(cacheSize)}
}

// Evaluate compiles (or fetches from cache) condition and runs it against
// output/vars, requiring a boolean result.
func (e *ConditionEvaluator) Evaluate(condition string, output, vars map[string]interface{}) (bool, error) {
	env := map[string]interface{}{"output": output, "vars": vars}

	program, ok := e.cache.get(condition)
	if !ok {
		compiled, err := expr.Compile(condition, expr.Env(env), expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("compile condition %q: %w", condition, err)
		}
		program = compiled
		e.cache.put(condition, program)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", condition, err)
	}

	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not evaluate to a boolean", condition)
	}
	return b, nil
}
