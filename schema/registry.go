package schema

import (
	"fmt"
	"sync"

	"github.com/c360/edistreams/errors"
)

// Registry maps transaction set codes to their root loop schemas. Lookups
// are read-mostly; registration normally happens once at startup.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*LoopSchema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*LoopSchema)}
}

// Register associates a transaction set code with a root loop schema after
// checking the schema's internal consistency.
func (r *Registry) Register(transactionCode string, root *LoopSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[transactionCode]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("schema already registered for transaction set %s", transactionCode),
			"Registry", "Register", "duplicate registration")
	}
	if err := checkStartRules(root); err != nil {
		return errors.WrapInvalid(err, "Registry", "Register", "schema consistency check")
	}
	r.schemas[transactionCode] = root
	return nil
}

// checkStartRules walks the schema tree verifying that every loop declaring
// member segments also declares a rule for its own start segment. The
// assembler attaches a loop's start segment through the member rules, so a
// start without a rule could never assemble.
func checkStartRules(ls *LoopSchema) error {
	if len(ls.Segments) > 0 {
		if _, ok := ls.SegmentRuleFor(ls.Start.Name); !ok {
			return fmt.Errorf("loop %s: start segment %s has no member rule", ls.ID, ls.Start.Name)
		}
	}
	for _, child := range ls.Loops {
		if err := checkStartRules(child.Loop); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the root schema for a transaction set code.
func (r *Registry) Get(transactionCode string) (*LoopSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	root, ok := r.schemas[transactionCode]
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrUnknownTransactionSet, transactionCode),
			"Registry", "Get", "schema lookup")
	}
	return root, nil
}

// Default returns a registry preloaded with the transaction schemas this
// module ships, currently the 837 professional health care claim.
func Default() *Registry {
	r := NewRegistry()
	// Registration of shipped schemas cannot collide.
	_ = r.Register("837", Professional837())
	return r
}
