package interp

import "github.com/corplang/mp/internal/corperr"

// MemoryBudget is a lightweight allocation counter used only to simulate
// ResourceError/MemoryError per SPEC_FULL.md §4 ("memory manager" ported
// from the Python original's core/memory.py). It is optional and zero-cost
// when unset: a zero MaxElements means unlimited.
type MemoryBudget struct {
	MaxElements int64
	used        int64
}

// Charge records the creation of n list/map elements, returning a
// MemoryError exception if doing so would exceed the budget.
func (b *MemoryBudget) Charge(ctx *ExecContext, n int64) *ThrownValue {
	if b == nil || b.MaxElements <= 0 {
		return nil
	}
	if b.used+n > b.MaxElements {
		return RaiseError(ctx, corperr.MemoryError, "allocation would exceed the configured memory budget")
	}
	b.used += n
	return nil
}

func (b *MemoryBudget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}
