// Package heapalloc owns every heap Object created during a SnailVM run
// and reclaims the ones whose link count has fallen to zero (§4.3).
package heapalloc

import "shellvm/internal/objmodel"

// Allocator owns a dynamic array of heap Objects. It is not safe for
// concurrent use; the VM is single-threaded (§5).
type Allocator struct {
	owned []*objmodel.Object

	// onPressure, when set, is invoked immediately before a collection
	// pass runs. §9 recommends shaping the reclaimer behind a capability
	// so a future tracing collector could observe/replace this hook
	// without touching callers.
	onPressure func()

	allocCount int
	collectCount int
}

// New returns an empty Allocator.
func New() *Allocator {
	return &Allocator{owned: make([]*objmodel.Object, 0, 64)}
}

// OnPressure registers a callback invoked whenever a collection pass is
// about to run. Core semantics never use it, and nothing in this
// repository registers one: the debugger and dashboard read Stats()
// instead.
func (a *Allocator) OnPressure(fn func()) {
	a.onPressure = fn
}

// Create allocates a new scalar Object (VOID/I32/USIZE/STRING) with
// LinkCount 0, running a collection pass first if the owned set is at
// capacity (§4.3's pseudo-capacity trigger).
func (a *Allocator) Create(tag objmodel.Tag, data []byte) *objmodel.Object {
	a.maybeCollect()
	obj := objmodel.NewScalar(tag, data)
	a.owned = append(a.owned, obj)
	a.allocCount++
	return obj
}

// CreateArray allocates a new ARRAY Object of size null link slots.
func (a *Allocator) CreateArray(size int) *objmodel.Object {
	a.maybeCollect()
	obj := objmodel.NewArray(size)
	a.owned = append(a.owned, obj)
	a.allocCount++
	return obj
}

// Size returns the current count of live owned Objects.
func (a *Allocator) Size() int {
	return len(a.owned)
}

// Stats exposes allocator counters for the debugger/dashboard.
type Stats struct {
	Live     int // currently owned objects
	Allocs   int // total Create/CreateArray calls over the Allocator's lifetime
	Collects int // total collection passes run
}

// Stats returns a snapshot of the Allocator's counters.
func (a *Allocator) Stats() Stats {
	return Stats{Live: len(a.owned), Allocs: a.allocCount, Collects: a.collectCount}
}

// maybeCollect implements the reclaim-on-growth policy: a collection
// pass runs exactly when the next append would require the owned slice
// to grow, so each unlinked Object is collected at most once and the
// amortized cost per allocation stays O(1). This is not a tracing
// collector — cycles of Links are never reclaimed (§9).
func (a *Allocator) maybeCollect() {
	if len(a.owned) < cap(a.owned) {
		return
	}
	if a.onPressure != nil {
		a.onPressure()
	}
	a.collect()
}

func (a *Allocator) collect() {
	a.collectCount++
	write := 0
	for _, obj := range a.owned {
		if obj.LinkCount == 0 {
			continue
		}
		a.owned[write] = obj
		write++
	}
	for i := write; i < len(a.owned); i++ {
		a.owned[i] = nil
	}
	a.owned = a.owned[:write]
}
