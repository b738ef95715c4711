package compiler

// AutoVarAllocator hands out dense 1-based auto-var indices within a single
// function. count is restored to an earlier snapshot at scope/statement
// boundaries so sibling statements can reuse slots; max never shrinks, and
// becomes the function's frame size.
type AutoVarAllocator struct {
	count int
	max   int
}

// Allocate returns the next auto-var index and bumps max if needed.
func (a *AutoVarAllocator) Allocate() int {
	a.count++
	if a.count > a.max {
		a.max = a.count
	}
	return a.count
}

// Snapshot returns the current count for later restoration.
func (a *AutoVarAllocator) Snapshot() int { return a.count }

// Restore rewinds count to a previous snapshot without touching max.
func (a *AutoVarAllocator) Restore(snapshot int) { a.count = snapshot }

// Max is the high-water mark: the function's required frame size.
func (a *AutoVarAllocator) Max() int { return a.max }

// Reset clears both counters at a function boundary.
func (a *AutoVarAllocator) Reset() { a.count, a.max = 0, 0 }

// LabelAllocator hands out unique, never-recycled label ids within a
// single function.
type LabelAllocator struct {
	next int
}

func (l *LabelAllocator) Allocate() int {
	id := l.next
	l.next++
	return id
}

func (l *LabelAllocator) Reset() { l.next = 0 }
