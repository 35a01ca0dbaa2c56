// Package property implements the binding graph that backs every component
// property in a Veld session.
//
// Each property lives in a Cell. A cell either holds a plain value or a
// binding: a pure function of other cells. Reads are pull-based — a read
// forces recomputation of the cell and any dirty dependencies first, and
// memoizes the result. Writes are the only mutation primitive; a write
// marks every transitively dependent cell dirty. Two-way linked cells
// share a single storage slot, so writing either side writes both.
package property

import (
	"time"

	"github.com/go-veld/veld/pkg/errors"
)

// Binding recomputes a cell's value from other cells.
//
// Deps declares every cell the compute function reads. The graph uses the
// declared dependencies both for dirty propagation and for build-time cycle
// detection, so an undeclared read will not be tracked.
type Binding struct {
	Deps    []*Cell
	Compute func() any
}

// Callback is the value type of callback cells (e.g. a button's clicked
// handler). Invoking a callback goes through the graph like any other read.
type Callback func()

// Cell holds one property value.
//
// Cells are views over storage slots. Most cells own their slot alone;
// two-way linked cells alias a shared slot. All mutation goes through
// Set (or the graph's link/bind registration at build time).
type Cell struct {
	name  string
	slot  *slot
	graph *Graph
}

// slot is the shared storage behind one or more two-way linked cells.
type slot struct {
	value      any
	fallback   any // substituted when the binding fails
	binding    *Binding
	dirty      bool
	evaluating bool
	names      []string
	dependsOn  []*slot
	dependents []*slot
}

// Name returns the cell's debug name.
func (c *Cell) Name() string {
	return c.name
}

// Get returns the cell's current value, recomputing it first if a
// dependency changed since the last read.
func (c *Cell) Get() any {
	c.slot.resolve()
	return c.slot.value
}

// GetBool reads the cell as a bool. Non-bool values read as false.
func (c *Cell) GetBool() bool {
	v, _ := c.Get().(bool)
	return v
}

// GetFloat reads the cell as a float64, converting integer values.
func (c *Cell) GetFloat() float64 {
	switch v := c.Get().(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// GetString reads the cell as a string. Non-string values read as "".
func (c *Cell) GetString() string {
	v, _ := c.Get().(string)
	return v
}

// GetInt reads the cell as an int, truncating float values.
func (c *Cell) GetInt() int {
	switch v := c.Get().(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Set writes a value directly and marks every dependent cell dirty.
//
// Writing a cell that has a binding detaches the binding: the written
// value stays until the next write, it is not recomputed away. For
// two-way linked cells the write lands in the shared slot, so the
// dependents of every linked side are dirtied together.
func (c *Cell) Set(value any) {
	s := c.slot
	s.binding = nil
	s.value = value
	s.dirty = false
	for _, dep := range s.dependents {
		dep.markDirty()
	}
}

// Invoke calls the cell's value as a callback if one is set.
// Reports whether a handler ran.
func (c *Cell) Invoke() bool {
	handler, ok := c.Get().(Callback)
	if !ok || handler == nil {
		return false
	}
	handler()
	return true
}

// HasBinding reports whether the cell currently has an attached binding.
func (c *Cell) HasBinding() bool {
	return c.slot.binding != nil
}

// markDirty marks the slot and its transitive dependents dirty.
// Marking is transitive at mark time, so an already-dirty slot's
// dependents are guaranteed dirty and the walk can stop.
func (s *slot) markDirty() {
	if s.dirty {
		return
	}
	s.dirty = true
	for _, dep := range s.dependents {
		dep.markDirty()
	}
}

// resolve recomputes the slot's value if it is dirty.
//
// Dependencies are forced first, in declaration order. The recursion is
// bounded because binding cycles are rejected at registration time; the
// evaluating flag is a guard against cycles introduced through undeclared
// reads, which would otherwise recurse forever.
func (s *slot) resolve() {
	if !s.dirty || s.binding == nil {
		s.dirty = false
		return
	}
	if s.evaluating {
		errors.ReportBindingError(&errors.BindingError{
			Cell:      s.displayName(),
			Err:       errCycleDetected,
			Timestamp: time.Now(),
		})
		return
	}
	s.evaluating = true
	defer func() { s.evaluating = false }()

	for _, dep := range s.binding.Deps {
		dep.slot.resolve()
	}

	value, ok := s.compute()
	if !ok {
		value = s.fallback
	}
	s.value = value
	s.dirty = false
}

// compute runs the binding with panic recovery. A failed binding reports
// through the global handler and signals the caller to use the fallback;
// it never aborts the session.
func (s *slot) compute() (value any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportBindingError(&errors.BindingError{
				Cell:      s.displayName(),
				Recovered: r,
				Timestamp: time.Now(),
			})
			ok = false
		}
	}()
	return s.binding.Compute(), true
}

func (s *slot) displayName() string {
	if len(s.names) > 0 {
		return s.names[0]
	}
	return "<anonymous>"
}
