package accessibility

import (
	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/runtime"
)

// Handle is the accessible view of one live instance: the role, label,
// and state an assistive technology would observe. Handles are
// snapshots of identity, not state; state reads go through the
// instance's cells at call time.
type Handle struct {
	inst *runtime.Instance
	spec *compose.AccessibleSpec
}

// Instance returns the underlying live instance.
func (h *Handle) Instance() *runtime.Instance {
	return h.inst
}

// Role returns the accessible role.
func (h *Handle) Role() compose.Role {
	return h.spec.Role
}

// Label returns the accessible label.
func (h *Handle) Label() string {
	return h.spec.Label
}

// Description returns the accessible description, or "".
func (h *Handle) Description() string {
	return h.spec.Description
}

// Value returns the current accessible value. ok is false for roles
// that carry no value.
func (h *Handle) Value() (value string, ok bool) {
	if h.spec.ValueFrom == "" {
		return "", false
	}
	cell := h.inst.OwnCell(h.spec.ValueFrom)
	if cell == nil {
		return "", false
	}
	return cell.GetString(), true
}

// Checkable reports whether the element supports a checked state.
func (h *Handle) Checkable() bool {
	return h.spec.Checkable
}

// Checked returns the current checked state. ok is false for elements
// that are not checkable.
func (h *Handle) Checked() (checked, ok bool) {
	if !h.spec.Checkable || h.spec.CheckedFrom == "" {
		return false, false
	}
	cell := h.inst.OwnCell(h.spec.CheckedFrom)
	if cell == nil {
		return false, false
	}
	return cell.GetBool(), true
}

// Focusable reports whether the element can take keyboard focus.
func (h *Handle) Focusable() bool {
	return h.spec.Focusable
}
