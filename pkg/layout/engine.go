package layout

import (
	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/runtime"
)

// Button chrome around the label, in logical pixels.
const (
	buttonInsetX      = 12
	buttonInsetY      = 6
	buttonLabelSize   = 12
	defaultCheckboxPx = 20
)

// Engine computes geometry for a session's component tree.
//
// The engine holds no geometry state of its own: preferred and actual
// sizes are pure functions of the subtree's property cells, recomputed on
// demand through the binding graph's memoized pull path. A dirty cell
// (text content, font size, a rect dimension, a container's spacing)
// therefore invalidates exactly the next Layout call that reads it.
//
// opacity and visible are never consulted for size or position; they
// affect hit testing only. A structural conditional that evaluates false
// is absent from the tree and contributes nothing.
type Engine struct {
	session *runtime.Session
}

// NewEngine creates a layout engine over the session.
func NewEngine(s *runtime.Session) *Engine {
	return &Engine{session: s}
}

// PreferredSize returns the size the instance wants, derived from its
// content and its children's preferred sizes under the active stacking
// policy.
func (e *Engine) PreferredSize(inst *runtime.Instance) Size {
	switch inst.Kind() {
	case compose.KindRect:
		return Size{
			Width:  cellFloat(inst, "width", 0),
			Height: cellFloat(inst, "height", 0),
		}
	case compose.KindText:
		return MeasureText(cellString(inst, "text", ""), cellFloat(inst, "font-size", 0))
	case compose.KindCheckbox:
		side := cellFloat(inst, "size", defaultCheckboxPx)
		return Size{Width: side, Height: side}
	case compose.KindButton:
		label := MeasureText(cellString(inst, "text", ""), buttonLabelSize)
		return Size{
			Width:  label.Width + 2*buttonInsetX,
			Height: label.Height + 2*buttonInsetY,
		}
	}
	return e.stackedSize(inst)
}

// stackedSize computes a container's preferred size from its children:
// main-axis sum plus spacing, cross-axis maximum, padding on all sides.
func (e *Engine) stackedSize(inst *runtime.Instance) Size {
	children := inst.Children()
	spacing := cellFloat(inst, "spacing", 0)
	padding := cellFloat(inst, "padding", 0)
	horizontal := cellString(inst, "direction", "column") == "row"

	var main, cross float64
	for i, child := range children {
		size := e.PreferredSize(child)
		if i > 0 {
			main += spacing
		}
		if horizontal {
			main += size.Width
			if size.Height > cross {
				cross = size.Height
			}
		} else {
			main += size.Height
			if size.Width > cross {
				cross = size.Width
			}
		}
	}
	if horizontal {
		return Size{Width: main + 2*padding, Height: cross + 2*padding}
	}
	return Size{Width: cross + 2*padding, Height: main + 2*padding}
}

// Layout refreshes the session's structural state and assigns geometry
// top-down: the root takes the viewport, containers place children per
// their stacking policy, leaves take their preferred size clamped to the
// space their parent offers.
func (e *Engine) Layout(viewport Size) (*Result, error) {
	if err := e.session.Refresh(); err != nil {
		return nil, err
	}
	res := &Result{rects: make(map[*runtime.Instance]Rect)}
	root := e.session.Root()
	if root == nil {
		return res, nil
	}
	e.place(res, root, RectFromLTWH(0, 0, viewport.Width, viewport.Height), true)
	return res, nil
}

// place records the instance's rect and positions its children inside it.
func (e *Engine) place(res *Result, inst *runtime.Instance, rect Rect, hittable bool) {
	if !cellBool(inst, "visible", true) {
		hittable = false
	}
	res.rects[inst] = rect
	res.order = append(res.order, placed{inst: inst, rect: rect, hittable: hittable})

	children := inst.Children()
	if len(children) == 0 {
		return
	}
	spacing := cellFloat(inst, "spacing", 0)
	padding := cellFloat(inst, "padding", 0)
	horizontal := cellString(inst, "direction", "column") == "row"
	align := cellString(inst, "align", "start")

	content := RectFromLTWH(
		rect.Left+padding,
		rect.Top+padding,
		rect.Width()-2*padding,
		rect.Height()-2*padding,
	)
	bounds := Loose(content.Size())

	cursor := 0.0
	for _, child := range children {
		size := bounds.Constrain(e.PreferredSize(child))
		var childRect Rect
		if horizontal {
			childRect = RectFromLTWH(
				content.Left+cursor,
				content.Top+crossOffset(align, content.Height(), size.Height),
				size.Width, size.Height,
			)
			cursor += size.Width + spacing
		} else {
			childRect = RectFromLTWH(
				content.Left+crossOffset(align, content.Width(), size.Width),
				content.Top+cursor,
				size.Width, size.Height,
			)
			cursor += size.Height + spacing
		}
		e.place(res, child, childRect, hittable)
	}
}

// crossOffset positions a child along the cross axis.
func crossOffset(align string, available, used float64) float64 {
	switch align {
	case "center":
		return (available - used) / 2
	case "end":
		return available - used
	}
	return 0
}

type placed struct {
	inst     *runtime.Instance
	rect     Rect
	hittable bool
}

// Result is one completed layout pass: a rect per live instance, in tree
// order.
type Result struct {
	rects map[*runtime.Instance]Rect
	order []placed
}

// Rect returns the instance's assigned rectangle. ok is false for
// instances that were not part of the pass (destroyed, or structurally
// absent).
func (r *Result) Rect(inst *runtime.Instance) (Rect, bool) {
	rect, ok := r.rects[inst]
	return rect, ok
}

// HitTest returns the topmost instance whose rect contains the point, or
// nil. Instances under a visible:false node keep their geometry but are
// transparent to hits.
func (r *Result) HitTest(p Point) *runtime.Instance {
	for i := len(r.order) - 1; i >= 0; i-- {
		entry := r.order[i]
		if entry.hittable && entry.rect.Contains(p) {
			return entry.inst
		}
	}
	return nil
}
