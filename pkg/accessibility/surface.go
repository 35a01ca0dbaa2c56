// Package accessibility exposes the queryable, scriptable view of a live
// session: accessible handles in tree order, label lookup, and the mouse
// and keyboard dispatch paths that drive component callbacks.
package accessibility

import (
	"fmt"
	"time"

	"github.com/go-veld/veld/pkg/errors"
	"github.com/go-veld/veld/pkg/layout"
	"github.com/go-veld/veld/pkg/runtime"
)

// Keys understood by SendKeyboardSequence.
const (
	KeySpace = " "
	KeyEnter = "Enter"
)

// Surface is the accessibility and event surface of one session. It
// shares the session's tree and binding graph; every query refreshes
// structural state first, so conditionals and repeaters resynchronize
// before an assistive query observes the tree.
type Surface struct {
	session  *runtime.Session
	engine   *layout.Engine
	viewport layout.Size
}

// NewSurface creates a surface over the session. The viewport bounds
// the layout pass that backs mouse hit testing.
func NewSurface(s *runtime.Session, viewport layout.Size) *Surface {
	return &Surface{
		session:  s,
		engine:   layout.NewEngine(s),
		viewport: viewport,
	}
}

// Handles returns every accessible element in tree order.
func (s *Surface) Handles() ([]*Handle, error) {
	if err := s.session.Refresh(); err != nil {
		return nil, err
	}
	var handles []*Handle
	if root := s.session.Root(); root != nil {
		root.Visit(func(inst *runtime.Instance) bool {
			if spec := inst.Accessible(); spec != nil {
				handles = append(handles, &Handle{inst: inst, spec: spec})
			}
			return true
		})
	}
	return handles, nil
}

// FindByLabel returns every accessible element with the label, in tree
// order.
func (s *Surface) FindByLabel(label string) ([]*Handle, error) {
	handles, err := s.Handles()
	if err != nil {
		return nil, err
	}
	var matches []*Handle
	for _, h := range handles {
		if h.Label() == label {
			matches = append(matches, h)
		}
	}
	return matches, nil
}

// FindUniqueLabel returns the single accessible element with the label.
// Zero matches and multiple matches are both errors: a script that
// addresses elements by label needs the label to be unambiguous.
func (s *Surface) FindUniqueLabel(label string) (*Handle, error) {
	matches, err := s.FindByLabel(label)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, s.dispatchErr("FindUniqueLabel", fmt.Errorf("no element labelled %q", label))
	default:
		return nil, s.dispatchErr("FindUniqueLabel", fmt.Errorf("%d elements labelled %q", len(matches), label))
	}
}

// InvokeDefaultAction performs the element's primary action: checkable
// elements toggle their checked state, then the element's clicked
// callback fires. Focus is untouched.
func (s *Surface) InvokeDefaultAction(h *Handle) {
	if h == nil {
		return
	}
	if h.spec.Checkable && h.spec.CheckedFrom != "" {
		if cell := h.inst.OwnCell(h.spec.CheckedFrom); cell != nil {
			cell.Set(!cell.GetBool())
		}
	}
	if cell := h.inst.OwnCell("clicked"); cell != nil {
		cell.Invoke()
	}
}

// SendMouseClick dispatches a click at the point: the topmost hittable
// element under it receives its default action. Clicks outside every
// element are no-ops, and mouse activation never moves focus. Reports
// whether an element was activated.
func (s *Surface) SendMouseClick(p layout.Point) (bool, error) {
	res, err := s.engine.Layout(s.viewport)
	if err != nil {
		return false, err
	}
	hit := res.HitTest(p)
	if hit == nil {
		return false, nil
	}
	target := s.accessibleAncestor(hit)
	if target == nil {
		return false, nil
	}
	s.InvokeDefaultAction(target)
	return true, nil
}

// SendKeyboardSequence delivers the keys, one at a time, to whatever
// holds focus when each key arrives. Space and Enter activate a
// focused checkable element; keys without a focused element are
// dropped. Focus never moves as a result of a key.
func (s *Surface) SendKeyboardSequence(keys ...string) error {
	if err := s.session.Refresh(); err != nil {
		return err
	}
	for _, key := range keys {
		focused := s.session.Focused()
		if focused == nil {
			continue
		}
		if key != KeySpace && key != KeyEnter {
			continue
		}
		spec := focused.Accessible()
		if spec == nil {
			continue
		}
		s.InvokeDefaultAction(&Handle{inst: focused, spec: spec})
	}
	return nil
}

// accessibleAncestor returns the nearest accessible instance at or
// above the given one.
func (s *Surface) accessibleAncestor(inst *runtime.Instance) *Handle {
	for cur := inst; cur != nil; cur = cur.Parent() {
		if spec := cur.Accessible(); spec != nil {
			return &Handle{inst: cur, spec: spec}
		}
	}
	return nil
}

func (s *Surface) dispatchErr(op string, err error) error {
	return &errors.VeldError{
		Op:        "accessibility." + op,
		Kind:      errors.KindDispatch,
		Err:       err,
		Timestamp: time.Now(),
	}
}
