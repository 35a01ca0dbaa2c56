package layout_test

import (
	"testing"

	"github.com/go-veld/veld/pkg/compose"
	"github.com/go-veld/veld/pkg/layout"
	"github.com/go-veld/veld/pkg/runtime"
)

func buildSession(t *testing.T, root *compose.NodeSpec) *runtime.Session {
	t.Helper()
	reg := compose.NewRegistry()
	reg.Register(&compose.ComponentSpec{Name: "Main", Root: root})
	s, err := runtime.BuildSession(reg, "Main")
	if err != nil {
		t.Fatalf("BuildSession failed: %v", err)
	}
	t.Cleanup(s.Teardown)
	return s
}

func TestMeasureTextScalesWithFontSize(t *testing.T) {
	small := layout.MeasureText("hello", 13)
	big := layout.MeasureText("hello", 26)
	if small.Height != 13 || big.Height != 26 {
		t.Errorf("heights = %v, %v; want font sizes back", small.Height, big.Height)
	}
	if big.Width != 2*small.Width {
		t.Errorf("doubling the font size should double the width: %v vs %v", small.Width, big.Width)
	}
	if small.Width <= 0 {
		t.Errorf("non-empty text must have positive width, got %v", small.Width)
	}
}

func TestMeasureTextEmptyKeepsLineHeight(t *testing.T) {
	size := layout.MeasureText("", 16)
	if size.Width != 0 {
		t.Errorf("empty text width = %v, want 0", size.Width)
	}
	if size.Height != 16 {
		t.Errorf("empty text height = %v, want line height 16", size.Height)
	}
}

func TestConstraintsConstrain(t *testing.T) {
	c := layout.Constraints{MinWidth: 10, MaxWidth: 100, MinHeight: 5, MaxHeight: 50}
	got := c.Constrain(layout.Size{Width: 200, Height: 1})
	want := layout.Size{Width: 100, Height: 5}
	if got != want {
		t.Errorf("Constrain = %v, want %v", got, want)
	}
	if !layout.Tight(want).IsTight() {
		t.Error("Tight constraints should report IsTight")
	}
}

func TestRectPreferredSizeFromCells(t *testing.T) {
	s := buildSession(t, &compose.NodeSpec{
		Kind: compose.KindRect,
		Properties: []compose.PropertySpec{
			{Name: "width", Value: 40.0},
			{Name: "height", Value: 25.0},
		},
	})
	got := layout.NewEngine(s).PreferredSize(s.Root())
	if got != (layout.Size{Width: 40, Height: 25}) {
		t.Errorf("PreferredSize = %v", got)
	}
}

func TestColumnStackingWithSpacingAndPadding(t *testing.T) {
	s := buildSession(t, &compose.NodeSpec{
		Kind: compose.KindGroup,
		Properties: []compose.PropertySpec{
			{Name: "spacing", Value: 4.0},
			{Name: "padding", Value: 10.0},
		},
		Children: []*compose.NodeSpec{
			{Kind: compose.KindRect, ID: "a", Properties: rectProps(30, 20)},
			{Kind: compose.KindRect, ID: "b", Properties: rectProps(50, 15)},
		},
	})
	engine := layout.NewEngine(s)

	pref := engine.PreferredSize(s.Root())
	want := layout.Size{Width: 50 + 20, Height: 20 + 4 + 15 + 20}
	if pref != want {
		t.Fatalf("PreferredSize = %v, want %v", pref, want)
	}

	res, err := engine.Layout(layout.Size{Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	a, _ := res.Rect(s.Root().FindByID("a"))
	b, _ := res.Rect(s.Root().FindByID("b"))
	if a != layout.RectFromLTWH(10, 10, 30, 20) {
		t.Errorf("a = %+v", a)
	}
	if b != layout.RectFromLTWH(10, 34, 50, 15) {
		t.Errorf("b = %+v", b)
	}
}

func TestRowStackingWithCenterAlign(t *testing.T) {
	s := buildSession(t, &compose.NodeSpec{
		Kind: compose.KindGroup,
		Properties: []compose.PropertySpec{
			{Name: "direction", Value: "row"},
			{Name: "align", Value: "center"},
		},
		Children: []*compose.NodeSpec{
			{Kind: compose.KindRect, ID: "tall", Properties: rectProps(10, 40)},
			{Kind: compose.KindRect, ID: "short", Properties: rectProps(10, 20)},
		},
	})
	res, err := layout.NewEngine(s).Layout(layout.Size{Width: 100, Height: 40})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	tall, _ := res.Rect(s.Root().FindByID("tall"))
	short, _ := res.Rect(s.Root().FindByID("short"))
	if tall != layout.RectFromLTWH(0, 0, 10, 40) {
		t.Errorf("tall = %+v", tall)
	}
	if short != layout.RectFromLTWH(10, 10, 10, 20) {
		t.Errorf("short = %+v (want centered on the cross axis)", short)
	}
}

// Geometry must be identical whether a node is plain, half-transparent,
// or invisible. Only structural absence (a false condition) removes it
// from space allocation.
func TestGeometryInvariantUnderOpacityAndVisible(t *testing.T) {
	variant := func(extra ...compose.PropertySpec) *compose.NodeSpec {
		props := append(rectProps(30, 20), extra...)
		return &compose.NodeSpec{
			Kind: compose.KindGroup,
			Children: []*compose.NodeSpec{
				{Kind: compose.KindRect, Properties: rectProps(50, 10)},
				{Kind: compose.KindRect, ID: "probe", Properties: props},
				{Kind: compose.KindRect, ID: "after", Properties: rectProps(50, 10)},
			},
		}
	}

	measure := func(root *compose.NodeSpec) (layout.Size, layout.Rect) {
		s := buildSession(t, root)
		engine := layout.NewEngine(s)
		pref := engine.PreferredSize(s.Root())
		res, err := engine.Layout(layout.Size{Width: 100, Height: 100})
		if err != nil {
			t.Fatalf("Layout failed: %v", err)
		}
		after, _ := res.Rect(s.Root().FindByID("after"))
		return pref, after
	}

	plainSize, plainAfter := measure(variant())
	opacitySize, opacityAfter := measure(variant(compose.PropertySpec{Name: "opacity", Value: 0.5}))
	hiddenSize, hiddenAfter := measure(variant(compose.PropertySpec{Name: "visible", Value: false}))

	if opacitySize != plainSize || opacityAfter != plainAfter {
		t.Errorf("opacity changed geometry: %v/%v vs %v/%v", opacitySize, opacityAfter, plainSize, plainAfter)
	}
	if hiddenSize != plainSize || hiddenAfter != plainAfter {
		t.Errorf("visible:false changed geometry: %v/%v vs %v/%v", hiddenSize, hiddenAfter, plainSize, plainAfter)
	}
}

func TestFalseConditionIsGeometricAbsence(t *testing.T) {
	cond := compose.ParseRef("root.show")
	withCond := &compose.NodeSpec{
		Kind: compose.KindGroup,
		ID:   "root",
		Properties: []compose.PropertySpec{
			{Name: "show", Value: false},
		},
		Children: []*compose.NodeSpec{
			{Kind: compose.KindRect, Properties: rectProps(50, 10)},
			{Kind: compose.KindRect, ID: "probe", If: &cond, Properties: rectProps(30, 20)},
			{Kind: compose.KindRect, ID: "after", Properties: rectProps(50, 10)},
		},
	}
	without := &compose.NodeSpec{
		Kind: compose.KindGroup,
		Children: []*compose.NodeSpec{
			{Kind: compose.KindRect, Properties: rectProps(50, 10)},
			{Kind: compose.KindRect, ID: "after", Properties: rectProps(50, 10)},
		},
	}

	sCond := buildSession(t, withCond)
	sPlain := buildSession(t, without)
	engCond := layout.NewEngine(sCond)
	engPlain := layout.NewEngine(sPlain)

	if got, want := engCond.PreferredSize(sCond.Root()), engPlain.PreferredSize(sPlain.Root()); got != want {
		t.Errorf("false condition must not reserve space: %v vs %v", got, want)
	}
	resCond, err := engCond.Layout(layout.Size{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	resPlain, err := engPlain.Layout(layout.Size{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	afterCond, _ := resCond.Rect(sCond.Root().FindByID("after"))
	afterPlain, _ := resPlain.Rect(sPlain.Root().FindByID("after"))
	if afterCond != afterPlain {
		t.Errorf("sibling position differs: %+v vs %+v", afterCond, afterPlain)
	}
	if _, ok := resCond.Rect(sCond.Root().FindByID("probe")); ok {
		t.Error("absent node must not appear in the layout result")
	}
}

func TestLayoutTracksCellWrites(t *testing.T) {
	s := buildSession(t, &compose.NodeSpec{
		Kind: compose.KindGroup,
		Children: []*compose.NodeSpec{
			{Kind: compose.KindRect, ID: "box", Properties: rectProps(30, 20)},
		},
	})
	engine := layout.NewEngine(s)
	if got := engine.PreferredSize(s.Root()); got.Height != 20 {
		t.Fatalf("initial height = %v", got.Height)
	}
	s.Root().FindByID("box").OwnCell("height").Set(35.0)
	if got := engine.PreferredSize(s.Root()); got.Height != 35 {
		t.Errorf("height after write = %v, want 35", got.Height)
	}
}

func TestHitTestTopmostAndVisibility(t *testing.T) {
	s := buildSession(t, &compose.NodeSpec{
		Kind: compose.KindGroup,
		Children: []*compose.NodeSpec{
			{
				Kind:       compose.KindRect,
				ID:         "under",
				Properties: rectProps(100, 100),
				Children: []*compose.NodeSpec{
					{
						Kind: compose.KindGroup,
						ID:   "overlay",
						Children: []*compose.NodeSpec{
							{Kind: compose.KindRect, ID: "top", Properties: rectProps(100, 40)},
						},
					},
				},
			},
		},
	})
	engine := layout.NewEngine(s)
	res, err := engine.Layout(layout.Size{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}

	if got := res.HitTest(layout.Point{X: 50, Y: 10}); got != s.Root().FindByID("top") {
		t.Errorf("HitTest hit %v, want the topmost rect", name(got))
	}
	if got := res.HitTest(layout.Point{X: 500, Y: 500}); got != nil {
		t.Errorf("HitTest outside every rect = %v, want nil", name(got))
	}

	// An invisible subtree keeps its geometry but is transparent to hits.
	s.Root().FindByID("overlay").OwnCell("visible").Set(false)
	res, err = engine.Layout(layout.Size{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if _, ok := res.Rect(s.Root().FindByID("top")); !ok {
		t.Error("invisible node must keep its rect")
	}
	if got := res.HitTest(layout.Point{X: 50, Y: 10}); got != s.Root().FindByID("under") {
		t.Errorf("HitTest through invisible overlay hit %v, want the rect underneath", name(got))
	}
}

func rectProps(w, h float64) []compose.PropertySpec {
	return []compose.PropertySpec{
		{Name: "width", Value: w},
		{Name: "height", Value: h},
	}
}

func name(inst *runtime.Instance) string {
	if inst == nil {
		return "<nil>"
	}
	return inst.ID()
}
