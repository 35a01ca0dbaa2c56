package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestVeldErrorString(t *testing.T) {
	err := &VeldError{
		Op:   "runtime.BuildSession",
		Kind: KindBuild,
		Err:  errors.New("boom"),
	}
	got := err.Error()
	if got == "" {
		t.Error("expected non-empty error string")
	}
	if !strings.Contains(got, "runtime.BuildSession") {
		t.Errorf("error string %q should contain the op", got)
	}
}

func TestVeldErrorWithNode(t *testing.T) {
	err := &VeldError{
		Op:   "compose.Validate",
		Kind: KindBuild,
		Node: "root/checkbox",
		Err:  errors.New("unresolved two-way link"),
	}
	got := err.Error()
	want := "node=root/checkbox"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindBuild, "build"},
		{KindBinding, "binding"},
		{KindDispatch, "dispatch"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestBuildErrorDiagnostic(t *testing.T) {
	err := &BuildError{
		Component: "SubWindow",
		Node:      "root/sub3",
		Property:  "some-value",
		Err:       errors.New("type mismatch"),
	}
	got := err.Error()
	for _, want := range []string{"SubWindow", "root/sub3", "some-value"} {
		if !strings.Contains(got, want) {
			t.Errorf("diagnostic %q should contain %q", got, want)
		}
	}
}

func TestBindingErrorUnwrap(t *testing.T) {
	inner := errors.New("division by zero")
	err := &BindingError{Cell: "ratio", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected BindingError to unwrap to the inner error")
	}
}

type recordingHandler struct {
	errs     []*VeldError
	panics   []*PanicError
	bindings []*BindingError
}

func (h *recordingHandler) HandleError(err *VeldError)         { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *PanicError)        { h.panics = append(h.panics, err) }
func (h *recordingHandler) HandleBindingError(e *BindingError) { h.bindings = append(h.bindings, e) }

func TestReportRoutesToHandler(t *testing.T) {
	h := &recordingHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	Report(&VeldError{Op: "test.op", Kind: KindDispatch, Err: errors.New("x")})
	ReportBindingError(&BindingError{Cell: "width", Recovered: "oops"})

	if len(h.errs) != 1 {
		t.Fatalf("expected 1 reported error, got %d", len(h.errs))
	}
	if h.errs[0].Timestamp.IsZero() {
		t.Error("Report should stamp the error with the current time")
	}
	if len(h.bindings) != 1 {
		t.Fatalf("expected 1 binding error, got %d", len(h.bindings))
	}
}

func TestRecoverReportsPanic(t *testing.T) {
	h := &recordingHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	func() {
		defer Recover("test.panicking")
		panic("boom")
	}()

	if len(h.panics) != 1 {
		t.Fatalf("expected 1 recovered panic, got %d", len(h.panics))
	}
	if h.panics[0].Value != "boom" {
		t.Errorf("expected panic value %q, got %v", "boom", h.panics[0].Value)
	}
}
