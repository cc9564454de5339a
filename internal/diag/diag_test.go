package diag

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestFormatSnapshot(t *testing.T) {
	frame := SourceFrame{
		FileName: "script.bob",
		Lines: []string{
			"function add(a, b) {",
			"  return a + b;",
			"}",
			"",
			"print(add(1, oops));",
		},
	}
	out := Format(frame, 5, 15, "Runtime Error", "undefined variable: oops", true, false)
	snaps.MatchSnapshot(t, "format_with_arrow", out)
}

func TestFormatNoFileName(t *testing.T) {
	frame := SourceFrame{Lines: []string{"1 + ;"}}
	out := Format(frame, 1, 5, "Syntax Error", "unexpected token", true, false)
	snaps.MatchSnapshot(t, "format_no_filename", out)
}

type captured struct {
	lines []string
}

func (c *captured) write(s string) { c.lines = append(c.lines, s) }

func TestReporterTryDepthSuppression(t *testing.T) {
	c := &captured{}
	r := NewDefaultReporter(c.write)
	r.PushSource("x;", "<test>")

	r.EnterTry()
	if !r.IsInTry() {
		t.Fatal("expected IsInTry() after EnterTry()")
	}
	r.ReportError(1, 1, "Runtime Error", "boom", "", true)
	if len(c.lines) != 0 {
		t.Fatalf("expected no output while in try, got %v", c.lines)
	}
	if r.LastError() == nil || r.LastError().Message != "boom" {
		t.Fatalf("expected LastError to record the suppressed error")
	}

	r.ClearLastError()
	if r.LastError() != nil {
		t.Fatal("expected LastError to be nil after ClearLastError")
	}

	r.ExitTry()
	if r.IsInTry() {
		t.Fatal("expected IsInTry() false after ExitTry()")
	}
	r.ReportError(2, 1, "Runtime Error", "boom again", "", true)
	if len(c.lines) != 1 {
		t.Fatalf("expected exactly one rendered error outside try, got %d", len(c.lines))
	}
}

func TestPushPopSource(t *testing.T) {
	r := NewDefaultReporter(nil)
	r.PushSource("a\nb", "first.bob")
	r.PushSource("c", "second.bob")
	frame, ok := r.current()
	if !ok || frame.FileName != "second.bob" {
		t.Fatalf("expected current frame to be second.bob, got %+v", frame)
	}
	r.PopSource()
	frame, ok = r.current()
	if !ok || frame.FileName != "first.bob" {
		t.Fatalf("expected current frame to be first.bob after pop, got %+v", frame)
	}
	r.PopSource()
	if _, ok := r.current(); ok {
		t.Fatal("expected no current frame after popping all sources")
	}
}

func TestErrorError(t *testing.T) {
	e := &Error{Kind: "Runtime Error", Message: "boom"}
	if e.Error() != "Runtime Error: boom" {
		t.Fatalf("Error() = %q", e.Error())
	}
}
