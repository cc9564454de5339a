package runtime

import (
	"testing"

	"github.com/cwbudde/go-bob/internal/value"
)

func TestExecutionContextSignaled(t *testing.T) {
	ctx := NewExecutionContext(false)
	if ctx.Signaled() {
		t.Fatal("expected a fresh context to be unsignaled")
	}
	ctx.ShouldBreak = true
	if !ctx.Signaled() {
		t.Fatal("expected Signaled() once ShouldBreak is set")
	}
	ctx.ClearLoopSignals()
	if ctx.ShouldBreak || ctx.ShouldContinue || ctx.Signaled() {
		t.Fatal("expected ClearLoopSignals to reset break/continue")
	}
}

func TestExecutionContextThrow(t *testing.T) {
	ctx := NewExecutionContext(true)
	ctx.SetThrow(value.StringValue("boom"), 3, 7)
	if !ctx.HasThrow || !ctx.Signaled() {
		t.Fatal("expected SetThrow to signal HasThrow")
	}
	if ctx.ThrowKind != "Runtime Error" {
		t.Fatalf("ThrowKind = %q, want Runtime Error default", ctx.ThrowKind)
	}
	if ctx.ThrowLine != 3 || ctx.ThrowColumn != 7 {
		t.Fatalf("unexpected throw position: %d:%d", ctx.ThrowLine, ctx.ThrowColumn)
	}
	ctx.ClearThrow()
	if ctx.HasThrow || ctx.ThrownValue != nil || ctx.ThrowKind != "" {
		t.Fatal("expected ClearThrow to reset the throw state")
	}
}

func TestExecutionContextThrowWithKind(t *testing.T) {
	ctx := NewExecutionContext(false)
	ctx.SetThrowWithKind(value.StringValue("Division by zero"), "Division by Zero", 1, 9)
	if ctx.ThrowKind != "Division by Zero" {
		t.Fatalf("ThrowKind = %q, want Division by Zero", ctx.ThrowKind)
	}
}
