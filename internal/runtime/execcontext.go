package runtime

import "github.com/cwbudde/go-bob/internal/value"

// ExecutionContext is the per-call-frame control token threaded through
// Executor statement visits. Child statements observe
// and set these fields to effect non-local transfer (return, break,
// continue, throw) without unwinding the host Go call stack across
// call boundaries.
type ExecutionContext struct {
	IsFunctionBody bool

	HasReturn   bool
	ReturnValue value.Value

	ShouldBreak    bool
	ShouldContinue bool

	HasThrow    bool
	ThrownValue value.Value
	ThrowKind   string
	ThrowLine   int
	ThrowColumn int
}

// NewExecutionContext returns a zeroed context; isFunctionBody marks a
// context opened at function-call boundaries. The Return statement
// sets HasReturn whatever this flag holds.
func NewExecutionContext(isFunctionBody bool) *ExecutionContext {
	return &ExecutionContext{IsFunctionBody: isFunctionBody}
}

// Signaled reports whether any non-local transfer is pending.
func (c *ExecutionContext) Signaled() bool {
	return c.HasReturn || c.ShouldBreak || c.ShouldContinue || c.HasThrow
}

// ClearLoopSignals clears break/continue, used after a loop body
// observes and consumes them.
func (c *ExecutionContext) ClearLoopSignals() {
	c.ShouldBreak = false
	c.ShouldContinue = false
}

// ClearThrow clears the throw signal, used when a catch block takes it.
func (c *ExecutionContext) ClearThrow() {
	c.HasThrow = false
	c.ThrownValue = nil
	c.ThrowKind = ""
}

// SetThrow raises a language-level throw at (line, col) with the
// default "Runtime Error" diagnostic kind.
func (c *ExecutionContext) SetThrow(v value.Value, line, col int) {
	c.SetThrowWithKind(v, "Runtime Error", line, col)
}

// SetThrowWithKind raises a throw carrying a specific diagnostic kind
// ("Division by Zero", "Modulo by Zero", ...) so the kind survives to
// the reported error when the throw goes uncaught.
func (c *ExecutionContext) SetThrowWithKind(v value.Value, kind string, line, col int) {
	c.HasThrow = true
	c.ThrownValue = v
	c.ThrowKind = kind
	c.ThrowLine = line
	c.ThrowColumn = col
}
