package value

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// OpError is the error produced by the Value operator table. Kind is
// one of the stable diagnostic kind strings.
type OpError struct {
	Kind string
	Msg  string
}

func (e *OpError) Error() string { return e.Msg }

func opNotSupported(op string, a, b Value) error {
	return &OpError{
		Kind: "Operator not supported",
		Msg:  fmt.Sprintf("Operator not supported between %s and %s", a.Kind(), b.Kind()),
	}
}

func divByZero() error  { return &OpError{Kind: "Division by Zero", Msg: "Division by zero"} }
func modByZero() error  { return &OpError{Kind: "Modulo by Zero", Msg: "Modulo by zero"} }

// asBig returns the big.Int form of an Integer or BigInt value.
func asBig(v Value) (*big.Int, bool) {
	switch t := v.(type) {
	case IntValue:
		return big.NewInt(int64(t)), true
	case BigValue:
		return t.V, true
	}
	return nil, false
}

// narrow converts a big.Int back to IntValue if it fits in int64,
// otherwise keeps it as BigValue. This is the demotion counterpart to
// the promotion-on-overflow rule.
func narrow(i *big.Int) Value {
	if i.IsInt64() {
		return Int(i.Int64())
	}
	return NewBig(i)
}

func isIntLike(v Value) bool {
	switch v.(type) {
	case IntValue, BigValue:
		return true
	}
	return false
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case IntValue, BigValue, NumberValue:
		return true
	}
	return false
}

func toFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case IntValue:
		return float64(t), true
	case NumberValue:
		return float64(t), true
	case BigValue:
		f, _ := new(big.Float).SetInt(t.V).Float64()
		return f, true
	}
	return 0, false
}

// Add implements `+` including the numeric promotion rule and the
// string concatenation and coercion rules.
func Add(a, b Value) (Value, error) {
	if sa, ok := a.(StringValue); ok {
		if sb, ok := b.(StringValue); ok {
			return StringValue(string(sa) + string(sb)), nil
		}
		if isCoercible(b) {
			return StringValue(string(sa) + b.ToString()), nil
		}
		return nil, opNotSupported("+", a, b)
	}
	if sb, ok := b.(StringValue); ok {
		if isCoercible(a) {
			return StringValue(a.ToString() + string(sb)), nil
		}
		return nil, opNotSupported("+", a, b)
	}
	if ai, aok := a.(IntValue); aok {
		if bi, bok := b.(IntValue); bok {
			sum := int64(ai) + int64(bi)
			if overflowsAdd(int64(ai), int64(bi), sum) {
				return narrow(new(big.Int).Add(big.NewInt(int64(ai)), big.NewInt(int64(bi)))), nil
			}
			return Int(sum), nil
		}
	}
	if isNumeric(a) && isNumeric(b) {
		if _, isNum := a.(NumberValue); isNum {
			fa, _ := toFloat(a)
			fb, _ := toFloat(b)
			return NumberValue(fa + fb), nil
		}
		if _, isNum := b.(NumberValue); isNum {
			fa, _ := toFloat(a)
			fb, _ := toFloat(b)
			return NumberValue(fa + fb), nil
		}
		ba, _ := asBig(a)
		bb, _ := asBig(b)
		return narrow(new(big.Int).Add(ba, bb)), nil
	}
	return nil, opNotSupported("+", a, b)
}

func isCoercible(v Value) bool {
	switch v.(type) {
	case NumberValue, IntValue, BigValue, BoolValue, NoneValue:
		return true
	}
	return false
}

func overflowsAdd(a, b, sum int64) bool {
	if b > 0 && a > math.MaxInt64-b {
		return true
	}
	if b < 0 && a < math.MinInt64-b {
		return true
	}
	return false
}

func overflowsSub(a, b int64) bool {
	if b < 0 && a > math.MaxInt64+b {
		return true
	}
	if b > 0 && a < math.MinInt64+b {
		return true
	}
	return false
}

func overflowsMul(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	result := a * b
	return result/b != a
}

// Sub implements `-`.
func Sub(a, b Value) (Value, error) {
	if ai, aok := a.(IntValue); aok {
		if bi, bok := b.(IntValue); bok {
			if overflowsSub(int64(ai), int64(bi)) {
				return narrow(new(big.Int).Sub(big.NewInt(int64(ai)), big.NewInt(int64(bi)))), nil
			}
			return Int(int64(ai) - int64(bi)), nil
		}
	}
	return numericBinOp(a, b, "-",
		func(x, y float64) float64 { return x - y },
		func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) })
}

// Mul implements `*`, including String*Integer repetition.
func Mul(a, b Value) (Value, error) {
	if sa, ok := a.(StringValue); ok {
		if n, ok := b.(IntValue); ok {
			return repeatString(string(sa), int64(n)), nil
		}
	}
	if sb, ok := b.(StringValue); ok {
		if n, ok := a.(IntValue); ok {
			return repeatString(string(sb), int64(n)), nil
		}
	}
	if ai, aok := a.(IntValue); aok {
		if bi, bok := b.(IntValue); bok {
			if overflowsMul(int64(ai), int64(bi)) {
				return narrow(new(big.Int).Mul(big.NewInt(int64(ai)), big.NewInt(int64(bi)))), nil
			}
			return Int(int64(ai) * int64(bi)), nil
		}
	}
	return numericBinOp(a, b, "*",
		func(x, y float64) float64 { return x * y },
		func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
}

func repeatString(s string, n int64) Value {
	if n <= 0 {
		return StringValue("")
	}
	return StringValue(strings.Repeat(s, int(n)))
}

// Div implements `/`.
func Div(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, opNotSupported("/", a, b)
	}
	_, aIsNum := a.(NumberValue)
	_, bIsNum := b.(NumberValue)
	if aIsNum || bIsNum {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		if fb == 0 {
			return nil, divByZero()
		}
		return NumberValue(fa / fb), nil
	}
	ba, _ := asBig(a)
	bb, _ := asBig(b)
	if bb.Sign() == 0 {
		return nil, divByZero()
	}
	q, r := new(big.Int).QuoRem(ba, bb, new(big.Int))
	if r.Sign() == 0 {
		return narrow(q), nil
	}
	fa, _ := toFloat(a)
	fb, _ := toFloat(b)
	return NumberValue(fa / fb), nil
}

// Mod implements `%`.
func Mod(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, opNotSupported("%", a, b)
	}
	_, aIsNum := a.(NumberValue)
	_, bIsNum := b.(NumberValue)
	if aIsNum || bIsNum {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		if fb == 0 {
			return nil, modByZero()
		}
		return NumberValue(math.Mod(fa, fb)), nil
	}
	ba, _ := asBig(a)
	bb, _ := asBig(b)
	if bb.Sign() == 0 {
		return nil, modByZero()
	}
	return narrow(new(big.Int).Rem(ba, bb)), nil
}

func numericBinOp(a, b Value, op string, ffn func(x, y float64) float64, bfn func(x, y *big.Int) *big.Int) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, opNotSupported(op, a, b)
	}
	_, aIsNum := a.(NumberValue)
	_, bIsNum := b.(NumberValue)
	if aIsNum || bIsNum {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return NumberValue(ffn(fa, fb)), nil
	}
	ba, _ := asBig(a)
	bb, _ := asBig(b)
	return narrow(bfn(ba, bb)), nil
}

// Bitwise operators require integer-like operands on both sides.
func bitwiseOp(a, b Value, op string, fn func(x, y *big.Int) *big.Int) (Value, error) {
	if !isIntLike(a) || !isIntLike(b) {
		return nil, &OpError{Kind: "Operator not supported", Msg: fmt.Sprintf("Operator not supported between %s and %s", a.Kind(), b.Kind())}
	}
	ba, _ := asBig(a)
	bb, _ := asBig(b)
	return narrow(fn(ba, bb)), nil
}

func BitAnd(a, b Value) (Value, error) {
	return bitwiseOp(a, b, "&", func(x, y *big.Int) *big.Int { return new(big.Int).And(x, y) })
}

func BitOr(a, b Value) (Value, error) {
	return bitwiseOp(a, b, "|", func(x, y *big.Int) *big.Int { return new(big.Int).Or(x, y) })
}

func BitXor(a, b Value) (Value, error) {
	return bitwiseOp(a, b, "^", func(x, y *big.Int) *big.Int { return new(big.Int).Xor(x, y) })
}

func Shl(a, b Value) (Value, error) {
	if !isIntLike(a) || !isIntLike(b) {
		return nil, &OpError{Kind: "Operator not supported", Msg: "Operator not supported between " + a.Kind().String() + " and " + b.Kind().String()}
	}
	ba, _ := asBig(a)
	n := uint(AsInt(b))
	return narrow(new(big.Int).Lsh(ba, n)), nil
}

func Shr(a, b Value) (Value, error) {
	if !isIntLike(a) || !isIntLike(b) {
		return nil, &OpError{Kind: "Operator not supported", Msg: "Operator not supported between " + a.Kind().String() + " and " + b.Kind().String()}
	}
	ba, _ := asBig(a)
	n := uint(AsInt(b))
	return narrow(new(big.Int).Rsh(ba, n)), nil
}

// Compare implements `< <= > >=`; returns -1/0/1, matching Go's cmp
// convention. Returns an error for unsupported operand pairs.
func Compare(a, b Value) (int, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return 0, &OpError{Kind: "Operator not supported", Msg: "Operator not supported between " + a.Kind().String() + " and " + b.Kind().String()}
	}
	if ba, aok := asBig(a); aok {
		if bb, bok := asBig(b); bok {
			return ba.Cmp(bb), nil
		}
	}
	fa, _ := toFloat(a)
	fb, _ := toFloat(b)
	switch {
	case fa < fb:
		return -1, nil
	case fa > fb:
		return 1, nil
	default:
		return 0, nil
	}
}

// Neg implements unary `-`.
func Neg(v Value) (Value, error) {
	switch t := v.(type) {
	case IntValue:
		if t == math.MinInt64 {
			return narrow(new(big.Int).Neg(big.NewInt(int64(t)))), nil
		}
		return Int(-int64(t)), nil
	case BigValue:
		return narrow(new(big.Int).Neg(t.V)), nil
	case NumberValue:
		return NumberValue(-t), nil
	}
	return nil, &OpError{Kind: "Operator not supported", Msg: "Operator not supported for " + v.Kind().String()}
}

// BitNot implements unary `~`.
func BitNot(v Value) (Value, error) {
	if !isIntLike(v) {
		return nil, &OpError{Kind: "Operator not supported", Msg: "Operator not supported for " + v.Kind().String()}
	}
	b, _ := asBig(v)
	return narrow(new(big.Int).Not(b)), nil
}
