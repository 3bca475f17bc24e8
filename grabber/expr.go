package grabber

import (
	"fmt"
	"math"

	"github.com/griddyn-go/simcore/core"
)

// binaryNode applies one of + - * / % ^ to two sub-evaluators. Built by
// the parser whenever at least one side is not a literal constant
// (literal/literal pairs are constant-folded instead, see
// foldOrBuild).
type binaryNode struct {
	op          byte
	left, right Evaluator
}

// GrabData evaluates this node at runtime. Unlike foldOrBuild's
// constant-fold path, a zero denominator here is not special-cased: '/'
// and '%' are applied directly so Go's native float division produces
// +/-Inf or NaN, per spec.md §4.4's "runtime divide-by-zero is not
// otherwise guarded" (only the constant-fold case yields kNullVal).
func (n *binaryNode) GrabData() float64 {
	lv := n.left.GrabData()
	rv := n.right.GrabData()
	if lv == core.NullValue || rv == core.NullValue {
		return core.NullValue
	}
	switch n.op {
	case '+':
		return lv + rv
	case '-':
		return lv - rv
	case '*':
		return lv * rv
	case '/':
		return lv / rv
	case '%':
		return math.Mod(lv, rv)
	case '^':
		return math.Pow(lv, rv)
	default:
		return core.NullValue
	}
}

func (n *binaryNode) Description() string {
	return fmt.Sprintf("(%s %c %s)", n.left.Description(), n.op, n.right.Description())
}

// applyOp evaluates one binary operator for foldOrBuild's constant-fold
// path only. The second return value is false for '/' and '%' by zero,
// which foldOrBuild turns into kNullVal (spec.md §4.4: "Divide-by-zero
// returns kNullVal for the constant case"). binaryNode.GrabData, the
// runtime (non-constant) evaluation path, does not call this function —
// it applies '/' and '%' directly so a zero denominator propagates
// IEEE-754 +/-Inf/NaN unguarded, per the same spec passage's "runtime
// divide-by-zero is not otherwise guarded".
func applyOp(op byte, l, r float64) (float64, bool) {
	switch op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	case '/':
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case '%':
		if r == 0 {
			return 0, false
		}
		return math.Mod(l, r), true
	case '^':
		return math.Pow(l, r), true
	default:
		return 0, false
	}
}

// funcNode1 applies a registered 1-argument function.
type funcNode1 struct {
	name string
	fn   func(float64) float64
	arg  Evaluator
}

func newFuncNode1(name string, fn func(float64) float64, arg Evaluator) Evaluator {
	return &funcNode1{name: name, fn: fn, arg: arg}
}

func (n *funcNode1) GrabData() float64 {
	v := n.arg.GrabData()
	if v == core.NullValue {
		return core.NullValue
	}
	return n.fn(v)
}

func (n *funcNode1) Description() string {
	return fmt.Sprintf("%s(%s)", n.name, n.arg.Description())
}

// funcNode2 applies a registered 2-argument function.
type funcNode2 struct {
	name        string
	fn          func(float64, float64) float64
	left, right Evaluator
}

func newFuncNode2(name string, fn func(float64, float64) float64, left, right Evaluator) Evaluator {
	return &funcNode2{name: name, fn: fn, left: left, right: right}
}

func (n *funcNode2) GrabData() float64 {
	lv := n.left.GrabData()
	rv := n.right.GrabData()
	if lv == core.NullValue || rv == core.NullValue {
		return core.NullValue
	}
	return n.fn(lv, rv)
}

func (n *funcNode2) Description() string {
	return fmt.Sprintf("%s(%s,%s)", n.name, n.left.Description(), n.right.Description())
}

func mathAbs(x float64) float64   { return math.Abs(x) }
func mathSqrt(x float64) float64  { return math.Sqrt(x) }
func mathSin(x float64) float64   { return math.Sin(x) }
func mathCos(x float64) float64   { return math.Cos(x) }
func mathTan(x float64) float64   { return math.Tan(x) }
func mathExp(x float64) float64   { return math.Exp(x) }
func mathLog(x float64) float64   { return math.Log(x) }
func mathFloor(x float64) float64 { return math.Floor(x) }
func mathCeil(x float64) float64  { return math.Ceil(x) }

func mathMin(a, b float64) float64   { return math.Min(a, b) }
func mathMax(a, b float64) float64   { return math.Max(a, b) }
func mathPow(a, b float64) float64   { return math.Pow(a, b) }
func mathAtan2(a, b float64) float64 { return math.Atan2(a, b) }
func mathMod(a, b float64) float64   { return math.Mod(a, b) }
