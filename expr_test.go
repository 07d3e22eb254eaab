package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstExpr(t *testing.T) {
	e := Const(42)
	assert.Equal(t, 42, e.Value())
}

func TestValue_GetSetExpr(t *testing.T) {
	v := NewValue(1)
	assert.Equal(t, 1, v.Get())
	v.Set(5)
	assert.Equal(t, 5, v.Get())
	assert.Equal(t, 5, v.Expr().Value())
}

func TestValue_Set_NotifiesSubscribedCondition(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	v := NewValue(0)
	cond := newExprCondition(r, Eq(v.Expr(), Const(3)))
	cond.Enable()
	defer cond.Disable()

	assert.False(t, cond.IsFulfilled())
	v.Set(3)
	assert.True(t, cond.IsFulfilled())
}

func TestBinaryOp_Arithmetic(t *testing.T) {
	a := NewValue(2)
	b := NewValue(3)
	sum := Add[int](a.Expr(), b.Expr())
	assert.Equal(t, 5, sum.Value())

	a.Set(10)
	assert.Equal(t, 13, sum.Value())
}

func TestComparisons(t *testing.T) {
	a := Const(2)
	b := Const(3)
	assert.True(t, Lt(a, b).Value())
	assert.True(t, Le(a, b).Value())
	assert.False(t, Gt(a, b).Value())
	assert.False(t, Ge(a, b).Value())
	assert.False(t, Eq(a, b).Value())
	assert.True(t, Ne(a, b).Value())
}

func TestBooleanCombinators_NoShortCircuit(t *testing.T) {
	calls := 0
	countingTrue := UnaryOp(Const(0), func(int) bool {
		calls++
		return true
	})
	// Or with a const-true left operand must still evaluate the right
	// operand, per spec.md's no-short-circuit rule for Binary nodes.
	result := Or(Const(true), countingTrue)
	assert.True(t, result.Value())
	assert.Equal(t, 1, calls)

	result = And(Const(false), countingTrue)
	assert.False(t, result.Value())
	assert.Equal(t, 2, calls)
}

func TestNot(t *testing.T) {
	assert.False(t, Not(Const(true)).Value())
	assert.True(t, Not(Const(false)).Value())
}
