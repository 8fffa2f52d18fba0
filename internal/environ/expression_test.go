package environ

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

// exprCmp compares Expression values structurally while ignoring the Func
// field (go-cmp cannot compare func values, and none of these tests exercise
// KindFunc expressions).
var exprCmp = cmp.Options{
	cmpopts.IgnoreFields(Expression{}, "Func"),
}

func TestMakeStringTextualizesEveryKind(t *testing.T) {
	cases := []struct {
		name string
		expr *Expression
		want string
	}{
		{"nil", Nil, ""},
		{"true", True, "true"},
		{"int", Int(42), "42"},
		{"string", String("hi"), "hi"},
		{"symbol", Symbol("foo"), "foo"},
		{"list", List([]*Expression{Int(1), String("a")}), "(1 a)"},
		{"nested-list", List([]*Expression{Symbol("x"), List([]*Expression{Int(1), Int(2)})}), "(x (1 2))"},
		{"process", Proc(&ProcState{Status: ProcRunning, Pid: 99}), "99"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.expr.MakeString())
		})
	}
}

func TestWriteAppendsNewline(t *testing.T) {
	assert.Equal(t, "42\n", Int(42).Write())
}

func TestCloneIsShallowAndIndependent(t *testing.T) {
	original := List([]*Expression{Int(1), Int(2)})
	clone := original.Clone()

	if diff := cmp.Diff(original, clone, exprCmp); diff != "" {
		t.Fatalf("clone diverged from original (-want +got):\n%s", diff)
	}

	// The backing slice is shared (shallow copy) but the two *Expression
	// wrappers are distinct addresses, so mutating Kind on one must not
	// affect the other.
	clone.Kind = KindNil
	assert.Equal(t, KindList, original.Kind)
}

func TestIsTruthyOnlyNilIsFalse(t *testing.T) {
	assert.False(t, Nil.IsTruthy())
	assert.True(t, True.IsTruthy())
	assert.True(t, Int(0).IsTruthy())
	assert.True(t, String("").IsTruthy())
}
