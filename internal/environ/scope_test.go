package environ

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeGetFindsOwnerInChain(t *testing.T) {
	root := NewScope(nil)
	root.Set("a", Int(1))
	mid := NewScope(root)
	leaf := NewScope(mid)
	leaf.Set("b", Int(2))

	v, ok := leaf.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v.Int)

	_, ok = root.Get("b")
	assert.False(t, ok)
}

func TestScopeOwnerReturnsDefiningScope(t *testing.T) {
	root := NewScope(nil)
	root.Set("a", Int(1))
	leaf := NewScope(root)

	assert.Same(t, root, leaf.Owner("a"))
	assert.Nil(t, leaf.Owner("missing"))
}

func TestScopeSetShadowsWithoutMutatingOuter(t *testing.T) {
	root := NewScope(nil)
	root.Set("a", Int(1))
	leaf := NewScope(root)
	leaf.Set("a", Int(2))

	v, _ := leaf.Get("a")
	assert.Equal(t, int64(2), v.Int)
	v, _ = root.Get("a")
	assert.Equal(t, int64(1), v.Int)
}
