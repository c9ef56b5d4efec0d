package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtypeCacheRoot(t *testing.T) {
	var root *subtypeCache
	root.put(tyA, tyB, True)
	_, ok := root.get(tyA, tyB)
	assert.False(t, ok)
	assert.Equal(t, 0, root.size())
}

func TestSubtypeCacheReadsThroughParent(t *testing.T) {
	parent := newSubtypeCache(nil)
	child := newSubtypeCache(parent)

	parent.put(tyC, tyA, True)
	child.put(tyA, tyC, False)

	res, ok := child.get(tyC, tyA)
	require.True(t, ok)
	assert.True(t, res.IsTrue())

	res, ok = child.get(tyA, tyC)
	require.True(t, ok)
	assert.True(t, res.IsFalse())

	_, ok = parent.get(tyA, tyC)
	assert.False(t, ok, "writes to a child scope must not reach the parent")

	assert.Equal(t, 1, parent.size())
	assert.Equal(t, 1, child.size())
}

func TestSubtypeCacheChildShadowsParent(t *testing.T) {
	parent := newSubtypeCache(nil)
	child := newSubtypeCache(parent)

	parent.put(tyB, tyD, False)
	child.put(tyB, tyD, True)

	res, _ := child.get(tyB, tyD)
	assert.True(t, res.IsTrue())
	res, _ = parent.get(tyB, tyD)
	assert.True(t, res.IsFalse())
}

func TestAnalyzerCachesCanonicalQueries(t *testing.T) {
	a := newTestAnalyzer()

	f, err := a.SubtypeNormal(ivar(7), tyA)
	require.NoError(t, err)
	assert.Equal(t, "{$7 <: A}", f.String())

	canonical := InferenceVar{ID: 0, Canonical: true}
	cached, ok := a.cache.get(canonical, tyA)
	require.True(t, ok)
	assert.Equal(t, "{α <: A}", cached.String())

	// the same query on another variable is answered from the same entry
	size := a.cache.size()
	f, err = a.SubtypeNormal(ivar(9), tyA)
	require.NoError(t, err)
	assert.Equal(t, "{$9 <: A}", f.String())
	assert.Equal(t, size, a.cache.size())
}
