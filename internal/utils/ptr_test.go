package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, 7, Deref(Ptr(7), 0))
	assert.Equal(t, "TBD", Deref[string](nil, "TBD"))
}

func TestClone(t *testing.T) {
	orig := Ptr(int64(3))
	c := Clone(orig)
	*orig = 4
	assert.Equal(t, int64(3), *c)
	assert.Nil(t, Clone[int64](nil))
}

func TestNonBlank(t *testing.T) {
	assert.Nil(t, NonBlank("   "))
	assert.Equal(t, "x", *NonBlank(" x "))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal[int64](nil, nil))
	assert.False(t, Equal(Ptr(int64(1)), nil))
	assert.True(t, Equal(Ptr(int64(1)), Ptr(int64(1))))
	assert.False(t, Equal(Ptr(int64(1)), Ptr(int64(2))))
}
