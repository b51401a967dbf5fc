package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestWipeAll(t *testing.T) {
	a := []byte("temp-password")
	b := []byte("123456")
	WipeAll(a, nil, b)

	for _, v := range append(a, b...) {
		if v != 0 {
			t.Fatalf("expected all zero bytes, got %v / %v", a, b)
		}
	}
}

func TestSessionKeys_AreDistinct(t *testing.T) {
	seen := map[string]struct{}{}
	for _, k := range SessionKeys {
		_, dup := seen[k]
		assert.False(t, dup, "duplicate key %q", k)
		seen[k] = struct{}{}
	}
	assert.Len(t, seen, 4)
	assert.NotContains(t, SessionKeys, LastEmailKey)
}
