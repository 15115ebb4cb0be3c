package vkr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, "abc\x00", safeString("abc"))
	assert.Equal(t, "abc\x00", safeString("abc\x00"))
}

func TestSafeStrings(t *testing.T) {
	in := []string{"a", "b\x00", ""}
	out := safeStrings(in)
	assert.Equal(t, []string{"a\x00", "b\x00", "\x00"}, out)
	// The input is left alone.
	assert.Equal(t, []string{"a", "b\x00", ""}, in)
}

func TestSliceUint32(t *testing.T) {
	data := []byte{0x01, 0x00, 0x00, 0x00, 0xff, 0x00, 0x00, 0x00}
	words := sliceUint32(data)
	assert.Len(t, words, 2)
	assert.Equal(t, uint32(1), words[0])
	assert.Equal(t, uint32(255), words[1])
}
