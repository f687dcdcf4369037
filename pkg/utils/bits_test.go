package utils

import (
	"testing"

	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func TestFieldMask(t *testing.T) {
	assert.Equal(t, uint32(0x1), FieldMask(0, 0))
	assert.Equal(t, uint32(0xf), FieldMask(7, 4))
	assert.Equal(t, uint32(0xffffffff), FieldMask(31, 0))
	assert.Equal(t, uint32(0), FieldMask(2, 3))
}

func TestGetSetField(t *testing.T) {
	var word uint32 = 0xa5a5a5a5
	assert.Equal(t, uint32(0x5), GetField(word, 3, 0))
	assert.Equal(t, uint32(0xa), GetField(word, 7, 4))

	word = SetField(word, 7, 4, 0x3)
	assert.Equal(t, uint32(0xa5a5a535), word)

	// oversize values are truncated to the field
	word = SetField(word, 3, 0, 0x1f)
	assert.Equal(t, uint32(0xa5a5a53f), word)

	assert.Equal(t, uint32(0xdeadbeef), SetField(0, 31, 0, 0xdeadbeef))
}

func TestCovers(t *testing.T) {
	assert.True(t, Covers(0x1, 0x3))
	assert.True(t, Covers(0, 0x8))
	assert.True(t, Covers(0x5, 0x5))
	assert.False(t, Covers(0x2, 0x1))
	assert.False(t, Covers(0x3, 0x1))
	assert.Equal(t, 3, PopCount(0x70))
}
