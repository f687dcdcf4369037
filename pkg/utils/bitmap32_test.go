package utils

import (
	"testing"

	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func TestBitmap32Fields(t *testing.T) {
	bm := NewBitmap32Words(make([]uint32, 2))

	assert.Nil(t, bm.OrField(1, 7, 4, 0x5))
	assert.Nil(t, bm.OrField(1, 7, 4, 0x2))
	v, err := bm.Field(1, 7, 4)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x7), v)

	assert.Nil(t, bm.PutField(1, 7, 4, 0x1))
	v, err = bm.Field(1, 7, 4)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x1), v)

	assert.Err(t, bm.OrField(2, 0, 0, 1))
	assert.Err(t, bm.OrField(0, 32, 0, 1))
	assert.Err(t, bm.OrField(0, 1, 2, 1))
}
