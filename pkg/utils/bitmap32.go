package utils

import (
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
)

const bitsPerSection = 32

// Bitmap32 is a flat array of 32-bit words addressed by (word, hi, lo) field.
type Bitmap32 struct {
	Slices []uint32 `json:"slices"`
	Count  int      `json:"total_count"`
}

// NewBitmap32Words wraps words (not copied) as a bitmap.
func NewBitmap32Words(words []uint32) *Bitmap32 {
	return &Bitmap32{
		Slices: words,
		Count:  len(words) * bitsPerSection,
	}
}

// Field reads bits [hi:lo] of the word-th section.
func (b *Bitmap32) Field(word int, hi, lo uint) (uint32, error) {
	if err := b.checkField(word, hi, lo); err != nil {
		return 0, err
	}
	return GetField(b.Slices[word], hi, lo), nil
}

// OrField ORs val into bits [hi:lo] of the word-th section.
// Bits are never cleared.
func (b *Bitmap32) OrField(word int, hi, lo uint, val uint32) error {
	if err := b.checkField(word, hi, lo); err != nil {
		return err
	}
	b.Slices[word] |= (val & FieldMask(hi, lo)) << lo
	return nil
}

// PutField replaces bits [hi:lo] of the word-th section with val.
func (b *Bitmap32) PutField(word int, hi, lo uint, val uint32) error {
	if err := b.checkField(word, hi, lo); err != nil {
		return err
	}
	b.Slices[word] = SetField(b.Slices[word], hi, lo, val)
	return nil
}

func (b *Bitmap32) checkField(word int, hi, lo uint) error {
	switch {
	case word < 0 || word >= len(b.Slices):
		return errors.Wrapf(terrors.ErrInvalidValue,
			"word at most %d, but %d", len(b.Slices)-1, word)
	case hi < lo || hi >= bitsPerSection:
		return errors.Wrapf(terrors.ErrInvalidValue, "invalid field [%d:%d]", hi, lo)
	}
	return nil
}
