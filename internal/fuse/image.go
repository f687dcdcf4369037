package fuse

import (
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// RegisterImage is one synchronous snapshot of a device's RAW fuse array and
// its OPT shadow registers.
type RegisterImage struct {
	raw *utils.Bitmap32
	opt *utils.Bitmap32
}

// NewRegisterImage copies raw and opt into a new image.
func NewRegisterImage(raw, opt []uint32) *RegisterImage {
	return &RegisterImage{
		raw: utils.NewBitmap32Words(append([]uint32(nil), raw...)),
		opt: utils.NewBitmap32Words(append([]uint32(nil), opt...)),
	}
}

// Raw returns a copy of the RAW words.
func (img *RegisterImage) Raw() []uint32 {
	return append([]uint32(nil), img.raw.Slices...)
}

// Opt returns a copy of the OPT words.
func (img *RegisterImage) Opt() []uint32 {
	return append([]uint32(nil), img.opt.Slices...)
}

// ExtractFuseVal reads the RAW value of def. The redundant copy, when present,
// is ORed into the primary one since both are sensed together.
func (img *RegisterImage) ExtractFuseVal(def *FuseDef) (uint32, error) {
	if img == nil {
		return 0, terrors.ErrImageNotCaptured
	}
	if def.Kind == KindPseudo {
		return img.extractPseudo(def, img.ExtractFuseVal)
	}

	val, err := img.raw.Field(def.Primary.Word, def.Primary.Hi, def.Primary.Lo)
	if err != nil {
		return 0, errors.Wrapf(err, "fuse %s", def.Name)
	}
	if def.Redundant != nil {
		red, err := img.raw.Field(def.Redundant.Word, def.Redundant.Hi, def.Redundant.Lo)
		if err != nil {
			return 0, errors.Wrapf(err, "fuse %s redundant copy", def.Name)
		}
		val |= red
	}
	return val, nil
}

// ExtractOptFuseVal reads the OPT shadow of def. Fuses without an OPT copy read
// their RAW value.
func (img *RegisterImage) ExtractOptFuseVal(def *FuseDef) (uint32, error) {
	if img == nil {
		return 0, terrors.ErrImageNotCaptured
	}
	switch {
	case def.Kind == KindPseudo:
		return img.extractPseudo(def, img.ExtractOptFuseVal)
	case def.Opt == nil:
		return img.ExtractFuseVal(def)
	}

	val, err := img.opt.Field(def.Opt.Word, def.Opt.Hi, def.Opt.Lo)
	return val, errors.Wrapf(err, "fuse %s OPT copy", def.Name)
}

func (img *RegisterImage) extractPseudo(def *FuseDef, extract func(*FuseDef) (uint32, error)) (uint32, error) {
	var values = make(map[string]uint32, len(def.Subs))
	for _, sub := range def.Subs {
		val, err := extract(sub.Def)
		if err != nil {
			return 0, errors.Wrapf(err, "pseudo fuse %s", def.Name)
		}
		values[sub.Def.Name] = val
	}

	var master uint32
	FuseCompose(FieldMap(def), values, &master)
	return master, nil
}
