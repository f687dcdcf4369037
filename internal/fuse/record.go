package fuse

import (
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// RecordType is a bit set; RecordUndoRIR may be layered onto RecordWrite.
type RecordType uint32

// Record types.
const (
	RecordWrite   RecordType = 0x1
	RecordRIR     RecordType = 0x2
	RecordUndoRIR RecordType = 0x4
)

const (
	recordWords   = 2
	maxRecordWord = 1<<18 - 1
)

// Record is one entry of the fuseless log. Name is informational only.
type Record struct {
	Type  RecordType
	Name  string
	Loc   Location
	Value uint32
}

// Header encodes type[31:28] hi[27:23] lo[22:18] word[17:0].
func (r Record) Header() (uint32, error) {
	if r.Loc.Word < 0 || r.Loc.Word > maxRecordWord || !r.Loc.valid() {
		return 0, errors.Wrapf(terrors.ErrBadParameter, "record %s has unencodable location %+v", r.Name, r.Loc)
	}
	if r.Type == 0 || r.Type > 0xf {
		return 0, errors.Wrapf(terrors.ErrBadParameter, "record %s has invalid type %#x", r.Name, r.Type)
	}
	var h uint32
	h = utils.SetField(h, 31, 28, uint32(r.Type))
	h = utils.SetField(h, 27, 23, uint32(r.Loc.Hi))
	h = utils.SetField(h, 22, 18, uint32(r.Loc.Lo))
	h = utils.SetField(h, 17, 0, uint32(r.Loc.Word))
	return h, nil
}

// EncodeRecords serializes the log, two words per record.
func EncodeRecords(records []Record) ([]uint32, error) {
	var words = make([]uint32, 0, len(records)*recordWords)
	for _, r := range records {
		h, err := r.Header()
		if err != nil {
			return nil, err
		}
		if r.Value&^r.Loc.Mask() != 0 {
			return nil, errors.Wrapf(terrors.ErrFuseValueOutOfRange, "record %s value %s exceeds [%d:%d]",
				r.Name, utils.Hex(r.Value), r.Loc.Hi, r.Loc.Lo)
		}
		words = append(words, h, r.Value)
	}
	return words, nil
}

// DecodeRecords parses a serialized log.
func DecodeRecords(words []uint32) ([]Record, error) {
	if len(words)%recordWords != 0 {
		return nil, errors.Wrapf(terrors.ErrSoftwareError, "record log has odd length %d", len(words))
	}
	var records = make([]Record, 0, len(words)/recordWords)
	for i := 0; i < len(words); i += recordWords {
		h := words[i]
		r := Record{
			Type: RecordType(utils.GetField(h, 31, 28)),
			Loc: Location{
				Word: int(utils.GetField(h, 17, 0)),
				Hi:   uint(utils.GetField(h, 27, 23)),
				Lo:   uint(utils.GetField(h, 22, 18)),
			},
			Value: words[i+1],
		}
		if r.Type == 0 || !r.Loc.valid() {
			return nil, errors.Wrapf(terrors.ErrSoftwareError, "corrupted record header %s at %d", utils.Hex(h), i)
		}
		records = append(records, r)
	}
	return records, nil
}

// Has .
func (t RecordType) Has(o RecordType) bool {
	return t&o == o
}
