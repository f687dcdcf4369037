package hw

import (
	"bytes"
	"context"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/projecteru2/core/log"
	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// fileImage is the on-disk state of an emulated device.
type fileImage struct {
	// Raw is the physical fuse array.
	Raw []uint32 `toml:"raw"`
	// Opt is the OPT shadow as last sensed.
	Opt []uint32 `toml:"opt"`
	// OptMirrorsRaw copies Raw[:len(Opt)] into Opt after every burn.
	OptMirrorsRaw bool `toml:"opt_mirrors_raw"`
	// Iff holds the live IFF rows in replay order.
	Iff []uint32 `toml:"iff"`
	// Records is the fuseless record log, two words per record.
	Records []uint32 `toml:"records"`
}

// FileHardware emulates a device on top of a TOML file. Fuse words are write
// once, fuseless records are replayed over RAW at sensing time.
type FileHardware struct {
	mu   sync.Mutex
	path string
	size int
}

var (
	_ Hardware  = (*FileHardware)(nil)
	_ IffReader = (*FileHardware)(nil)
)

// OpenFile .
func OpenFile(path string) (*FileHardware, error) {
	var h = &FileHardware{path: path}
	img, err := h.load()
	if err != nil {
		return nil, err
	}
	if len(img.Raw) < 1 {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "%s has an empty fuse array", path)
	}
	h.size = len(img.Raw)
	return h, nil
}

// Size .
func (h *FileHardware) Size() int {
	return h.size
}

// Refresh .
func (h *FileHardware) Refresh(ctx context.Context) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	img, err := h.load()
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := replay(img.Raw, img.Records)
	if err != nil {
		return Snapshot{}, err
	}
	log.WithFunc("hw.Refresh").Debugf(ctx, "sensed %d RAW words, %d OPT words from %s", len(raw), len(img.Opt), h.path)
	return Snapshot{Raw: raw, Opt: slices.Clone(img.Opt)}, nil
}

// LiveIffRows .
func (h *FileHardware) LiveIffRows(_ context.Context) ([]uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	img, err := h.load()
	if err != nil {
		return nil, err
	}
	return slices.Clone(img.Iff), nil
}

// Burn ORs the column words into the array, appends the records to the log
// and queues the IFF rows ahead of the live ones.
func (h *FileHardware) Burn(ctx context.Context, plan fuse.WritePlan) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	img, err := h.load()
	if err != nil {
		return err
	}
	if len(plan.Column) != len(img.Raw) {
		return errors.Wrapf(terrors.ErrBadParameter, "column plan has %d words, the array %d", len(plan.Column), len(img.Raw))
	}
	if _, err := fuse.DecodeRecords(plan.Records); err != nil {
		return errors.Wrap(err, "record plan")
	}

	for i, word := range plan.Column {
		img.Raw[i] |= word
	}
	if img.OptMirrorsRaw {
		copy(img.Opt, img.Raw)
	}
	img.Records = append(img.Records, plan.Records...)
	img.Iff = append(lo.Reverse(slices.Clone(plan.Iff)), img.Iff...)

	if err := h.save(img); err != nil {
		return err
	}
	log.WithFunc("hw.Burn").Infof(ctx, "burned %d column words, %d record words, %d IFF rows into %s",
		len(plan.Column), len(plan.Records), len(plan.Iff), h.path)
	return nil
}

func (h *FileHardware) load() (*fileImage, error) {
	var img fileImage
	if _, err := toml.DecodeFile(h.path, &img); err != nil {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "load device image %s: %s", h.path, err)
	}
	return &img, nil
}

func (h *FileHardware) save(img *fileImage) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(img); err != nil {
		return errors.Wrap(err, "encode device image")
	}
	return errors.Wrapf(os.WriteFile(h.path, buf.Bytes(), 0600), "save device image %s", h.path)
}

// replay realizes the record log over a copy of raw. Later records win.
func replay(raw, logWords []uint32) ([]uint32, error) {
	records, err := fuse.DecodeRecords(logWords)
	if err != nil {
		return nil, err
	}

	var sensed = slices.Clone(raw)
	var bm = utils.NewBitmap32Words(sensed)
	for _, r := range records {
		if !r.Type.Has(fuse.RecordWrite) && !r.Type.Has(fuse.RecordRIR) {
			continue
		}
		if err := bm.PutField(r.Loc.Word, r.Loc.Hi, r.Loc.Lo, r.Value); err != nil {
			return nil, errors.Wrapf(terrors.ErrSoftwareError, "replay record at word %d: %s", r.Loc.Word, err)
		}
	}
	return sensed, nil
}
