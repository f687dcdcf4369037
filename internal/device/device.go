package device

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	"github.com/projecteru2/core/log"
	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/internal/hw"
	"github.com/projecteru2/yafuse/internal/metrics"
	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// CatalogSource hands out the memoized catalog.
type CatalogSource interface {
	Get() (*fuse.Catalog, error)
}

// CatalogFunc adapts a plain function to CatalogSource.
type CatalogFunc func() (*fuse.Catalog, error)

// Get .
func (f CatalogFunc) Get() (*fuse.Catalog, error) {
	return f()
}

// Config .
type Config struct {
	ID       string
	Hardware hw.Hardware
	// Iff is optional; a device without it reports no live IFF rows.
	Iff             hw.IffReader
	Catalog         CatalogSource
	Options         fuse.Options
	RefreshRetries  int
	RefreshInterval time.Duration
}

// Device serializes every refresh, evaluation, plan and write of one part.
type Device struct {
	mu  sync.Mutex
	cfg Config
}

// New .
func New(cfg Config) (*Device, error) {
	if cfg.Hardware == nil || cfg.Catalog == nil {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "device %s needs hardware and a catalog", cfg.ID)
	}
	return &Device{cfg: cfg}, nil
}

// ID .
func (d *Device) ID() string {
	return d.cfg.ID
}

// Options .
func (d *Device) Options() fuse.Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.Options
}

// SetOptions replaces the planning options used by later calls.
func (d *Device) SetOptions(opts fuse.Options) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg.Options = opts
}

// FindSkuMatch lists the SKUs the part currently satisfies.
func (d *Device) FindSkuMatch(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	logger := log.WithFunc("device.FindSkuMatch").WithField("device", d.cfg.ID)
	cat, img, live, err := d.capture(ctx)
	if err != nil {
		return nil, d.fail(ctx, err, "capture device state")
	}

	skus, err := fuse.FindSkuMatch(cat, img, live, d.cfg.Options)
	if err != nil {
		return nil, d.fail(ctx, err, "match SKUs")
	}
	for _, sku := range skus {
		metrics.Incr(metrics.MetricSkuMatchCount, map[string]string{"sku": sku}) //nolint
	}
	logger.Infof(ctx, "matched SKUs %v", skus)
	return skus, nil
}

// CheckFuse evaluates an ad-hoc requirement on one fuse.
func (d *Device) CheckFuse(ctx context.Context, name, spec string) (fuse.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var result = "error"
	defer func() {
		metrics.Incr(metrics.MetricFuseCheckCount, map[string]string{"result": result}) //nolint
	}()

	cat, err := d.cfg.Catalog.Get()
	if err != nil {
		return fuse.Result{}, d.fail(ctx, err, "load catalog")
	}
	img, err := d.refresh(ctx)
	if err != nil {
		return fuse.Result{}, d.fail(ctx, err, "refresh")
	}

	res, err := fuse.CheckFuse(cat, img, name, spec, d.cfg.Options)
	if err != nil {
		return res, d.fail(ctx, err, "check fuse %s", name)
	}
	result = lo.Ternary(res.Matched, "match", "mismatch")
	return res, nil
}

// GetDesiredFuses returns the full register write plan of sku: column words,
// then fuseless records, then IFF rows. Nothing is written.
func (d *Device) GetDesiredFuses(ctx context.Context, sku string) ([]uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	plan, wp, err := d.plan(ctx, sku)
	if err != nil {
		return nil, err
	}
	var words = wp.Words()
	metrics.Store(metrics.MetricPlanWords, float64(len(words)), map[string]string{"sku": sku}) //nolint
	log.WithFunc("device.GetDesiredFuses").WithField("device", d.cfg.ID).
		Infof(ctx, "SKU %q needs %d fuse entries, %d words", sku, len(plan.Entries), len(words))
	return words, nil
}

// GetFusesInfo reports the requirements of sku selected by which and mask.
func (d *Device) GetFusesInfo(ctx context.Context, sku string, which fuse.Which, mask fuse.AttrMask) ([]fuse.FuseInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cat, err := d.cfg.Catalog.Get()
	if err != nil {
		return nil, d.fail(ctx, err, "load catalog")
	}
	img, err := d.refresh(ctx)
	if err != nil {
		return nil, d.fail(ctx, err, "refresh")
	}
	infos, err := fuse.GetFusesInfo(cat, img, sku, which, mask, d.cfg.Options)
	if err != nil {
		return nil, d.fail(ctx, err, "report SKU %q", sku)
	}
	return infos, nil
}

// BurnResult .
type BurnResult struct {
	// ID tags the log lines of one burn.
	ID    string
	Plan  *fuse.BurnPlan
	Write fuse.WritePlan
}

// Burn plans sku, commits the plan and verifies the part matches afterwards.
// The plan is complete before anything is written. A failed write is never
// retried.
func (d *Device) Burn(ctx context.Context, sku string) (*BurnResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := utils.UUIDStr()
	if err != nil {
		return nil, d.fail(ctx, err, "burn SKU %q", sku)
	}
	logger := log.WithFunc("device.Burn").WithField("device", d.cfg.ID).WithField("sku", sku).WithField("burn", id)
	plan, wp, err := d.plan(ctx, sku)
	if err != nil {
		return nil, err
	}

	live, err := d.liveIffRows(ctx)
	if err != nil {
		return nil, d.fail(ctx, err, "burn SKU %q", sku)
	}
	if slices.Equal(lo.Reverse(slices.Clone(live)), wp.Iff) {
		// already replayed by the part
		wp.Iff = nil
	}

	logger.Infof(ctx, "burning %d column words, %d record words, %d IFF rows", len(wp.Column), len(wp.Records), len(wp.Iff))
	if err := d.cfg.Hardware.Burn(ctx, wp); err != nil {
		return nil, d.fail(ctx, err, "burn SKU %q", sku)
	}
	metrics.Incr(metrics.MetricBurnCount, map[string]string{"sku": sku}) //nolint

	if err := d.verify(ctx, sku); err != nil {
		return nil, d.fail(ctx, err, "verify SKU %q", sku)
	}
	logger.Infof(ctx, "burned")
	return &BurnResult{ID: id, Plan: plan, Write: wp}, nil
}

func (d *Device) verify(ctx context.Context, sku string) error {
	if len(sku) < 1 {
		return nil
	}
	cat, img, live, err := d.capture(ctx)
	if err != nil {
		return err
	}
	skus, err := fuse.FindSkuMatch(cat, img, live, d.cfg.Options)
	if err != nil {
		return err
	}
	if !lo.Contains(skus, sku) {
		return errors.Wrapf(terrors.ErrFuseValueOutOfRange, "part matches %v after burn", skus)
	}
	return nil
}

func (d *Device) plan(ctx context.Context, sku string) (*fuse.BurnPlan, fuse.WritePlan, error) {
	logger := log.WithFunc("device.plan").WithField("device", d.cfg.ID).WithField("sku", sku)

	cat, err := d.cfg.Catalog.Get()
	if err != nil {
		return nil, fuse.WritePlan{}, d.fail(ctx, err, "load catalog")
	}
	img, err := d.refresh(ctx)
	if err != nil {
		return nil, fuse.WritePlan{}, d.fail(ctx, err, "refresh")
	}

	plan, err := fuse.Plan(cat, img, sku, d.cfg.Options)
	if err != nil {
		var fe *fuse.FuseError
		if errors.As(err, &fe) {
			metrics.Incr(metrics.MetricPlanFailureCount, map[string]string{"fuse": fe.Fuse}) //nolint
		}
		return nil, fuse.WritePlan{}, d.fail(ctx, err, "plan SKU %q", sku)
	}
	logger.Debugf(ctx, "plan %# v", pretty.Formatter(plan.Entries))

	var iff []uint32
	if len(sku) > 0 {
		cfg, _ := cat.Sku(sku)
		iff = cfg.IffRows
	}
	var size = cat.Info.FuseArraySize
	if size < 1 {
		size = d.cfg.Hardware.Size()
	}
	wp, err := fuse.AssemblePlan(plan, size, iff)
	if err != nil {
		return nil, wp, d.fail(ctx, err, "assemble SKU %q", sku)
	}
	return plan, wp, nil
}

// capture loads the catalog and takes a fresh snapshot with the live IFF rows.
func (d *Device) capture(ctx context.Context) (*fuse.Catalog, *fuse.RegisterImage, []uint32, error) {
	cat, err := d.cfg.Catalog.Get()
	if err != nil {
		return nil, nil, nil, err
	}
	img, err := d.refresh(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	live, err := d.liveIffRows(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return cat, img, live, nil
}

// refresh senses the part, retrying transient failures. Sensing has no side
// effects, burning is never retried here.
func (d *Device) refresh(ctx context.Context) (*fuse.RegisterImage, error) {
	logger := log.WithFunc("device.refresh").WithField("device", d.cfg.ID)

	var snap hw.Snapshot
	bf := backoff.WithMaxRetries(backoff.NewConstantBackOff(d.cfg.RefreshInterval), uint64(d.cfg.RefreshRetries))
	err := backoff.Retry(func() (err error) {
		if snap, err = d.cfg.Hardware.Refresh(ctx); err != nil {
			logger.Warnf(ctx, "refresh failed: %s", err)
		}
		return err
	}, backoff.WithContext(bf, ctx))
	if err != nil {
		return nil, errors.Wrap(err, "refresh")
	}
	return snap.Image(), nil
}

func (d *Device) liveIffRows(ctx context.Context) ([]uint32, error) {
	if d.cfg.Iff == nil {
		return nil, nil
	}
	rows, err := d.cfg.Iff.LiveIffRows(ctx)
	return rows, errors.Wrap(err, "read live IFF rows")
}

func (d *Device) fail(ctx context.Context, err error, format string, args ...any) error {
	metrics.IncrError()
	err = errors.Wrapf(err, format, args...)
	log.WithFunc("device").WithField("device", d.cfg.ID).Errorf(ctx, err, "device failed")
	return err
}
