package configs

import (
	"time"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mcuadros/go-defaults"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Conf .
var Conf = New()

// Config .
type Config struct {
	LogLevel    string `toml:"log_level" default:"info" enum:"debug,info,warn,error"`
	LogFile     string `toml:"log_file"`
	LogJSON     bool   `toml:"log_json"`
	MetricsAddr string `toml:"metrics_addr"`
	DeviceID    string `toml:"device_id" default:"0" range:"1-64"`

	Catalog  CatalogConfig  `toml:"catalog"`
	Hardware HardwareConfig `toml:"hardware"`
	Planner  PlannerConfig  `toml:"planner"`
}

// CatalogConfig .
type CatalogConfig struct {
	File string `toml:"file"`
	// Format is guessed from the file extension when empty.
	Format   string   `toml:"format" enum:",xml,toml"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// HardwareConfig .
type HardwareConfig struct {
	ImageFile       string            `toml:"image_file"`
	Images          map[string]string `toml:"images,omitempty"` // further device IDs to image files
	RefreshRetries  int               `toml:"refresh_retries" default:"3" range:"0-16"`
	RefreshInterval Duration          `toml:"refresh_interval"`
}

// PlannerConfig .
type PlannerConfig struct {
	UndoEnabled     bool              `toml:"undo_enabled"`
	IgnoreFuses     []string          `toml:"ignore_fuses"`
	RIRFuses        []string          `toml:"rir_fuses"`
	RIRDisableFuses []string          `toml:"rir_disable_fuses"`
	Priority        map[string][]uint `toml:"priority"`
	Overrides       []OverrideConfig  `toml:"overrides"`
}

// OverrideConfig .
type OverrideConfig struct {
	Fuse  string `toml:"fuse"`
	Value uint32 `toml:"value"`
	Mode  string `toml:"mode" enum:",merge,full"`
}

// New returns a config filled with defaults.
func New() *Config {
	var conf = &Config{}
	defaults.SetDefaults(conf)
	conf.Catalog.CacheTTL = Duration(10 * time.Minute)
	conf.Hardware.RefreshInterval = Duration(200 * time.Millisecond)
	return conf
}

// Dump .
func (c *Config) Dump() (string, error) {
	return Encode(c)
}

// Load layers files over c in order.
func (c *Config) Load(files []string) error {
	for _, path := range files {
		if err := DecodeFile(path, c); err != nil {
			return err
		}
	}
	return c.Check()
}

// Check .
func (c *Config) Check() error {
	for _, field := range []string{
		"LogLevel",
		"DeviceID",
		"Catalog.Format",
		"Hardware.RefreshRetries",
	} {
		if err := newChecker(c, field).check(); err != nil {
			return errors.Wrapf(err, "config %s", field)
		}
	}
	for i := range c.Planner.Overrides {
		ov := &c.Planner.Overrides[i]
		if len(ov.Fuse) < 1 {
			return errors.Errorf("config planner.overrides[%d] has no fuse", i)
		}
		if err := newChecker(ov, "Mode").check(); err != nil {
			return errors.Wrapf(err, "config planner.overrides[%d]", i)
		}
	}
	return nil
}

// DeviceImages returns every configured device image keyed by device ID,
// the image_file belonging to defaultID.
func (c *HardwareConfig) DeviceImages(defaultID string) (map[string]string, error) {
	var images = make(map[string]string, len(c.Images)+1)
	for id, file := range c.Images {
		if len(id) < 1 || len(file) < 1 {
			return nil, errors.Wrapf(terrors.ErrBadParameter, "device %q has no image", id)
		}
		images[id] = file
	}
	if len(c.ImageFile) > 0 {
		if file, ok := images[defaultID]; ok && file != c.ImageFile {
			return nil, errors.Wrapf(terrors.ErrBadParameter, "device %s has two images", defaultID)
		}
		images[defaultID] = c.ImageFile
	}
	return images, nil
}

// Options converts the planner section into planning options.
func (c *PlannerConfig) Options() (fuse.Options, error) {
	var opts = fuse.NewOptions()
	opts.UndoEnabled = c.UndoEnabled
	opts.Ignore = mapset.NewSet(c.IgnoreFuses...)
	opts.RIR = mapset.NewSet(c.RIRFuses...)
	opts.RIRDisable = mapset.NewSet(c.RIRDisableFuses...)
	for name, bits := range c.Priority {
		opts.Priority[name] = append([]uint(nil), bits...)
	}
	for _, oc := range c.Overrides {
		mode, err := fuse.ParseOverrideMode(oc.Mode)
		if err != nil {
			return opts, errors.Wrapf(err, "override of %s", oc.Fuse)
		}
		opts.Overrides[oc.Fuse] = fuse.Override{Fuse: oc.Fuse, Value: oc.Value, Mode: mode}
	}
	return opts, nil
}
