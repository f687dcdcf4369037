package run

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/projecteru2/core/log"
	coretypes "github.com/projecteru2/core/types"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yafuse/configs"
	"github.com/projecteru2/yafuse/internal/catalog"
	"github.com/projecteru2/yafuse/internal/device"
	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/internal/hw"
	"github.com/projecteru2/yafuse/internal/metrics"
	"github.com/projecteru2/yafuse/pkg/terrors"
)

var runtime Runtime

// Runner .
type Runner func(*cli.Context, Runtime) error

// Runtime holds every configured device, Device being the one selected by device_id.
type Runtime struct {
	ConfigFiles []string
	Catalogs    *catalog.Registry
	Devices     *device.Registry
	Device      *device.Device
}

// Catalog returns the catalog the device plans against.
func (r Runtime) Catalog() (*fuse.Catalog, error) {
	return r.Catalogs.Get(configs.Conf.Catalog.File, configs.Conf.Catalog.Format)
}

// Run sets the device up before handing over to fn.
func Run(fn Runner) cli.ActionFunc {
	return func(c *cli.Context) error {
		runtime.ConfigFiles = c.StringSlice("config")
		if err := setup(c); err != nil {
			return errors.Wrap(err, "setup")
		}
		return fn(c, runtime)
	}
}

// RunConfig only loads the config files.
func RunConfig(fn Runner) cli.ActionFunc {
	return func(c *cli.Context) error {
		runtime.ConfigFiles = c.StringSlice("config")
		if err := loadConfig(c); err != nil {
			return err
		}
		return fn(c, runtime)
	}
}

func loadConfig(c *cli.Context) error {
	if err := configs.Conf.Load(runtime.ConfigFiles); err != nil {
		return err
	}
	if file := c.String("device"); len(file) > 0 {
		configs.Conf.Hardware.ImageFile = file
	}
	if id := c.String("device-id"); len(id) > 0 {
		configs.Conf.DeviceID = id
	}
	if file := c.String("catalog"); len(file) > 0 {
		configs.Conf.Catalog.File = file
	}
	if addr := c.String("metrics-addr"); len(addr) > 0 {
		configs.Conf.MetricsAddr = addr
	}
	if c.Bool("debug") {
		configs.Conf.LogLevel = "debug"
	}
	return nil
}

func setup(c *cli.Context) error {
	if err := loadConfig(c); err != nil {
		return err
	}
	var conf = configs.Conf

	if err := log.SetupLog(c.Context, &coretypes.ServerLogConfig{
		Level:    conf.LogLevel,
		UseJSON:  conf.LogJSON,
		Filename: conf.LogFile,
	}, ""); err != nil {
		return errors.Wrap(err, "setup log")
	}

	setupMetrics(c.Context, conf.MetricsAddr)

	if len(conf.Catalog.File) < 1 {
		return errors.Wrap(terrors.ErrBadParameter, "no catalog file configured")
	}
	runtime.Catalogs = catalog.NewRegistry(time.Duration(conf.Catalog.CacheTTL))

	opts, err := conf.Planner.Options()
	if err != nil {
		return err
	}
	if runtime.Devices, err = setupDevices(conf, opts); err != nil {
		return err
	}
	runtime.Device, err = runtime.Devices.Get(conf.DeviceID)
	return err
}

// setupDevices opens every configured image and registers its device.
func setupDevices(conf *configs.Config, opts fuse.Options) (*device.Registry, error) {
	images, err := conf.Hardware.DeviceImages(conf.DeviceID)
	if err != nil {
		return nil, err
	}
	if len(images) < 1 {
		return nil, errors.Wrap(terrors.ErrBadParameter, "no device image configured")
	}

	var devices = device.NewRegistry()
	for id, file := range images {
		h, err := hw.OpenFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "device %s", id)
		}
		dev, err := device.New(device.Config{
			ID:              id,
			Hardware:        h,
			Iff:             h,
			Catalog:         device.CatalogFunc(runtime.Catalog),
			Options:         opts,
			RefreshRetries:  conf.Hardware.RefreshRetries,
			RefreshInterval: time.Duration(conf.Hardware.RefreshInterval),
		})
		if err != nil {
			return nil, err
		}
		if err := devices.Add(dev); err != nil {
			return nil, err
		}
	}
	return devices, nil
}

func setupMetrics(ctx context.Context, addr string) {
	if len(addr) < 1 {
		return
	}
	host, _ := os.Hostname()
	metrics.Setup(host)

	var mux = http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil { //nolint
			log.WithFunc("setupMetrics").Error(ctx, err, "metrics server exited")
		}
	}()
}
