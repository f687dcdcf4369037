package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/test/assert"
)

const sample = `
log_level = "debug"
device_id = "gpu0"

[catalog]
file = "/etc/yafuse/tu0.xml"
cache_ttl = "1h"

[hardware]
image_file = "/var/lib/yafuse/gpu0.toml"
refresh_retries = 5
refresh_interval = "50ms"

[hardware.images]
gpu1 = "/var/lib/yafuse/gpu1.toml"

[planner]
undo_enabled = true
ignore_fuses = ["FUSE_FS"]
rir_fuses = ["FUSE_A"]
rir_disable_fuses = ["FUSE_B"]

[planner.priority]
FUSE_FS = [7, 5]

[[planner.overrides]]
fuse = "FUSE_A"
value = 0x2

[[planner.overrides]]
fuse = "FUSE_LESS"
value = 5
mode = "full"
`

func TestDefaults(t *testing.T) {
	var conf = New()
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, "0", conf.DeviceID)
	assert.Equal(t, 3, conf.Hardware.RefreshRetries)
	assert.Equal(t, 10*time.Minute, conf.Catalog.CacheTTL.Duration())
	assert.Equal(t, 200*time.Millisecond, conf.Hardware.RefreshInterval.Duration())
	assert.NilErr(t, conf.Check())
}

func TestDecode(t *testing.T) {
	var conf = New()
	assert.NilErr(t, Decode(sample, conf))
	assert.NilErr(t, conf.Check())

	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "gpu0", conf.DeviceID)
	assert.Equal(t, time.Hour, conf.Catalog.CacheTTL.Duration())
	assert.Equal(t, 50*time.Millisecond, conf.Hardware.RefreshInterval.Duration())
	assert.Equal(t, 5, conf.Hardware.RefreshRetries)

	images, err := conf.Hardware.DeviceImages(conf.DeviceID)
	assert.NilErr(t, err)
	assert.Equal(t, map[string]string{
		"gpu0": "/var/lib/yafuse/gpu0.toml",
		"gpu1": "/var/lib/yafuse/gpu1.toml",
	}, images)

	opts, err := conf.Planner.Options()
	assert.NilErr(t, err)
	assert.True(t, opts.UndoEnabled)
	assert.True(t, opts.IsIgnored("FUSE_FS"))
	assert.True(t, opts.IsRIR("FUSE_A"))
	assert.True(t, opts.IsRIRDisable("FUSE_B"))
	assert.Equal(t, []uint{7, 5}, opts.Priority["FUSE_FS"])

	ov, ok := opts.Override("FUSE_A")
	assert.True(t, ok)
	assert.Equal(t, fuse.Override{Fuse: "FUSE_A", Value: 0x2, Mode: fuse.MergeWithFloorsweepDefault}, *ov)
	ov, ok = opts.Override("FUSE_LESS")
	assert.True(t, ok)
	assert.Equal(t, fuse.FullOverride, ov.Mode)
}

func TestCheckFailed(t *testing.T) {
	for name, raw := range map[string]string{
		"level":   `log_level = "loud"`,
		"format":  "[catalog]\nformat = \"json\"",
		"retries": "[hardware]\nrefresh_retries = 99",
		"device":  `device_id = ""`,
		"mode":    "[[planner.overrides]]\nfuse = \"A\"\nmode = \"partial\"",
		"fuse":    "[[planner.overrides]]\nvalue = 1",
	} {
		var conf = New()
		assert.NilErr(t, Decode(raw, conf))
		assert.True(t, conf.Check() != nil, name)
	}

	var pc = PlannerConfig{Overrides: []OverrideConfig{{Fuse: "A", Mode: "partial"}}}
	_, err := pc.Options()
	assert.True(t, terrors.IsBadParameterErr(err))
}

func TestLoadAndDump(t *testing.T) {
	var dir = t.TempDir()
	var base = filepath.Join(dir, "base.toml")
	var local = filepath.Join(dir, "local.toml")
	assert.NilErr(t, os.WriteFile(base, []byte(sample), 0600))
	assert.NilErr(t, os.WriteFile(local, []byte("log_level = \"warn\"\n[hardware]\nrefresh_retries = 1\n"), 0600))

	var conf = New()
	assert.NilErr(t, conf.Load([]string{base, local}))
	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, 1, conf.Hardware.RefreshRetries)
	assert.Equal(t, "/etc/yafuse/tu0.xml", conf.Catalog.File)

	dumped, err := conf.Dump()
	assert.NilErr(t, err)
	var again = New()
	assert.NilErr(t, Decode(dumped, again))
	assert.Equal(t, conf, again)

	assert.Err(t, conf.Load([]string{filepath.Join(dir, "missing.toml")}))
}

func TestDuration(t *testing.T) {
	for text, exp := range map[string]time.Duration{
		"1h":     time.Hour,
		" 90m ":  90 * time.Minute,
		"200ms":  200 * time.Millisecond,
		"30":     30 * time.Second,
		"1h0m5s": time.Hour + 5*time.Second,
	} {
		var d Duration
		assert.NilErr(t, d.UnmarshalText([]byte(text)))
		assert.Equal(t, exp, d.Duration(), text)
	}

	for _, text := range []string{"-1s", "soon", ""} {
		var d Duration
		assert.ErrIs(t, d.UnmarshalText([]byte(text)), terrors.ErrBadParameter)
	}

	for d, exp := range map[Duration]string{
		0:                                 "0s",
		Duration(time.Hour):               "1h",
		Duration(90 * time.Minute):        "1h30m",
		Duration(time.Minute):             "1m",
		Duration(200 * time.Millisecond):  "200ms",
		Duration(time.Hour + time.Second): "1h0m1s",
	} {
		text, err := d.MarshalText()
		assert.NilErr(t, err)
		assert.Equal(t, exp, string(text))
	}
}

func TestDeviceImagesFailed(t *testing.T) {
	var hc = HardwareConfig{ImageFile: "a.toml", Images: map[string]string{"0": "b.toml"}}
	_, err := hc.DeviceImages("0")
	assert.ErrIs(t, err, terrors.ErrBadParameter)

	hc = HardwareConfig{Images: map[string]string{"1": ""}}
	_, err = hc.DeviceImages("0")
	assert.ErrIs(t, err, terrors.ErrBadParameter)

	hc = HardwareConfig{}
	images, err := hc.DeviceImages("0")
	assert.NilErr(t, err)
	assert.Len(t, images, 0)
}
