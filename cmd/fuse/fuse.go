package fuse

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/projecteru2/yafuse/cmd/run"
	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "fuse",
		Usage: "fuse checks, reports and burns",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "evaluate a requirement on one fuse",
				ArgsUsage: "NAME SPEC",
				Action:    run.Run(check),
			},
			{
				Name:   "desired",
				Usage:  "print the register write plan of a SKU",
				Flags:  planFlags(),
				Action: run.Run(desired),
			},
			{
				Name:   "info",
				Usage:  "report the fuses of a SKU",
				Flags:  infoFlags(),
				Action: run.Run(info),
			},
			{
				Name:  "burn",
				Usage: "burn a SKU into the device",
				Flags: append(planFlags(), &cli.BoolFlag{
					Name:  "yes",
					Usage: "confirm the irreversible write",
				}),
				Action: run.Run(burn),
			},
		},
	}
}

func planFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sku",
			Usage: "SKU to plan, empty plans the overrides alone",
		},
		&cli.StringSliceFlag{
			Name:  "override",
			Usage: "NAME=VALUE[:merge|full], repeatable",
		},
	}
}

func infoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "sku",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "which",
			Usage: "all, good or bad",
			Value: "all",
		},
		&cli.StringFlag{
			Name:  "attr",
			Usage: "comma separated attributes to report",
			Value: "all",
		},
	}
}

func check(c *cli.Context, runtime run.Runtime) error {
	if c.NArg() != 2 {
		return errors.Wrap(terrors.ErrBadParameter, "NAME and SPEC are required")
	}
	name, spec := c.Args().Get(0), c.Args().Get(1)

	res, err := runtime.Device.CheckFuse(c.Context, name, spec)
	if err != nil {
		return err
	}
	if !res.Matched {
		fmt.Printf("%s: %s does not match %s\n", name, utils.Hex(res.Actual), spec)
		return cli.Exit("", 2)
	}
	fmt.Printf("%s: %s matches %s\n", name, utils.Hex(res.Actual), spec)
	return nil
}

// applyOverrides layers the command line overrides over the configured ones.
func applyOverrides(c *cli.Context, runtime run.Runtime) error {
	var opts = runtime.Device.Options()
	opts.Overrides = maps.Clone(opts.Overrides)
	if opts.Overrides == nil {
		opts.Overrides = map[string]fuse.Override{}
	}
	for _, s := range c.StringSlice("override") {
		ov, err := fuse.ParseOverride(s)
		if err != nil {
			return err
		}
		opts.Overrides[ov.Fuse] = ov
	}
	runtime.Device.SetOptions(opts)
	return nil
}

func desired(c *cli.Context, runtime run.Runtime) error {
	if err := applyOverrides(c, runtime); err != nil {
		return err
	}
	words, err := runtime.Device.GetDesiredFuses(c.Context, c.String("sku"))
	if err != nil {
		return err
	}
	for i, w := range words {
		fmt.Printf("%4d  0x%08x\n", i, w)
	}
	fmt.Printf("%s words, %s\n", humanize.Comma(int64(len(words))), humanize.IBytes(uint64(len(words)*4)))
	return nil
}

func info(c *cli.Context, runtime run.Runtime) error {
	which, err := fuse.ParseWhich(c.String("which"))
	if err != nil {
		return err
	}
	mask, err := fuse.ParseAttrMask(c.String("attr"))
	if err != nil {
		return err
	}

	infos, err := runtime.Device.GetFusesInfo(c.Context, c.String("sku"), which, mask)
	if err != nil {
		return err
	}

	var w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FUSE\tATTRIBUTE\tACTUAL\tEXPECTED\tOK\tREASON")
	var bad int
	for _, fi := range infos {
		if !fi.Matched {
			bad++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n", fi.Name, fi.Attribute, utils.Hex(fi.Actual), fi.Expected, fi.Matched, fi.Reason)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush report")
	}
	fmt.Printf("%s fuses reported, %s bad\n", humanize.Comma(int64(len(infos))), humanize.Comma(int64(bad)))
	return nil
}

func burn(c *cli.Context, runtime run.Runtime) error {
	if !c.Bool("yes") && !confirm(c.String("sku")) {
		return errors.Wrap(terrors.ErrBadParameter, "burning is irreversible, confirm with --yes")
	}
	if err := applyOverrides(c, runtime); err != nil {
		return err
	}

	res, err := runtime.Device.Burn(c.Context, c.String("sku"))
	if err != nil {
		return err
	}
	for _, e := range res.Plan.Entries {
		fmt.Printf("%-24s %s\n", e.Def.Name, utils.Hex(e.Value))
	}
	fmt.Printf("burned %s words\n", humanize.Comma(int64(len(res.Write.Words()))))
	return nil
}

// confirm asks on an interactive terminal only.
func confirm(sku string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Printf("burn SKU %q into the device? type yes: ", sku)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
