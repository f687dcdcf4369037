package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yafuse/cmd/catalog"
	"github.com/projecteru2/yafuse/cmd/config"
	"github.com/projecteru2/yafuse/cmd/device"
	"github.com/projecteru2/yafuse/cmd/fuse"
	"github.com/projecteru2/yafuse/cmd/sku"
	"github.com/projecteru2/yafuse/internal/ver"
)

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(ver.Version())
	}

	app := &cli.App{
		Name:  ver.NAME,
		Usage: "check, plan and burn fuses of MODS devices",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "config",
				Usage: "config files, later ones override earlier ones",
			},
			&cli.StringFlag{
				Name:  "device",
				Usage: "device image file, overrides hardware.image_file",
			},
			&cli.StringFlag{
				Name:  "device-id",
				Usage: "device to operate on, overrides device_id",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "fuse catalog file, overrides catalog.file",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on this address",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level",
			},
		},

		Commands: []*cli.Command{
			device.Command(),
			sku.Command(),
			fuse.Command(),
			catalog.Command(),
			config.Command(),
		},

		Version: ver.VERSION,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", errors.WithStack(err))
		os.Exit(1)
	}
}
