package device

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yafuse/cmd/run"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "device",
		Usage: "configured devices",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list the devices and the SKUs each one matches",
				Action: run.Run(list),
			},
		},
	}
}

func list(c *cli.Context, runtime run.Runtime) error {
	var w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tSELECTED\tSKUS")
	for _, id := range runtime.Devices.IDs() {
		dev, err := runtime.Devices.Get(id)
		if err != nil {
			return err
		}

		var matched string
		switch skus, err := dev.FindSkuMatch(c.Context); {
		case err != nil:
			return errors.Wrapf(err, "device %s", id)
		case len(skus) < 1:
			matched = "-"
		default:
			matched = strings.Join(skus, ",")
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", id, dev == runtime.Device, matched)
	}
	return errors.Wrap(w.Flush(), "flush devices")
}
