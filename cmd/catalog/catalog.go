package catalog

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yafuse/cmd/run"
	"github.com/projecteru2/yafuse/configs"
	"github.com/projecteru2/yafuse/internal/catalog"
	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "fuse catalogs",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "parse a catalog and summarize it",
				ArgsUsage: "[FILE]",
				Action:    run.RunConfig(show),
			},
		},
	}
}

func show(c *cli.Context, _ run.Runtime) error {
	var file, format = c.Args().First(), ""
	if len(file) < 1 {
		file, format = configs.Conf.Catalog.File, configs.Conf.Catalog.Format
	}
	if len(file) < 1 {
		return errors.Wrap(terrors.ErrBadParameter, "catalog file is required")
	}

	cat, err := catalog.NewLazyFile(file, format).Get()
	if err != nil {
		return err
	}

	fmt.Printf("chip %s revision %s, %d fuse words\n", cat.Info.Chip, cat.Info.Revision, cat.Info.FuseArraySize)
	var w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FUSE\tKIND\tWORD\tBITS")
	for _, name := range cat.FuseNames() {
		def := cat.Fuses[name]
		fmt.Fprintf(w, "%s\t%s\t%d\t[%d:%d]\n", name, def.Kind, def.Primary.Word, def.Primary.Hi, def.Primary.Lo)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush fuses")
	}

	for _, sku := range cat.Skus {
		fmt.Printf("SKU %s: %d requirements, %d IFF rows\n", sku.Name, len(sku.Requirements), len(sku.IffRows))
	}
	return nil
}
