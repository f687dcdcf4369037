package config

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yafuse/cmd/run"
	"github.com/projecteru2/yafuse/configs"
	"github.com/projecteru2/yafuse/internal/ver"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "dump",
				Usage:  "print the effective configuration",
				Action: run.RunConfig(dump),
			},
			{
				Name:   "version",
				Action: func(*cli.Context) error { fmt.Print(ver.Version()); return nil },
			},
		},
	}
}

func dump(_ *cli.Context, _ run.Runtime) error {
	s, err := configs.Conf.Dump()
	if err != nil {
		return err
	}
	fmt.Print(s)
	return nil
}
