package sku

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/projecteru2/core/log"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/yafuse/cmd/run"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "sku",
		Usage: "SKU matching",
		Subcommands: []*cli.Command{
			{
				Name:   "match",
				Usage:  "list the SKUs the device matches",
				Action: run.Run(match),
			},
			{
				Name:   "watch",
				Usage:  "re-match the device on a schedule until interrupted",
				Flags:  watchFlags(),
				Action: run.Run(watch),
			},
		},
	}
}

func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "schedule",
			Usage: "cron spec",
			Value: "@every 10s",
		},
	}
}

func match(c *cli.Context, runtime run.Runtime) error {
	skus, err := runtime.Device.FindSkuMatch(c.Context)
	if err != nil {
		return err
	}
	if len(skus) < 1 {
		fmt.Println("no SKU matched")
		return nil
	}
	fmt.Println(strings.Join(skus, "\n"))
	return nil
}

func watch(c *cli.Context, runtime run.Runtime) error {
	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.WithFunc("watch").WithField("device", runtime.Device.ID())
	rematch := func() {
		skus, err := runtime.Device.FindSkuMatch(ctx)
		if err != nil {
			logger.Error(ctx, err, "match failed")
			return
		}
		logger.Infof(ctx, "device matches %v", skus)
	}

	sched := cron.New()
	if _, err := sched.AddFunc(c.String("schedule"), rematch); err != nil {
		return errors.Wrapf(err, "invalid schedule %q", c.String("schedule"))
	}
	rematch()
	sched.Start()

	<-ctx.Done()
	<-sched.Stop().Done()
	logger.Infof(ctx, "watch stopped")
	return nil
}
