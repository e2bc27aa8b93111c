package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kode4food/courier/internal/pingpong"
)

type RunCmd struct {
	flags    *Flags
	rounds   int
	interval string
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run a pinger and a ponger against each other",
		UsageText: "pingpong run [options]",
		Description: `Runs both wait set driven applications in one process.

The pinger publishes a numbered ping every interval and waits for a pong
with a timeout. The ponger waits without a timeout and answers every ping
with a pong carrying the same sequence number.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "rounds",
				Aliases:     []string{"n"},
				Usage:       "number of pings to send (0 = until interrupted)",
				Value:       -1,
				Destination: &cmd.rounds,
			},
			&cli.StringFlag{
				Name:        "interval",
				Usage:       "time between pings, overrides the config file (e.g. 500ms)",
				Destination: &cmd.interval,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg, err := cmd.flags.validConfig()
	if err != nil {
		return err
	}
	if cmd.rounds >= 0 {
		cfg.Rounds = cmd.rounds
	}
	if cmd.interval != "" {
		d, err := time.ParseDuration(cmd.interval)
		if err != nil {
			return cli.Exit("invalid --interval: "+err.Error(), 1)
		}
		cfg.Interval = d
	}

	reg, err := newRegistry(cfg, componentLogger("registry"))
	if err != nil {
		return err
	}
	defer reg.Close()

	var (
		ponger = pingpong.NewPonger(reg, cfg, log.Logger)
		pinger = pingpong.NewPinger(reg, cfg, log.Logger)
	)
	var timeouts int
	pinger.OnRound = func(r pingpong.Round) {
		if r.TimedOut {
			timeouts++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	pongCtx, stopPonger := context.WithCancel(gctx)
	defer stopPonger()

	g.Go(func() error {
		return ponger.Run(pongCtx)
	})
	g.Go(func() error {
		defer stopPonger()
		select {
		case <-ponger.Ready():
		case <-gctx.Done():
			return nil
		}
		return pinger.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Int("timeouts", timeouts).Msg("run complete")
	return nil
}
