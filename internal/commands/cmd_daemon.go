package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kode4food/courier/internal/pingpong"
	"github.com/kode4food/courier/internal/viewmodel"
)

type DaemonCmd struct {
	flags         *Flags
	rounds        int
	withResponder bool
}

// NewDaemonCmd creates a new daemon command
func NewDaemonCmd(flags *Flags) *DaemonCmd {
	return &DaemonCmd{flags: flags}
}

// Register adds the daemon command to the application
func (cmd *DaemonCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "daemon",
		Usage:     "Ping periodically and receive pongs through a listener",
		UsageText: "pingpong daemon [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "rounds",
				Aliases:     []string{"n"},
				Usage:       "number of pings to send (0 = until interrupted)",
				Value:       -1,
				Destination: &cmd.rounds,
			},
			&cli.BoolFlag{
				Name:        "with-responder",
				Usage:       "answer pings in-process and log the responder's view",
				Value:       true,
				Destination: &cmd.withResponder,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DaemonCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg, err := cmd.flags.validConfig()
	if err != nil {
		return err
	}
	if cmd.rounds >= 0 {
		cfg.Rounds = cmd.rounds
	}

	reg, err := newRegistry(cfg, componentLogger("registry"))
	if err != nil {
		return err
	}
	defer reg.Close()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	if cmd.withResponder {
		model := viewmodel.New(cfg.HistoryLimit, nil)
		defer model.Subscribe(logNewest(model))()

		responder := pingpong.NewResponder(reg, cfg, log.Logger, model)
		if err := responder.Start(); err != nil {
			return err
		}
		defer responder.Close()
	}

	daemon := pingpong.NewDaemon(reg, cfg, log.Logger)
	g.Go(func() error {
		defer stop()
		return daemon.Run(runCtx)
	})
	return g.Wait()
}

// logNewest returns an observer that logs the newest view model entry
func logNewest(model *viewmodel.Model) func() {
	logger := componentLogger("view")
	return func() {
		msgs := model.Messages()
		if len(msgs) == 0 {
			return
		}
		logger.Debug().Str("status", model.Status()).Msg(msgs[0])
	}
}
