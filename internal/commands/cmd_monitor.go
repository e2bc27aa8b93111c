package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kode4food/courier/internal/pingpong"
	"github.com/kode4food/courier/internal/tui"
	"github.com/kode4food/courier/internal/viewmodel"
)

type MonitorCmd struct {
	flags      *Flags
	withDaemon bool
	altScreen  bool
}

// NewMonitorCmd creates a new monitor command
func NewMonitorCmd(flags *Flags) *MonitorCmd {
	return &MonitorCmd{flags: flags}
}

// Register adds the monitor command to the application
func (cmd *MonitorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "monitor",
		Usage:     "Show pings, pongs and connection status in a terminal UI",
		UsageText: "pingpong monitor [options]",
		Description: `Opens an interactive view of the responder.

Every ping is answered with a pong and logged, newest first. The status line
follows the number of writers on the ping topic. Press q to quit.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "with-daemon",
				Usage:       "run a daemon in-process to produce pings",
				Value:       true,
				Destination: &cmd.withDaemon,
			},
			&cli.BoolFlag{
				Name:        "alt-screen",
				Usage:       "use the terminal's alternate screen",
				Value:       true,
				Destination: &cmd.altScreen,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MonitorCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg, err := cmd.flags.validConfig()
	if err != nil {
		return err
	}

	reg, err := newRegistry(cfg, componentLogger("registry"))
	if err != nil {
		return err
	}
	defer reg.Close()

	model := viewmodel.New(cfg.HistoryLimit, nil)
	responder := pingpong.NewResponder(reg, cfg, log.Logger, model)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	if err := responder.Start(); err != nil {
		return err
	}
	defer responder.Close()

	if cmd.withDaemon {
		daemon := pingpong.NewDaemon(reg, cfg, log.Logger)
		g.Go(func() error {
			return daemon.Run(runCtx)
		})
	}

	var opts []tea.ProgramOption
	if cmd.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	g.Go(func() error {
		defer stop()
		return tui.Run(runCtx, model, "courier monitor", opts...)
	})
	return g.Wait()
}
