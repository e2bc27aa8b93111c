package pingpong

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic"
)

// Daemon publishes a ping every interval and receives pongs asynchronously
// through a data listener
type Daemon struct {
	registry topic.Registry
	cfg      *config.Config
	log      zerolog.Logger

	// OnPong, if set, is called on the dispatcher for every pong
	OnPong func(message.Message)
}

// NewDaemon creates a Daemon that publishes on the ping topic and listens on
// the pong topic
func NewDaemon(
	reg topic.Registry, cfg *config.Config, log zerolog.Logger,
) *Daemon {
	return &Daemon{
		registry: reg,
		cfg:      cfg,
		log:      log.With().Str("component", "daemon").Logger(),
	}
}

// Run pings until the Context is done. When a number of rounds is configured
// it stops one interval after the last ping, leaving time for its pong
func (d *Daemon) Run(ctx context.Context) error {
	ep, err := open(d.registry, d.cfg.Topics.Ping, d.cfg.Topics.Pong)
	if err != nil {
		return err
	}
	defer ep.Close()
	if err := ep.reader.OnData(d.pong); err != nil {
		return fmt.Errorf("register pong listener: %w", err)
	}

	d.log.Info().
		Str("ping", d.cfg.Topics.Ping).
		Str("pong", d.cfg.Topics.Pong).
		Dur("interval", d.cfg.Interval).
		Msg("daemon started")

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	for seq := int64(1); d.cfg.Rounds == 0 || seq <= int64(d.cfg.Rounds); seq++ {
		if err := ep.writer.Publish(d.cfg.Senders.Daemon, seq); err != nil {
			return fmt.Errorf("publish ping %d: %w", seq, err)
		}
		d.log.Info().Int64("seq", seq).Msg("sent ping")

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

func (d *Daemon) pong(m message.Message) {
	d.log.Info().
		Str("sender", m.SenderID).
		Int64("seq", m.Sequence).
		Msg("received pong")
	if d.OnPong != nil {
		d.OnPong(m)
	}
}
