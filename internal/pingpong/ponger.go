package pingpong

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic"
)

// Ponger blocks on a WaitSet without a timeout and answers every ping with a
// pong carrying the same sequence number
type Ponger struct {
	registry topic.Registry
	cfg      *config.Config
	log      zerolog.Logger
	ready    chan struct{}

	// OnPing, if set, is called for every ping after its pong is published
	OnPing func(message.Message)
}

// NewPonger creates a Ponger that listens on the ping topic and replies on the
// pong topic
func NewPonger(
	reg topic.Registry, cfg *config.Config, log zerolog.Logger,
) *Ponger {
	return &Ponger{
		registry: reg,
		cfg:      cfg,
		log:      log.With().Str("component", "ponger").Logger(),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run has opened its handles, after which no ping is
// missed
func (p *Ponger) Ready() <-chan struct{} {
	return p.ready
}

// Run answers pings until the Context is done
func (p *Ponger) Run(ctx context.Context) error {
	ep, err := open(p.registry, p.cfg.Topics.Pong, p.cfg.Topics.Ping)
	if err != nil {
		return err
	}
	defer ep.Close()
	ws, err := ep.waitSet()
	if err != nil {
		return err
	}
	defer ws.Close()
	close(p.ready)

	p.log.Info().Str("ping", p.cfg.Topics.Ping).Msg("ponger waiting for ping")
	for {
		_, err := ws.WaitContext(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("wait for ping: %w", err)
		}

		msgs, err := ep.reader.Take()
		if err != nil {
			return fmt.Errorf("take ping: %w", err)
		}
		for _, m := range msgs {
			if err := p.reply(ep.writer, m); err != nil {
				return err
			}
		}
	}
}

func (p *Ponger) reply(w topic.Writer, ping message.Message) error {
	p.log.Info().
		Str("sender", ping.SenderID).
		Int64("seq", ping.Sequence).
		Msg("received ping")
	if err := w.Publish(p.cfg.Senders.Ponger, ping.Sequence); err != nil {
		return fmt.Errorf("publish pong %d: %w", ping.Sequence, err)
	}
	p.log.Info().Int64("seq", ping.Sequence).Msg("sent pong")
	if p.OnPing != nil {
		p.OnPing(ping)
	}
	return nil
}
