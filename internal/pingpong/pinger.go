package pingpong

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/message"
	"github.com/kode4food/courier/topic"
)

type (
	// Pinger publishes a numbered ping every interval and blocks on a WaitSet
	// until a pong arrives or the pong timeout elapses
	Pinger struct {
		registry topic.Registry
		cfg      *config.Config
		log      zerolog.Logger

		// OnRound, if set, is called after every round
		OnRound func(Round)
	}

	// Round is the outcome of one ping
	Round struct {
		Pongs    []message.Message
		Sequence int64
		TimedOut bool
	}
)

// NewPinger creates a Pinger that publishes on the ping topic and listens on
// the pong topic
func NewPinger(
	reg topic.Registry, cfg *config.Config, log zerolog.Logger,
) *Pinger {
	return &Pinger{
		registry: reg,
		cfg:      cfg,
		log:      log.With().Str("component", "pinger").Logger(),
	}
}

// Run pings until the configured number of rounds completes or the Context
// is done. Cancellation is not an error
func (p *Pinger) Run(ctx context.Context) error {
	ep, err := open(p.registry, p.cfg.Topics.Ping, p.cfg.Topics.Pong)
	if err != nil {
		return err
	}
	defer ep.Close()
	ws, err := ep.waitSet()
	if err != nil {
		return err
	}
	defer ws.Close()

	p.log.Info().
		Str("ping", p.cfg.Topics.Ping).
		Str("pong", p.cfg.Topics.Pong).
		Msg("pinger started")

	for seq := int64(1); ; seq++ {
		res, err := p.round(ctx, ep, ws, seq)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if p.OnRound != nil {
			p.OnRound(res)
		}
		if p.cfg.Rounds > 0 && seq >= int64(p.cfg.Rounds) {
			return nil
		}
		if !sleep(ctx, p.cfg.Interval) {
			return nil
		}
	}
}

func (p *Pinger) round(
	ctx context.Context, ep *endpoints, ws topic.WaitSet, seq int64,
) (Round, error) {
	res := Round{Sequence: seq}
	if err := ep.writer.Publish(p.cfg.Senders.Pinger, seq); err != nil {
		return res, fmt.Errorf("publish ping %d: %w", seq, err)
	}
	p.log.Info().Int64("seq", seq).Msg("sent ping")

	wctx, cancel := context.WithTimeout(ctx, p.cfg.PongTimeout)
	defer cancel()
	active, err := ws.WaitContext(wctx)
	switch {
	case ctx.Err() != nil:
		return res, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded), err == nil && len(active) == 0:
		res.TimedOut = true
		p.log.Warn().
			Int64("seq", seq).
			Dur("timeout", p.cfg.PongTimeout).
			Msg("pong not received")
		return res, nil
	case err != nil:
		return res, fmt.Errorf("wait for pong %d: %w", seq, err)
	}

	msgs, err := ep.reader.Take()
	if err != nil {
		return res, fmt.Errorf("take pong %d: %w", seq, err)
	}
	for _, m := range msgs {
		p.log.Info().
			Str("sender", m.SenderID).
			Int64("seq", m.Sequence).
			Msg("received pong")
	}
	res.Pongs = msgs
	return res, nil
}
