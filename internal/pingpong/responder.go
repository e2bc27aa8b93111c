package pingpong

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/internal/viewmodel"
	"github.com/kode4food/courier/topic"
)

// Responder bridges courier listeners to a view model. Every ping is logged
// and answered with a pong, and match changes on the ping topic drive the
// connection status
type Responder struct {
	registry  topic.Registry
	cfg       *config.Config
	log       zerolog.Logger
	model     *viewmodel.Model
	endpoints *endpoints
}

// NewResponder creates a Responder that reports into model
func NewResponder(
	reg topic.Registry, cfg *config.Config, log zerolog.Logger,
	model *viewmodel.Model,
) *Responder {
	return &Responder{
		registry: reg,
		cfg:      cfg,
		log:      log.With().Str("component", "responder").Logger(),
		model:    model,
	}
}

// Start opens the Responder's handles and registers its listener. A failure
// is also reported through the view model
func (r *Responder) Start() error {
	ep, err := open(r.registry, r.cfg.Topics.Pong, r.cfg.Topics.Ping)
	if err != nil {
		r.model.Failed(err)
		return err
	}
	err = ep.reader.SetListener(topic.Listener{
		DataAvailable: r.pingsAvailable(ep.writer),
		MatchChanged:  r.matchChanged,
	})
	if err != nil {
		ep.Close()
		r.model.Failed(err)
		return err
	}
	r.endpoints = ep
	r.model.Started()
	r.log.Info().Str("ping", r.cfg.Topics.Ping).Msg("responder started")
	return nil
}

// Run starts the Responder and closes it once the Context is done
func (r *Responder) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Close()
	<-ctx.Done()
	return nil
}

// Close releases the Responder's handles. It is safe to call more than once
func (r *Responder) Close() {
	if r.endpoints != nil {
		r.endpoints.Close()
	}
}

func (r *Responder) pingsAvailable(w topic.Writer) func(topic.Reader) {
	return func(rd topic.Reader) {
		msgs, err := rd.Take()
		if err != nil {
			return
		}
		for _, m := range msgs {
			r.model.Logf("Received Ping (%d) from %s", m.Sequence, m.SenderID)
			if err := w.Publish(r.cfg.Senders.Responder, m.Sequence); err != nil {
				r.log.Error().Err(err).Int64("seq", m.Sequence).Msg("send pong")
				r.model.Logf("[Error] Failed to send Pong: %s", err)
				continue
			}
			r.model.Logf("Sent Pong (%d) back", m.Sequence)
		}
	}
}

func (r *Responder) matchChanged(_ topic.Reader, s topic.MatchStatus) {
	r.log.Info().
		Int("writers", s.Current).
		Int("delta", s.Delta).
		Msg("ping writers changed")
	r.model.SetWriters(s.Current)
}
