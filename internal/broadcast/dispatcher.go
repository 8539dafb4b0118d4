// Package broadcast fans one rendered message out to every recipient and
// collects a per-recipient outcome.
package broadcast

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sungwon/newsletter/internal/logger"
	"github.com/sungwon/newsletter/internal/mail"
	"github.com/sungwon/newsletter/internal/metrics"
)

// DefaultConcurrency bounds in-flight deliveries when Options leaves it unset.
const DefaultConcurrency = 16

// Options tunes the fan-out.
type Options struct {
	// Concurrency caps simultaneous sends. Zero or negative means one
	// goroutine per recipient.
	Concurrency int
	// DeliveryTimeout bounds each send. Zero disables the timeout.
	DeliveryTimeout time.Duration
}

// Dispatcher submits one message per recipient through a mail transport.
type Dispatcher struct {
	transport mail.Transport
	opts      Options
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher over transport.
func NewDispatcher(transport mail.Transport, opts Options, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		opts:      opts,
		log:       log,
	}
}

// Broadcast sends subject and body to every recipient exactly once and
// returns after all sends settle. Outcomes are in recipient order. A failed
// send is recorded in its Outcome and never stops its siblings.
//
// Sends run on a context detached from ctx's cancellation, so a caller that
// goes away mid-broadcast does not abort deliveries already underway.
func (d *Dispatcher) Broadcast(ctx context.Context, recipients []string, subject, body string) []Outcome {
	outcomes := make([]Outcome, len(recipients))
	metrics.BroadcastRecipients.Observe(float64(len(recipients)))
	if len(recipients) == 0 {
		return outcomes
	}

	log := logger.FromContextOr(ctx, d.log)
	base := context.WithoutCancel(ctx)

	limit := d.opts.Concurrency
	if limit <= 0 {
		limit = -1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	start := time.Now()
	for i, addr := range recipients {
		g.Go(func() error {
			outcomes[i] = d.deliver(base, log, addr, subject, body)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded {
			failed++
		}
	}
	log.Info().
		Str("transport", d.transport.Name()).
		Int("recipients", len(recipients)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("broadcast complete")
	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, log zerolog.Logger, addr, subject, body string) Outcome {
	if d.opts.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.DeliveryTimeout)
		defer cancel()
	}

	metrics.BroadcastInFlight.Inc()
	start := time.Now()
	err := d.transport.Send(ctx, &mail.Message{
		To:       addr,
		Subject:  subject,
		HTMLBody: body,
	})
	metrics.BroadcastDeliveryDuration.Observe(time.Since(start).Seconds())
	metrics.BroadcastInFlight.Dec()

	if err != nil {
		metrics.BroadcastDeliveriesTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).
			Str("recipient", addr).
			Bool("permanent", mail.IsPermanent(err)).
			Msg("delivery failed")
		return Outcome{Address: addr, Err: err}
	}

	metrics.BroadcastDeliveriesTotal.WithLabelValues("sent").Inc()
	log.Debug().Str("recipient", addr).Msg("delivery sent")
	return Outcome{Address: addr, Succeeded: true}
}
