package core

// pipeline.go drives a single upload through its state machine:
//
//	AwaitingInput -> HeaderPending -> Ingesting -> Accepted | Rejected
//
// Validation is local and synchronous. Rows are pulled from the tokenizer
// one by one; the first rejection returns from the loop, so no further
// input is read and nothing is forwarded. Only a fully validated batch is
// handed to the Dispatcher.

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Pipeline processes one upload. It is not reusable.
type Pipeline struct {
	state      State
	limiter    *RowLimiter
	dispatcher *Dispatcher
	notifier   *OutcomeNotifier
	logger     *slog.Logger

	batch   []ValidatedRecord
	outcome ForwardOutcome
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(limiter *RowLimiter, dispatcher *Dispatcher, notifier *OutcomeNotifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		state:      StateAwaitingInput,
		limiter:    limiter,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// State returns the current state.
func (p *Pipeline) State() State {
	return p.state
}

// Batch returns the records accepted so far.
func (p *Pipeline) Batch() []ValidatedRecord {
	return p.batch
}

// Outcome returns the forwarding result. It is the zero value until the
// batch has been forwarded.
func (p *Pipeline) Outcome() ForwardOutcome {
	return p.outcome
}

// Run consumes r and drives the pipeline to a terminal state.
// A nil error means the upload was accepted and every record reached the sink.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) error {
	if p.state != StateAwaitingInput {
		return errors.New("pipeline already run")
	}

	src := newRowReader(r)

	header, err := src.Header()
	if errors.Is(err, io.EOF) {
		return p.reject(&Error{Kind: KindEmptyData})
	}
	if err != nil {
		return p.reject(err)
	}

	p.transition(StateHeaderPending)
	if err := CheckHeader(header); err != nil {
		p.logger.Info("header mismatch", "header", header)
		return p.reject(err)
	}

	p.transition(StateIngesting)
	for {
		if err := ctx.Err(); err != nil {
			return p.reject(err)
		}

		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.reject(err)
		}

		if err := p.limiter.Check(); err != nil {
			return p.reject(err)
		}

		rec, err := ValidateRow(raw)
		if err != nil {
			return p.reject(err)
		}
		p.batch = append(p.batch, rec)
		p.limiter.Accept()
	}

	if len(p.batch) == 0 {
		return p.reject(&Error{Kind: KindEmptyData})
	}

	p.logger.Info("rows validated", "rows", len(p.batch))

	p.outcome = p.dispatcher.Forward(ctx, p.logger, p.batch)

	// The caller's response does not depend on delivery, and a client that
	// hangs up must not cancel the summary.
	_ = p.notifier.Notify(context.WithoutCancel(ctx), p.logger, p.outcome)

	if err := p.outcome.Err(); err != nil {
		return p.reject(err)
	}

	p.transition(StateAccepted)
	return nil
}

func (p *Pipeline) transition(next State) {
	p.logger.Debug("upload state", "from", p.state, "to", next)
	p.state = next
}

func (p *Pipeline) reject(err error) error {
	p.transition(StateRejected)
	p.logger.Info("upload rejected", "kind", KindOf(err).String(), "error", err)
	return err
}
