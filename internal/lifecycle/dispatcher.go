// Package lifecycle maps a declared target state onto the Transfer CFT
// operation that reaches it.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/logger"
	"github.com/cftops/cftctl/internal/outcome"
	"go.uber.org/zap"
)

// Dispatcher runs one request against a Transfer CFT server. It holds no
// state between runs.
type Dispatcher struct {
	client    *cft.Client
	checkMode bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCheckMode makes the dispatcher perform its read-only pre-checks and
// report the change it would make, without issuing the mutating call.
func WithCheckMode(check bool) Option {
	return func(d *Dispatcher) {
		d.checkMode = check
	}
}

// New returns a dispatcher driving client.
func New(client *cft.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{client: client}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run validates req and performs the transition to req.State. At most two
// calls are made: an optional read-only pre-check, then one mutating call.
func (d *Dispatcher) Run(ctx context.Context, req Request) (outcome.Outcome, error) {
	if err := req.Validate(); err != nil {
		return outcome.Outcome{}, err
	}
	lgr := logger.FromContext(ctx).With(zap.Stringer("state", req.State))
	ctx = logger.WithLogger(ctx, lgr)

	switch req.State {
	case Present:
		return d.present(ctx, req)
	case Absent:
		return d.absent(ctx, req)
	case Halted:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Halt(ctx, req.IDTU) })
	case Kept:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Keep(ctx, req.IDTU) })
	case Started:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Start(ctx, req.IDTU) })
	case Resumed:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Resume(ctx, req.IDTU) })
	case Submitted:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Submit(ctx, req.IDTU) })
	case Acknowledged:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Ack(ctx, req.IDTU, req.IDM, req.Msg) })
	case Nacknowledged:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.Nack(ctx, req.IDTU, req.IDM, req.Msg) })
	case Ended:
		return d.mutate(ctx, func() (outcome.Outcome, error) { return d.client.End(ctx, req.IDTU) })
	}
	return outcome.Outcome{}, fmt.Errorf("unhandled state %q", req.State)
}

func (d *Dispatcher) present(ctx context.Context, req Request) (outcome.Outcome, error) {
	lgr := logger.FromContext(ctx)
	if req.IDA != "" {
		existing, err := d.client.Transfers(ctx, cft.TransferFilter{IDA: req.IDA})
		if err != nil && !errors.Is(err, outcome.ErrNotFound) {
			return outcome.Outcome{}, err
		}
		if len(existing) > 0 {
			lgr.Info("transfer already exists", zap.String("ida", req.IDA), zap.String("idtu", existing[0].IDTU()))
			return outcome.Outcome{Changed: false, Body: existing[0]}, nil
		}
	}

	if d.checkMode {
		lgr.Info("check mode, skipping creation")
		return outcome.Outcome{Changed: true}, nil
	}
	var (
		out outcome.Outcome
		err error
	)
	if req.Msg != "" {
		out, err = d.client.CreateMessageTransfer(ctx, cft.MessageRequest{
			Partner:    req.Partner,
			IDM:        req.IDM,
			Message:    req.Msg,
			APITimeout: req.APITimeout,
			IDA:        req.IDA,
		})
	} else {
		out, err = d.client.CreateFileTransfer(ctx, cft.FileRequest{
			Direction:  req.Direction,
			Partner:    req.Partner,
			IDF:        req.IDF,
			APITimeout: req.APITimeout,
			IDA:        req.IDA,
			Filename:   req.Filename,
			Parm:       req.Parm,
		})
	}
	if err != nil {
		return outcome.Outcome{}, err
	}
	out.Changed = true
	return out, nil
}

func (d *Dispatcher) absent(ctx context.Context, req Request) (outcome.Outcome, error) {
	lgr := logger.FromContext(ctx)
	existing, err := d.client.Transfer(ctx, req.IDTU)
	if errors.Is(err, outcome.ErrNotFound) {
		lgr.Info("transfer already absent", zap.String("idtu", req.IDTU))
		return outcome.Outcome{Changed: false}, nil
	}
	if err != nil {
		return outcome.Outcome{}, err
	}
	if len(existing) == 0 {
		lgr.Info("transfer reported empty, nothing to delete", zap.String("idtu", req.IDTU))
		return outcome.Outcome{Changed: false}, nil
	}
	if d.checkMode {
		lgr.Info("check mode, skipping deletion", zap.String("idtu", req.IDTU))
		return outcome.Outcome{Changed: true, Body: existing}, nil
	}
	out, err := d.client.Delete(ctx, req.IDTU)
	if err != nil {
		return outcome.Outcome{}, err
	}
	out.Changed = true
	return out, nil
}

// mutate runs call unless in check mode. The server decides whether the
// action is valid for the transfer's current phase.
func (d *Dispatcher) mutate(ctx context.Context, call func() (outcome.Outcome, error)) (outcome.Outcome, error) {
	if d.checkMode {
		logger.FromContext(ctx).Info("check mode, skipping action")
		return outcome.Outcome{Changed: true}, nil
	}
	return call()
}
