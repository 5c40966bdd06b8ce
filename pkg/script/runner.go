package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ib-77/intbag/pkg/bag"
	"github.com/ib-77/intbag/pkg/rop"
	"github.com/ib-77/intbag/pkg/rop/solo"
)

const tracerName = "github.com/ib-77/intbag/pkg/script"

// Outcome is what a successful step observed.
type Outcome struct {
	Index int
	Op    Op
	Bag   string
	// Value is the count, size or grabbed element.
	Value int
	// Found is the result of remove.
	Found bool
	// Size is the size of the step's bag after the step.
	Size     int
	Contents string
}

// Runner executes scripts against its own set of named bags. Bags survive
// between Run calls on the same Runner.
type Runner struct {
	bags         map[string]*bag.Bag
	rng          bag.Source
	logger       *slog.Logger
	tracer       trace.Tracer
	breakOnError bool
}

type RunnerOption func(*Runner)

// WithSource sets the random source shared by every bag the runner creates.
func WithSource(src bag.Source) RunnerOption {
	return func(r *Runner) {
		if src != nil {
			r.rng = src
		}
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithBreakOnError stops executing steps after the first failure; the rest
// are reported as ErrSkipped.
func WithBreakOnError(breakOnError bool) RunnerOption {
	return func(r *Runner) {
		r.breakOnError = breakOnError
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		bags:   make(map[string]*bag.Bag),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = bag.NewSeededRand(0)
	}
	return r
}

// Bag returns the named bag, if a step created it.
func (r *Runner) Bag(name string) (*bag.Bag, bool) {
	b, ok := r.bags[name]
	return b, ok
}

// Run executes the steps of s in order. Once ctx is done, the remaining steps
// are reported as cancelled without touching any bag.
func (r *Runner) Run(ctx context.Context, s *Script) *Report {
	ctx, span := r.tracer.Start(ctx, "script.run", trace.WithAttributes(
		attribute.String("script.name", s.Name),
		attribute.Int("script.steps", len(s.Steps)),
	))
	defer span.End()

	report := &Report{
		Name:    s.Name,
		Steps:   s.Steps,
		Results: make([]rop.Result[Outcome], 0, len(s.Steps)),
	}

	failed := false
	for i, st := range s.Steps {
		index := i + 1

		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, solo.Cancel[Outcome](fmt.Errorf("step %d: %w", index, err)))
			continue
		}
		if failed && r.breakOnError {
			report.Results = append(report.Results, solo.Fail[Outcome](fmt.Errorf("step %d: %w", index, ErrSkipped)))
			continue
		}

		res := r.runStep(ctx, index, st)
		if res.IsFailure() {
			failed = true
		}
		report.Results = append(report.Results, res)
	}

	if err := report.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "script failed")
	}
	r.logger.Info("script finished", "script", s.Name,
		"steps", len(s.Steps), "succeeded", report.Succeeded(), "failed", report.Failed(), "cancelled", report.Cancelled())

	return report
}

func (r *Runner) runStep(ctx context.Context, index int, st Step) rop.Result[Outcome] {
	ctx, span := r.tracer.Start(ctx, "script.step", trace.WithAttributes(
		attribute.Int("step.index", index),
		attribute.String("step.op", string(st.Op)),
		attribute.String("step.bag", st.Bag),
	))
	defer span.End()

	validated := solo.Validate(ctx, st, func(_ context.Context, st Step) error {
		return st.Validate()
	})
	applied := solo.Switch(ctx, validated, func(ctx context.Context, st Step) rop.Result[Outcome] {
		return r.applyStep(ctx, index, st)
	})
	checked := solo.FailOnError(ctx, applied, func(_ context.Context, o Outcome) error {
		return st.check(o)
	})

	if checked.IsFailure() {
		checked = rop.FailWith(checked.Result(),
			fmt.Errorf("step %d (%s %s): %w", index, st.Op, st.Bag, checked.Err()))
	}

	checked = solo.Tee(ctx, checked, func(_ context.Context, res rop.Result[Outcome]) {
		span.SetAttributes(
			attribute.Int("bag.size", res.Result().Size),
			attribute.String("step.result_id", res.Id().String()),
		)
	})

	return solo.DoubleTee(ctx, checked,
		func(_ context.Context, o Outcome) {
			r.logger.Debug("step done", "index", index, "op", st.Op, "bag", st.Bag,
				"value", o.Value, "found", o.Found, "size", o.Size)
		},
		func(_ context.Context, err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "step failed")
			r.logger.Warn("step failed", "index", index, "op", st.Op, "bag", st.Bag, "error", err)
		},
		func(_ context.Context, err error) {
			r.logger.Info("step cancelled", "index", index, "error", err)
		})
}

// applyStep runs a validated step unless ctx is already done.
func (r *Runner) applyStep(ctx context.Context, index int, st Step) rop.Result[Outcome] {
	if err := ctx.Err(); err != nil {
		return solo.Cancel[Outcome](fmt.Errorf("step %d: %w", index, err))
	}
	return solo.Try(ctx, solo.Succeed(st), func(_ context.Context, st Step) (Outcome, error) {
		return r.apply(index, st)
	})
}

func (r *Runner) apply(index int, st Step) (Outcome, error) {
	out := Outcome{Index: index, Op: st.Op, Bag: st.Bag}

	var target *bag.Bag
	switch st.Op {
	case OpAdd:
		target = r.bagOrNew(st.Bag)
		if st.Value != nil {
			target.Add(*st.Value)
		}
		for _, v := range st.Values {
			target.Add(v)
		}

	case OpAddAll:
		src, err := r.lookup(st.From[0])
		if err != nil {
			return out, err
		}
		target = r.bagOrNew(st.Bag)
		if err := target.AddAll(src); err != nil {
			return out, err
		}

	case OpClone:
		src, err := r.lookup(st.From[0])
		if err != nil {
			return out, err
		}
		target = src.Clone()
		r.bags[st.Bag] = target

	case OpUnion:
		b1, err := r.lookup(st.From[0])
		if err != nil {
			return out, err
		}
		b2, err := r.lookup(st.From[1])
		if err != nil {
			return out, err
		}
		target, err = bag.Union(b1, b2, bag.WithRand(r.rng))
		if err != nil {
			return out, err
		}
		r.bags[st.Bag] = target

	default:
		b, err := r.lookup(st.Bag)
		if err != nil {
			return out, err
		}
		target = b

		switch st.Op {
		case OpCount:
			out.Value = target.CountOccurrences(*st.Value)
		case OpGrab:
			v, err := target.Grab()
			if err != nil {
				return out, err
			}
			out.Value = v
		case OpRemove:
			out.Found = target.Remove(*st.Value)
		case OpSize:
			out.Value = target.Size()
		case OpShow:
			out.Contents = target.String()
		default:
			return out, fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
		}
	}

	out.Size = target.Size()
	return out, nil
}

func (r *Runner) lookup(name string) (*bag.Bag, error) {
	b, ok := r.bags[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBag, name)
	}
	return b, nil
}

func (r *Runner) bagOrNew(name string) *bag.Bag {
	b, ok := r.bags[name]
	if !ok {
		b = bag.New(bag.WithRand(r.rng))
		r.bags[name] = b
	}
	return b
}
