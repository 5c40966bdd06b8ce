package script

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ib-77/intbag/pkg/bag"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func newTestRunner(opts ...RunnerOption) *Runner {
	return NewRunner(append([]RunnerOption{WithSource(rand.New(rand.NewSource(1)))}, opts...)...)
}

func TestRunner_Demo(t *testing.T) {
	t.Parallel()

	r := newTestRunner()
	report := r.Run(context.Background(), Demo())

	require.NoError(t, report.Err())
	assert.Equal(t, len(report.Steps), report.Succeeded())
	assert.Zero(t, report.Failed())

	u, ok := r.Bag("u")
	require.True(t, ok)
	assert.Equal(t, 5, u.Size())

	last := report.Results[len(report.Results)-1]
	assert.Equal(t, OpShow, last.Result().Op)
	assert.Contains(t, last.Result().Contents, "bag[")
}

func TestRunner_Outcomes(t *testing.T) {
	t.Parallel()

	s := &Script{Name: "outcomes", Steps: []Step{
		{Op: OpAdd, Bag: "a", Value: intp(4), Values: []int{4, 6}},
		{Op: OpCount, Bag: "a", Value: intp(4)},
		{Op: OpRemove, Bag: "a", Value: intp(6)},
		{Op: OpRemove, Bag: "a", Value: intp(9)},
		{Op: OpSize, Bag: "a"},
		{Op: OpClone, Bag: "b", From: []string{"a"}},
		{Op: OpAddAll, Bag: "a", From: []string{"a"}},
		{Op: OpShow, Bag: "b"},
	}}

	report := newTestRunner().Run(context.Background(), s)
	require.NoError(t, report.Err())

	out := func(i int) Outcome { return report.Results[i].Result() }

	assert.Equal(t, 3, out(0).Size)
	assert.Equal(t, 2, out(1).Value)
	assert.True(t, out(2).Found)
	assert.False(t, out(3).Found)
	assert.Equal(t, 2, out(4).Value)
	assert.Equal(t, 2, out(5).Size)
	assert.Equal(t, 4, out(6).Size, "add_all of a bag onto itself doubles it")
	assert.Equal(t, "bag[4 4]", out(7).Contents)
	assert.Equal(t, 8, out(7).Index)
}

func TestRunner_CloneAndUnionAreIndependent(t *testing.T) {
	t.Parallel()

	r := newTestRunner()
	report := r.Run(context.Background(), &Script{Steps: []Step{
		{Op: OpAdd, Bag: "a", Values: []int{1, 2}},
		{Op: OpAdd, Bag: "b", Values: []int{2}},
		{Op: OpClone, Bag: "c", From: []string{"a"}},
		{Op: OpUnion, Bag: "u", From: []string{"a", "b"}},
		{Op: OpRemove, Bag: "u", Value: intp(2)},
		{Op: OpRemove, Bag: "u", Value: intp(2)},
		{Op: OpAdd, Bag: "c", Value: intp(9)},
	}})
	require.NoError(t, report.Err())

	a, _ := r.Bag("a")
	b, _ := r.Bag("b")
	c, _ := r.Bag("c")
	u, _ := r.Bag("u")

	assert.Equal(t, 1, a.CountOccurrences(2))
	assert.Equal(t, 1, b.CountOccurrences(2))
	assert.Equal(t, 0, a.CountOccurrences(9))
	assert.Equal(t, 3, c.Size())
	assert.Equal(t, 1, u.Size())
}

func TestRunner_ExpectationFailure(t *testing.T) {
	t.Parallel()

	report := newTestRunner().Run(context.Background(), &Script{Steps: []Step{
		{Op: OpAdd, Bag: "a", Value: intp(1)},
		{Op: OpSize, Bag: "a", Expect: intp(2)},
		{Op: OpRemove, Bag: "a", Value: intp(1), ExpectFound: boolp(false)},
		{Op: OpSize, Bag: "a", Expect: intp(0)},
	}})

	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, 2, report.Succeeded())

	sizeRes := report.Results[1]
	require.True(t, sizeRes.IsFailure())
	assert.ErrorIs(t, sizeRes.Err(), ErrExpectation)
	assert.Contains(t, sizeRes.Err().Error(), "step 2 (size a)")
	assert.Equal(t, 1, sizeRes.Result().Value, "failed expectation keeps the observed value")

	assert.ErrorIs(t, report.Results[2].Err(), ErrExpectation)
	assert.ErrorIs(t, report.Err(), ErrExpectation)

	errs := report.Errors()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "step 2")
	assert.Contains(t, errs[1].Error(), "step 3")
	assert.False(t, report.Interrupted())
}

func TestRunner_UnknownBagAndEmptyGrab(t *testing.T) {
	t.Parallel()

	report := newTestRunner().Run(context.Background(), &Script{Steps: []Step{
		{Op: OpSize, Bag: "ghost"},
		{Op: OpUnion, Bag: "u", From: []string{"ghost", "ghost"}},
		{Op: OpAdd, Bag: "a", Value: intp(1)},
		{Op: OpRemove, Bag: "a", Value: intp(1)},
		{Op: OpGrab, Bag: "a"},
	}})

	assert.ErrorIs(t, report.Results[0].Err(), ErrUnknownBag)
	assert.ErrorIs(t, report.Results[1].Err(), ErrUnknownBag)
	assert.ErrorIs(t, report.Results[4].Err(), bag.ErrEmptyBag)
	assert.Equal(t, 3, report.Failed())
}

func TestRunner_InvalidStepInCode(t *testing.T) {
	t.Parallel()

	report := newTestRunner().Run(context.Background(), &Script{Steps: []Step{
		{Op: "pop", Bag: "a"},
	}})

	require.Len(t, report.Results, 1)
	assert.ErrorIs(t, report.Results[0].Err(), ErrUnknownOp)
}

func TestRunner_BreakOnError(t *testing.T) {
	t.Parallel()

	r := newTestRunner(WithBreakOnError(true))
	report := r.Run(context.Background(), &Script{Steps: []Step{
		{Op: OpAdd, Bag: "a", Value: intp(1)},
		{Op: OpCount, Bag: "missing", Value: intp(1)},
		{Op: OpAdd, Bag: "a", Value: intp(2)},
	}})

	assert.Equal(t, 2, report.Failed())
	assert.ErrorIs(t, report.Results[2].Err(), ErrSkipped)

	a, _ := r.Bag("a")
	assert.Equal(t, 1, a.Size(), "skipped steps must not run")
}

func TestRunner_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner()
	report := r.Run(ctx, &Script{Steps: []Step{
		{Op: OpAdd, Bag: "a", Value: intp(1)},
		{Op: OpSize, Bag: "a"},
	}})

	assert.Equal(t, 2, report.Cancelled())
	assert.ErrorIs(t, report.Err(), context.Canceled)

	_, ok := r.Bag("a")
	assert.False(t, ok, "no bag work after cancellation")
	assert.True(t, report.Interrupted())
	assert.Len(t, report.Errors(), 2)
}

func TestRunner_StepSeesCancelledContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(WithLogger(logger))
	res := r.runStep(ctx, 1, Step{Op: OpAdd, Bag: "a", Value: intp(1)})

	require.True(t, res.IsCancel())
	assert.ErrorIs(t, res.Err(), context.Canceled)
	_, ok := r.Bag("a")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), `"msg":"step cancelled"`)

	// an invalid step still fails on validation first
	res = r.runStep(ctx, 2, Step{Op: "pop", Bag: "a"})
	assert.True(t, res.IsFailure())
	assert.ErrorIs(t, res.Err(), ErrUnknownOp)
}

func TestReport_NoErrors(t *testing.T) {
	t.Parallel()

	report := newTestRunner().Run(context.Background(), &Script{Steps: []Step{
		{Op: OpAdd, Bag: "a", Value: intp(1)},
	}})

	assert.NoError(t, report.Err())
	assert.Empty(t, report.Errors())
	assert.False(t, report.Interrupted())
}

func TestRunner_GrabIsDeterministicWithSource(t *testing.T) {
	t.Parallel()

	s := &Script{Steps: []Step{
		{Op: OpAdd, Bag: "a", Values: []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{Op: OpGrab, Bag: "a"},
		{Op: OpGrab, Bag: "a"},
		{Op: OpGrab, Bag: "a"},
	}}

	grabs := func() []int {
		report := newTestRunner().Run(context.Background(), s)
		require.NoError(t, report.Err())
		return []int{report.Results[1].Result().Value, report.Results[2].Result().Value, report.Results[3].Result().Value}
	}

	assert.Equal(t, grabs(), grabs())
}

func TestRunner_LogsAndSpans(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := newTestRunner(WithLogger(logger), WithTracer(tp.Tracer("test")))
	r.Run(context.Background(), &Script{Name: "traced", Steps: []Step{
		{Op: OpAdd, Bag: "a", Value: intp(1)},
		{Op: OpSize, Bag: "nope"},
	}})

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "script.step", spans[0].Name())
	assert.Equal(t, "script.step", spans[1].Name())
	assert.Equal(t, "script.run", spans[2].Name())
	assert.Equal(t, spans[2].SpanContext().SpanID(), spans[0].Parent().SpanID())

	var sizeSet bool
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "bag.size" {
			sizeSet = true
			assert.Equal(t, int64(1), kv.Value.AsInt64())
		}
	}
	assert.True(t, sizeSet, "successful step records bag.size")
	for _, kv := range spans[1].Attributes() {
		assert.NotEqual(t, "bag.size", string(kv.Key), "failed step has no bag.size")
	}

	logs := buf.String()
	assert.Contains(t, logs, `"msg":"step done"`)
	assert.Contains(t, logs, `"msg":"step failed"`)
	assert.Contains(t, logs, `"msg":"script finished"`)
}
