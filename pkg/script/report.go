package script

import (
	"errors"

	"github.com/ib-77/intbag/pkg/rop"
)

// Report pairs each step of a run with its result. Results[i] belongs to Steps[i].
type Report struct {
	Name    string
	Steps   []Step
	Results []rop.Result[Outcome]
}

// Err joins the errors of every step that did not succeed, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if !res.IsSuccess() {
			errs = append(errs, res.Err())
		}
	}
	return errors.Join(errs...)
}

// Errors lists the step errors one by one, in step order.
func (r *Report) Errors() []error {
	return rop.GetErrors(r.Err())
}

// Interrupted reports whether the run stopped because its context was done
// rather than because a step failed.
func (r *Report) Interrupted() bool {
	return r.Failed() == 0 && rop.IsCancellationError(r.Err())
}

func (r *Report) Succeeded() int {
	return r.countIf(rop.Result[Outcome].IsSuccess)
}

func (r *Report) Failed() int {
	return r.countIf(rop.Result[Outcome].IsFailure)
}

func (r *Report) Cancelled() int {
	return r.countIf(rop.Result[Outcome].IsCancel)
}

func (r *Report) countIf(pred func(rop.Result[Outcome]) bool) int {
	n := 0
	for _, res := range r.Results {
		if pred(res) {
			n++
		}
	}
	return n
}
