package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ib-77/intbag/pkg/rop"
	"github.com/ib-77/intbag/pkg/rop/solo"
	"github.com/ib-77/intbag/pkg/script"
)

type stepLine struct {
	Script    string    `json:"script"`
	Step      int       `json:"step"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Op        script.Op `json:"op"`
	Bag       string    `json:"bag"`
	Status    string    `json:"status"`
	Value     int       `json:"value"`
	Found     bool      `json:"found"`
	Size      int       `json:"size"`
	Contents  string    `json:"contents,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func printReport(w io.Writer, report *script.Report, asJSON bool) error {
	ctx := context.Background()

	if asJSON {
		enc := json.NewEncoder(w)
		for i, res := range report.Results {
			if err := enc.Encode(toLine(ctx, report, i, res)); err != nil {
				return fmt.Errorf("encode step %d: %w", i+1, err)
			}
		}
		return nil
	}

	for i, res := range report.Results {
		st := report.Steps[i]
		status := solo.Finally(ctx, res,
			func(_ context.Context, o script.Outcome) string { return "ok     " + describe(o) },
			func(_ context.Context, err error) string { return "FAIL   " + err.Error() },
			func(_ context.Context, err error) string { return "CANCEL " + err.Error() })

		if _, err := fmt.Fprintf(w, "%s #%d %s %s: %s\n", report.Name, i+1, st.Op, st.Bag, status); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s: %d ok, %d failed, %d cancelled\n",
		report.Name, report.Succeeded(), report.Failed(), report.Cancelled())
	return err
}

func toLine(ctx context.Context, report *script.Report, i int, res rop.Result[script.Outcome]) stepLine {
	st := report.Steps[i]
	o := res.Result()

	line := stepLine{
		Script:    report.Name,
		Step:      i + 1,
		ID:        res.Id().String(),
		CreatedAt: res.CreatedAt(),
		Op:        st.Op,
		Bag:       st.Bag,
		Value:     o.Value,
		Found:     o.Found,
		Size:      o.Size,
		Contents:  o.Contents,
	}
	line.Status = solo.Finally(ctx, res,
		func(context.Context, script.Outcome) string { return "ok" },
		func(_ context.Context, err error) string {
			line.Error = err.Error()
			return "failed"
		},
		func(_ context.Context, err error) string {
			line.Error = err.Error()
			return "cancelled"
		})
	return line
}

func describe(o script.Outcome) string {
	switch o.Op {
	case script.OpCount, script.OpSize, script.OpGrab:
		return fmt.Sprintf("= %d", o.Value)
	case script.OpRemove:
		return fmt.Sprintf("found=%v size=%d", o.Found, o.Size)
	case script.OpShow:
		return o.Contents
	default:
		return fmt.Sprintf("size=%d", o.Size)
	}
}
