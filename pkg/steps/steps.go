// Package steps runs an ordered list of operations where each one is either
// required or best-effort.
package steps

import (
	"context"
	"fmt"

	"github.com/version-publisher/pkg/log"
)

type Policy int

const (
	// Required steps abort the run on failure.
	Required Policy = iota
	// BestEffort steps log their failure and let the run continue.
	BestEffort
)

func (p Policy) String() string {
	if p == BestEffort {
		return "best-effort"
	}
	return "required"
}

type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) error
}

// Result records what a run did.
type Result struct {
	Completed []string
	// Ignored holds best-effort steps that failed, keyed by step name.
	Ignored map[string]error
}

type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Runner struct {
	DryRun bool
}

// Run executes steps in order and stops at the first required failure. In
// dry-run mode steps are only logged.
func (r *Runner) Run(ctx context.Context, steps []Step) (Result, error) {
	res := Result{Ignored: map[string]error{}}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return res, &StepError{Step: s.Name, Err: err}
		}

		if r.DryRun {
			log.Debug("dry-run: skipping step", "step", s.Name, "policy", s.Policy.String())
			continue
		}

		log.Debug("running step", "step", s.Name, "policy", s.Policy.String())
		if err := s.Run(ctx); err != nil {
			if s.Policy == BestEffort {
				log.Warn("best-effort step failed, continuing", "step", s.Name, "error", err)
				res.Ignored[s.Name] = err
				continue
			}
			return res, &StepError{Step: s.Name, Err: err}
		}
		res.Completed = append(res.Completed, s.Name)
	}
	return res, nil
}
