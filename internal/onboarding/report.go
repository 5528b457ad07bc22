package onboarding

import (
	"go.uber.org/multierr"
)

// Step is one server side generation triggered by role confirmation.
type Step string

const (
	StepRoadmap  Step = "roadmap"
	StepProjects Step = "projects"
)

// Steps is the fixed generation order.
var Steps = []Step{StepRoadmap, StepProjects}

type StepResult struct {
	Step Step
	// Err is nil when the step succeeded.
	Err error
}

// GenerationReport records the outcome of the generations for one role.
type GenerationReport struct {
	Role    string
	Results []StepResult
}

// Failed lists the steps that need a retry.
func (r GenerationReport) Failed() []Step {
	var failed []Step
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res.Step)
		}
	}
	return failed
}

func (r GenerationReport) OK() bool { return len(r.Failed()) == 0 }

// Err combines the step errors, or returns nil when every step succeeded.
func (r GenerationReport) Err() error {
	var err error
	for _, res := range r.Results {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// merge replaces the results of the retried steps and keeps the others.
func (r GenerationReport) merge(retried []StepResult) GenerationReport {
	byStep := make(map[Step]error, len(retried))
	for _, res := range retried {
		byStep[res.Step] = res.Err
	}

	merged := GenerationReport{Role: r.Role, Results: make([]StepResult, 0, len(r.Results))}
	for _, res := range r.Results {
		if err, ok := byStep[res.Step]; ok {
			res.Err = err
		}
		merged.Results = append(merged.Results, res)
	}
	return merged
}
