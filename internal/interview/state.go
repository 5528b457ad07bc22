package interview

import "fmt"

type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Submitting
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the phase plus, while in progress, the current question index.
type State struct {
	Phase Phase
	Index int
}

func (s State) String() string {
	if s.Phase == InProgress {
		return fmt.Sprintf("%s(%d)", s.Phase, s.Index)
	}
	return s.Phase.String()
}

type event string

const (
	eventQuestionsLoaded  event = "questions_loaded"
	eventNext             event = "next"
	eventSubmit           event = "submit"
	eventRetry            event = "retry"
	eventEvaluated        event = "evaluated"
	eventEvaluationFailed event = "evaluation_failed"
)

// transitions lists every legal move. Reset is accepted from any phase and is
// not part of the table.
var transitions = map[Phase]map[event]Phase{
	NotStarted: {
		eventQuestionsLoaded: InProgress,
	},
	InProgress: {
		eventNext:   InProgress,
		eventSubmit: Submitting,
	},
	Submitting: {
		eventEvaluated:        Completed,
		eventEvaluationFailed: Failed,
	},
	Failed: {
		eventQuestionsLoaded: InProgress,
		eventRetry:           Submitting,
	},
	Completed: {},
}

func next(from Phase, e event) (Phase, bool) {
	to, ok := transitions[from][e]
	return to, ok
}
