package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/edubridge/internal/backend"
	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/session"
)

type fakeBackend struct {
	mu sync.Mutex

	questions any
	startErr  error

	evaluation  any
	evalErrs    []error
	evaluations [][]backend.QAPair

	// When set, EvaluateInterview signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeBackend) StartInterview(context.Context) (any, error) {
	return f.questions, f.startErr
}

func (f *fakeBackend) EvaluateInterview(_ context.Context, pairs []backend.QAPair) (any, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.evaluations = append(f.evaluations, append([]backend.QAPair(nil), pairs...))
	if len(f.evalErrs) > 0 {
		err := f.evalErrs[0]
		f.evalErrs = f.evalErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.evaluation, nil
}

func threeQuestions() any {
	return map[string]any{
		"message": "Mock interview started",
		"questions": []any{
			map[string]any{"id": float64(1), "question": "Q1"},
			map[string]any{"id": float64(2), "question": "Q2"},
			map[string]any{"id": float64(3), "question": "Q3"},
		},
	}
}

func goodEvaluation() any {
	return map[string]any{
		"score": float64(78),
		"feedback": map[string]any{
			"strengths":   []any{"clear"},
			"weaknesses":  []any{"depth"},
			"suggestions": "practice system design",
		},
	}
}

func authedStore(t *testing.T) *session.Store {
	t.Helper()

	store := session.NewMemory(nil)
	if err := store.SetAuth("tok", "a@b.com"); err != nil {
		t.Fatalf("set auth: %v", err)
	}
	return store
}

func answerAll(t *testing.T, s *Session, answers ...string) error {
	t.Helper()

	var err error
	for _, a := range answers {
		if rerr := s.RecordAnswer(a); rerr != nil {
			t.Fatalf("record answer: %v", rerr)
		}
		err = s.Advance(context.Background())
	}
	return err
}

func TestFullInterviewEvaluatesOnce(t *testing.T) {
	store := authedStore(t)
	fb := &fakeBackend{questions: threeQuestions(), evaluation: goodEvaluation()}
	s := New(store, fb, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := s.State(); got != (State{Phase: InProgress, Index: 0}) {
		t.Fatalf("expected in_progress(0), got %s", got)
	}
	if len(store.PendingQuestions()) != 3 {
		t.Fatalf("expected pending questions to be stored")
	}

	if err := answerAll(t, s, "A1", "A2", "A3"); err != nil {
		t.Fatalf("final advance: %v", err)
	}

	if s.State().Phase != Completed {
		t.Fatalf("expected completed, got %s", s.State())
	}
	if len(fb.evaluations) != 1 {
		t.Fatalf("expected exactly one evaluation, got %d", len(fb.evaluations))
	}

	pairs := fb.evaluations[0]
	expected := []backend.QAPair{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}, {Question: "Q3", Answer: "A3"}}
	if len(pairs) != len(expected) {
		t.Fatalf("expected %d pairs, got %d", len(expected), len(pairs))
	}
	for i := range expected {
		if pairs[i] != expected[i] {
			t.Fatalf("pair %d: expected %+v, got %+v", i, expected[i], pairs[i])
		}
	}

	result, ok := store.LastResult()
	if !ok || result.Score != 78 || result.Feedback.Suggestions != "practice system design" {
		t.Fatalf("unexpected stored result %+v", result)
	}
	if result.AttemptID == "" || result.AttemptID != s.AttemptID() {
		t.Fatalf("result must carry the attempt id")
	}
	if store.PendingQuestions() != nil {
		t.Fatalf("answered questions must be dropped")
	}

	if err := s.Evaluate(context.Background()); !errors.Is(err, career.ErrPrecondition) {
		t.Fatalf("evaluation must not run twice, got %v", err)
	}
}

func TestEvaluationFailureThenRetry(t *testing.T) {
	store := authedStore(t)
	fb := &fakeBackend{
		questions:  []any{"Q1", "Q2"},
		evaluation: goodEvaluation(),
		evalErrs:   []error{&career.TransportError{Op: "evaluate-interview", StatusCode: 502}},
	}
	s := New(store, fb, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := answerAll(t, s, "A1", "A2")
	if !errors.Is(err, career.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if s.State().Phase != Failed {
		t.Fatalf("expected failed, got %s", s.State())
	}
	if got := s.Answers(); len(got) != 2 || got[1].Text != "A2" {
		t.Fatalf("answers must be preserved, got %+v", got)
	}
	if _, ok := store.LastResult(); ok {
		t.Fatalf("no result must be stored after a failure")
	}

	if err := s.Evaluate(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.State().Phase != Completed {
		t.Fatalf("expected completed after retry, got %s", s.State())
	}
	if len(fb.evaluations) != 2 || fb.evaluations[1][0].Answer != "A1" {
		t.Fatalf("retry must resubmit the same answers, got %+v", fb.evaluations)
	}
}

func TestUnusableEvaluationFails(t *testing.T) {
	fb := &fakeBackend{questions: []any{"Q1"}, evaluation: nil}
	s := New(authedStore(t), fb, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := answerAll(t, s, "A1"); !errors.Is(err, career.ErrTransport) {
		t.Fatalf("expected failure for empty evaluation, got %v", err)
	}
	if s.State().Phase != Failed {
		t.Fatalf("expected failed, got %s", s.State())
	}
}

func TestScoreIsClamped(t *testing.T) {
	store := authedStore(t)
	fb := &fakeBackend{questions: []any{"Q1"}, evaluation: map[string]any{"score": "140", "feedback": "great"}}
	s := New(store, fb, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := answerAll(t, s, "A1"); err != nil {
		t.Fatalf("advance: %v", err)
	}

	result, ok := s.Result()
	if !ok || result.Score != career.MaxScore {
		t.Fatalf("expected clamped score, got %+v", result)
	}
	if result.Feedback.Suggestions != "great" {
		t.Fatalf("expected string feedback as suggestions, got %+v", result.Feedback)
	}
}

func TestAdvanceWithoutAnswerRecordsEmpty(t *testing.T) {
	fb := &fakeBackend{questions: []any{"Q1", "Q2"}, evaluation: goodEvaluation()}
	s := New(authedStore(t), fb, nil)
	ctx := context.Background()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := s.RecordAnswer("   "); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordAnswer("second try"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Advance(ctx); err != nil {
		t.Fatalf("final advance: %v", err)
	}

	pairs := fb.evaluations[0]
	if pairs[0].Answer != "" || pairs[1].Answer != "second try" {
		t.Fatalf("unexpected pairs %+v", pairs)
	}
}

func TestStartRejections(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		s := New(session.NewMemory(nil), &fakeBackend{questions: []any{"Q1"}}, nil)
		if err := s.Start(context.Background()); !errors.Is(err, career.ErrPrecondition) {
			t.Fatalf("expected precondition error, got %v", err)
		}
	})

	t.Run("in progress", func(t *testing.T) {
		s := New(authedStore(t), &fakeBackend{questions: []any{"Q1", "Q2"}}, nil)
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("start: %v", err)
		}
		if err := s.Start(context.Background()); !errors.Is(err, career.ErrPrecondition) {
			t.Fatalf("expected precondition error, got %v", err)
		}
		if s.State() != (State{Phase: InProgress}) {
			t.Fatalf("state changed to %s", s.State())
		}
	})

	t.Run("completed requires reset", func(t *testing.T) {
		s := New(authedStore(t), &fakeBackend{questions: []any{"Q1"}, evaluation: goodEvaluation()}, nil)
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("start: %v", err)
		}
		if err := answerAll(t, s, "A1"); err != nil {
			t.Fatalf("advance: %v", err)
		}
		if err := s.Start(context.Background()); !errors.Is(err, career.ErrPrecondition) {
			t.Fatalf("expected precondition error, got %v", err)
		}
		s.Reset()
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("start after reset: %v", err)
		}
	})
}

func TestStartWithoutQuestions(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{name: "absent", raw: nil},
		{name: "empty envelope", raw: map[string]any{"questions": []any{}}},
		{name: "blank string", raw: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := authedStore(t)
			if err := store.SetLastResult(career.InterviewResult{Score: 40}); err != nil {
				t.Fatalf("seed result: %v", err)
			}
			s := New(store, &fakeBackend{questions: tt.raw}, nil)

			if err := s.Start(context.Background()); !errors.Is(err, career.ErrNoQuestions) {
				t.Fatalf("expected no questions error, got %v", err)
			}
			if s.State().Phase != NotStarted {
				t.Fatalf("state changed to %s", s.State())
			}
			if _, ok := store.LastResult(); !ok {
				t.Fatalf("previous result must survive a failed start")
			}
		})
	}
}

func TestStartClearsPreviousResult(t *testing.T) {
	store := authedStore(t)
	_ = store.SetLastResult(career.InterviewResult{Score: 40})
	s := New(store, &fakeBackend{questions: "Tell me about yourself."}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, ok := store.LastResult(); ok {
		t.Fatalf("previous result must be cleared by a new attempt")
	}
	if q, ok := s.Current(); !ok || q.Text != "Tell me about yourself." {
		t.Fatalf("unexpected current question %+v", q)
	}
}

func TestOperationsOutsideInterview(t *testing.T) {
	s := New(authedStore(t), &fakeBackend{}, nil)

	if err := s.RecordAnswer("x"); !errors.Is(err, career.ErrPrecondition) {
		t.Fatalf("record: expected precondition error, got %v", err)
	}
	if err := s.Advance(context.Background()); !errors.Is(err, career.ErrPrecondition) {
		t.Fatalf("advance: expected precondition error, got %v", err)
	}
	if err := s.Evaluate(context.Background()); !errors.Is(err, career.ErrPrecondition) {
		t.Fatalf("evaluate: expected precondition error, got %v", err)
	}
}

func TestResetKeepsLastResult(t *testing.T) {
	store := authedStore(t)
	fb := &fakeBackend{questions: []any{"Q1", "Q2"}}
	s := New(store, fb, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = s.RecordAnswer("A1")
	_ = s.Advance(context.Background())
	_ = store.SetLastResult(career.InterviewResult{Score: 10})

	s.Reset()

	if s.State().Phase != NotStarted || s.Questions() != nil || s.Answers() != nil {
		t.Fatalf("expected a clean session, got %s", s.State())
	}
	if store.PendingQuestions() != nil {
		t.Fatalf("pending questions must be dropped")
	}
	if _, ok := store.LastResult(); !ok {
		t.Fatalf("last result must be kept")
	}
}

func TestResetDuringEvaluationDiscardsResponse(t *testing.T) {
	store := authedStore(t)
	fb := &fakeBackend{
		questions:  []any{"Q1"},
		evaluation: goodEvaluation(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	s := New(store, fb, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = s.RecordAnswer("A1")

	errc := make(chan error, 1)
	go func() { errc <- s.Advance(context.Background()) }()
	<-fb.entered

	if s.State().Phase != Submitting {
		t.Fatalf("expected submitting, got %s", s.State())
	}
	if err := s.Start(context.Background()); !errors.Is(err, career.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}

	s.Reset()
	close(fb.release)

	if err := <-errc; !errors.Is(err, career.ErrStale) {
		t.Fatalf("expected stale error, got %v", err)
	}
	if _, ok := store.LastResult(); ok {
		t.Fatalf("stale evaluation must not be stored")
	}
	if s.State().Phase != NotStarted {
		t.Fatalf("expected not started, got %s", s.State())
	}
}

func TestFallbackIsLogged(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	s := New(authedStore(t), &fakeBackend{questions: "not json at all"}, zap.New(core))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	entries := observed.FilterMessage("interview questions fell back").All()
	if len(entries) != 1 {
		t.Fatalf("expected one fallback warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["reason"] != "undecodable" {
		t.Fatalf("unexpected reason %v", entries[0].ContextMap()["reason"])
	}
}
