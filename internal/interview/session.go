// Package interview runs a mock interview: questions are fetched once,
// answered in order and evaluated as a whole.
package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/backend"
	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/logger"
	"github.com/spigell/edubridge/internal/normalize"
	"github.com/spigell/edubridge/internal/session"
)

type Backend interface {
	StartInterview(ctx context.Context) (any, error)
	EvaluateInterview(ctx context.Context, pairs []backend.QAPair) (any, error)
}

type Session struct {
	store   *session.Store
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	questions []career.Question
	answers   []career.AnswerRecord
	attemptID string
	result    *career.InterviewResult

	busy   bool
	gen    uint64
	cancel context.CancelFunc
}

func New(store *session.Store, b Backend, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		store:   store,
		backend: b,
		logger:  log,
		now:     time.Now,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) Questions() []career.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]career.Question(nil), s.questions...)
}

func (s *Session) Answers() []career.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]career.AnswerRecord(nil), s.answers...)
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (career.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != InProgress {
		return career.Question{}, false
	}
	return s.questions[s.state.Index], true
}

func (s *Session) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attemptID
}

// Result returns the evaluation of this attempt or, before one exists, the
// last persisted result.
func (s *Session) Result() (*career.InterviewResult, bool) {
	s.mu.Lock()
	result := s.result
	s.mu.Unlock()

	if result != nil {
		r := *result
		return &r, true
	}
	return s.store.LastResult()
}

// Start fetches a fresh question set. It is allowed before the first attempt
// and after a failed evaluation.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return career.ErrBusy
	}
	if !s.store.Authenticated() {
		s.mu.Unlock()
		return career.ErrUnauthenticated
	}
	if _, ok := next(s.state.Phase, eventQuestionsLoaded); !ok {
		state := s.state
		s.mu.Unlock()
		return career.Preconditionf("cannot start an interview while %s", state)
	}
	ctx, gen, done := s.claimLocked(ctx)
	s.mu.Unlock()
	defer done()

	raw, err := s.backend.StartInterview(ctx)
	if err != nil {
		return s.staleOr(gen, fmt.Errorf("starting interview: %w", err))
	}

	out := normalize.Questions(raw)
	if !out.OK() {
		s.logger.Warn("interview questions fell back",
			zap.String("reason", string(out.Fallback)),
			zap.Int("questions", out.Len()),
		)
	}
	if out.Len() == 0 {
		return s.staleOr(gen, career.ErrNoQuestions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return career.ErrStale
	}

	if err := s.store.SetPendingQuestions(out.Items); err != nil {
		return fmt.Errorf("saving interview questions: %w", err)
	}
	if err := s.store.ClearLastResult(); err != nil {
		return fmt.Errorf("clearing previous result: %w", err)
	}

	s.questions = out.Items
	s.answers = make([]career.AnswerRecord, 0, len(out.Items))
	s.attemptID = uuid.NewString()
	s.result = nil
	s.move(eventQuestionsLoaded, 0)

	s.attemptLogger().Info("interview started", zap.Int("questions", len(out.Items)))
	return nil
}

// RecordAnswer writes or overwrites the answer to the current question.
func (s *Session) RecordAnswer(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != InProgress {
		return career.Preconditionf("no question awaiting an answer, interview is %s", s.state)
	}

	if strings.TrimSpace(text) == "" {
		text = ""
	}

	i := s.state.Index
	record := career.AnswerRecord{QuestionID: s.questions[i].ID, Text: text}
	if i < len(s.answers) {
		s.answers[i] = record
	} else {
		s.answers = append(s.answers, record)
	}
	return nil
}

// Advance moves to the next question. After the last one the full answer set
// is submitted for evaluation and Advance blocks until it completes.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return career.ErrBusy
	}
	if s.state.Phase != InProgress {
		state := s.state
		s.mu.Unlock()
		return career.Preconditionf("cannot advance while %s", state)
	}

	i := s.state.Index
	if i == len(s.answers) {
		s.answers = append(s.answers, career.AnswerRecord{QuestionID: s.questions[i].ID})
	}

	if i+1 < len(s.questions) {
		s.move(eventNext, i+1)
		s.mu.Unlock()
		return nil
	}

	return s.submitLocked(ctx, eventSubmit)
}

// Evaluate resubmits the recorded answers after a failed evaluation.
func (s *Session) Evaluate(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return career.ErrBusy
	}
	if s.state.Phase != Failed {
		state := s.state
		s.mu.Unlock()
		return career.Preconditionf("evaluation can only be retried after a failure, interview is %s", state)
	}

	return s.submitLocked(ctx, eventRetry)
}

// Reset returns to NotStarted from any state. An in-flight request is
// cancelled and its response discarded. The last result is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.busy = false

	s.state = State{Phase: NotStarted}
	s.questions = nil
	s.answers = nil
	s.attemptID = ""
	s.result = nil

	if err := s.store.SetPendingQuestions(nil); err != nil {
		s.logger.Warn("failed to drop pending questions", zap.Error(err))
	}
}

// submitLocked is entered with s.mu held and releases it.
func (s *Session) submitLocked(ctx context.Context, e event) error {
	if len(s.answers) != len(s.questions) {
		n, m := len(s.answers), len(s.questions)
		s.mu.Unlock()
		return career.Preconditionf("%d answers recorded for %d questions", n, m)
	}

	pairs := make([]backend.QAPair, len(s.questions))
	for i, q := range s.questions {
		pairs[i] = backend.QAPair{Question: q.Text, Answer: s.answers[i].Text}
	}

	s.move(e, 0)
	ctx, gen, done := s.claimLocked(ctx)
	log := s.attemptLogger()
	s.mu.Unlock()
	defer done()

	log.Info("submitting interview", zap.Int("answers", len(pairs)))

	raw, err := s.backend.EvaluateInterview(ctx, pairs)

	var (
		result career.InterviewResult
		reason normalize.Reason
	)
	if err == nil {
		result, reason = normalize.Evaluation(raw)
		if reason == normalize.ReasonAbsent || reason == normalize.ReasonUnknownShape {
			err = &career.TransportError{Op: "evaluate-interview", Err: fmt.Errorf("unusable evaluation payload: %s", reason)}
		}
	}
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.gen != gen {
			return career.ErrStale
		}
		s.move(eventEvaluationFailed, 0)
		log.Warn("interview evaluation failed", zap.Error(err))
		return fmt.Errorf("evaluating interview: %w", err)
	}

	if reason != normalize.OK {
		log.Warn("interview evaluation fell back", zap.String("reason", string(reason)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return career.ErrStale
	}

	result.AttemptID = s.attemptID
	result.EvaluatedAt = s.now().UTC()
	s.result = &result
	s.move(eventEvaluated, 0)

	log.Info("interview evaluated", zap.Int("score", result.Score))

	if err := s.store.SetLastResult(result); err != nil {
		return fmt.Errorf("saving interview result: %w", err)
	}
	if err := s.store.SetPendingQuestions(nil); err != nil {
		return fmt.Errorf("dropping answered questions: %w", err)
	}
	return nil
}

// move applies a table transition. Callers hold s.mu and have already
// checked that the event is legal from the current phase.
func (s *Session) move(e event, index int) {
	to, ok := next(s.state.Phase, e)
	if !ok {
		panic(fmt.Sprintf("interview: illegal transition %s on %s", s.state, e))
	}
	s.state = State{Phase: to, Index: index}
}

// claimLocked takes the single operation slot. Callers hold s.mu and have
// checked s.busy.
func (s *Session) claimLocked(ctx context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.cancel = cancel
	gen := s.gen

	return ctx, gen, func() {
		s.mu.Lock()
		if s.gen == gen {
			s.busy = false
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

func (s *Session) staleOr(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return career.ErrStale
	}
	return err
}

func (s *Session) attemptLogger() *zap.Logger {
	log := logger.WithSessionFields(s.logger, s.store.Email(), s.store.Role())
	return logger.WithFields(log, logger.StringFields(logger.StringField{Key: logger.FieldAttempt, Value: s.attemptID})...)
}
