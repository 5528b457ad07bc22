// Package onboarding drives account creation, resume analysis and role
// confirmation, including the roadmap and project generations that follow.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/edubridge/internal/backend"
	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/logger"
	"github.com/spigell/edubridge/internal/normalize"
	"github.com/spigell/edubridge/internal/session"
)

// Backend is the subset of the remote API the pipeline drives.
type Backend interface {
	Register(ctx context.Context, r backend.RegisterRequest) (*backend.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*backend.AuthResponse, error)
	SelectRole(ctx context.Context, role string) error
	UploadResume(ctx context.Context, file backend.File, targetRole, email string) (*backend.ResumeResponse, error)
	GenerateRoadmap(ctx context.Context, role string) error
	GenerateProjects(ctx context.Context, role string) error
}

type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	// Resume is optional at sign-up.
	Resume *backend.File
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type Pipeline struct {
	store    *session.Store
	backend  Backend
	logger   *zap.Logger
	validate *validator.Validate

	mu     sync.Mutex
	state  State
	busy   bool
	gen    uint64
	cancel context.CancelFunc
	report *GenerationReport
}

func New(store *session.Store, b Backend, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		store:    store,
		backend:  b,
		logger:   log,
		validate: validator.New(),
		state:    stateFromStore(store),
	}
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Suggestions returns the roles suggested by the latest resume analysis.
func (p *Pipeline) Suggestions() []string {
	a, ok := p.store.Analysis()
	if !ok {
		return nil
	}
	return a.SuggestedRoles
}

func (p *Pipeline) Register(ctx context.Context, r Registration) error {
	if err := p.check(r); err != nil {
		return err
	}

	ctx, gen, done, err := p.begin(ctx, func(s State) error {
		if s != Anonymous {
			return career.Preconditionf("register requires a logged out session, state is %s", s)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer done()

	p.setState(gen, Registering)

	resp, err := p.backend.Register(ctx, backend.RegisterRequest(r))
	if err != nil {
		return p.fail(gen, Anonymous, fmt.Errorf("registering %s: %w", r.Email, err))
	}

	roles := p.roles(resp.SuggestedRoles)

	return p.commit(gen, func() error {
		if err := p.store.SetAuth(resp.Token, r.Email); err != nil {
			return err
		}
		if err := p.store.SetName(r.Name); err != nil {
			return err
		}
		if err := p.store.SetRole(""); err != nil {
			return err
		}
		p.store.SetAnalysis(career.ResumeAnalysis{SuggestedRoles: roles})

		p.state = AwaitingRoleSelection
		logger.WithSessionFields(p.logger, r.Email, "").Info("account registered",
			zap.Int("suggested_roles", len(roles)))
		return nil
	})
}

func (p *Pipeline) Login(ctx context.Context, email, password string) error {
	if err := p.check(credentials{Email: email, Password: password}); err != nil {
		return err
	}

	ctx, gen, done, err := p.begin(ctx, func(s State) error {
		if s != Anonymous {
			return career.Preconditionf("login requires a logged out session, state is %s", s)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer done()

	p.setState(gen, Registering)

	resp, err := p.backend.Login(ctx, email, password)
	if err != nil {
		return p.fail(gen, Anonymous, fmt.Errorf("logging in %s: %w", email, err))
	}

	if resp.Email != "" {
		email = resp.Email
	}

	return p.commit(gen, func() error {
		if err := p.store.SetAuth(resp.Token, email); err != nil {
			return err
		}
		if err := p.store.SetName(resp.Name); err != nil {
			return err
		}
		if err := p.store.SetRole(resp.SelectedRole); err != nil {
			return err
		}

		p.state = AwaitingRoleSelection
		if resp.SelectedRole != "" {
			p.state = RoleConfirmed
		}
		logger.WithSessionFields(p.logger, email, resp.SelectedRole).Info("logged in")
		return nil
	})
}

// SubmitResume uploads a resume for analysis and stores the suggested roles.
// profileEmail falls back to the session account when empty.
func (p *Pipeline) SubmitResume(ctx context.Context, file *backend.File, profileEmail string) error {
	if file == nil || len(file.Data) == 0 {
		return career.Validationf("resume file is required")
	}

	ctx, gen, done, err := p.begin(ctx, func(State) error {
		if !p.store.Authenticated() {
			return career.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer done()

	if profileEmail == "" {
		profileEmail = p.store.Email()
	}

	resp, err := p.backend.UploadResume(ctx, *file, "", profileEmail)
	if err != nil {
		return p.fail(gen, -1, fmt.Errorf("submitting resume %q: %w", file.Name, err))
	}

	roles := p.roles(resp.SuggestedRoles)

	return p.commit(gen, func() error {
		p.store.SetAnalysis(career.ResumeAnalysis{Summary: resp.Summary, SuggestedRoles: roles})
		p.state = AwaitingRoleSelection

		logger.WithSessionFields(p.logger, profileEmail, p.store.Role()).Info("resume analysed",
			zap.Strings("suggested_roles", roles))
		return nil
	})
}

// ConfirmRole selects role and triggers roadmap and projects generation.
// A failed generation does not revert the confirmation: the returned report
// lists what failed and the error wraps career.ErrPartialFailure.
func (p *Pipeline) ConfirmRole(ctx context.Context, role string) (GenerationReport, error) {
	role = strings.TrimSpace(role)

	ctx, gen, done, err := p.begin(ctx, func(s State) error {
		if role == "" {
			return career.Preconditionf("role is required")
		}
		if !p.store.Authenticated() {
			return career.ErrUnauthenticated
		}
		if s < AwaitingRoleSelection {
			return career.Preconditionf("role confirmation requires a registered account, state is %s", s)
		}
		return nil
	})
	if err != nil {
		return GenerationReport{}, err
	}
	defer done()

	if err := p.backend.SelectRole(ctx, role); err != nil {
		return GenerationReport{}, p.fail(gen, -1, fmt.Errorf("selecting role %q: %w", role, err))
	}

	err = p.commit(gen, func() error {
		if err := p.store.SetRole(role); err != nil {
			return err
		}
		p.state = RoleConfirmed
		p.report = nil
		return nil
	})
	if err != nil {
		return GenerationReport{}, err
	}

	report := GenerationReport{Role: role, Results: p.generate(ctx, role, Steps)}

	return p.finishReport(gen, report)
}

// RetryGeneration re-runs the steps that failed in the last report. A
// pipeline that has not confirmed a role itself, such as one built by a
// restarted process, re-runs every step for the stored role.
func (p *Pipeline) RetryGeneration(ctx context.Context) (GenerationReport, error) {
	var (
		previous GenerationReport
		steps    []Step
	)

	ctx, gen, done, err := p.begin(ctx, func(s State) error {
		if !p.store.Authenticated() {
			return career.ErrUnauthenticated
		}
		if s != RoleConfirmed {
			return career.Preconditionf("no role confirmation to retry, state is %s", s)
		}
		if p.report == nil {
			previous = GenerationReport{Role: p.store.Role()}
			for _, step := range Steps {
				previous.Results = append(previous.Results, StepResult{Step: step})
			}
			steps = Steps
			return nil
		}
		if p.report.OK() {
			return career.Preconditionf("generation for %q already succeeded", p.report.Role)
		}
		previous = *p.report
		steps = previous.Failed()
		return nil
	})
	if err != nil {
		return GenerationReport{}, err
	}
	defer done()

	retried := p.generate(ctx, previous.Role, steps)

	return p.finishReport(gen, previous.merge(retried))
}

// Reset abandons the onboarding flow. Any in-flight call is cancelled and
// its response discarded; the state is derived again from the store.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.abandonLocked()
	p.state = stateFromStore(p.store)
}

// Logout abandons the flow and clears the store in one step, so no late
// response can write credentials back.
func (p *Pipeline) Logout() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.abandonLocked()
	p.state = Anonymous
	return p.store.Clear()
}

func (p *Pipeline) abandonLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = nil
	p.busy = false
	p.report = nil
	p.store.ClearAnalysis()
}

func (p *Pipeline) generate(ctx context.Context, role string, steps []Step) []StepResult {
	results := make([]StepResult, len(steps))
	log := logger.WithSessionFields(p.logger, p.store.Email(), role)

	// Steps are independent: both always run, so the group context is not used.
	var g errgroup.Group
	for i, step := range steps {
		g.Go(func() error {
			err := p.runStep(ctx, step, role)
			if err != nil {
				err = fmt.Errorf("%s generation: %w", step, err)
				log.Warn("generation failed", zap.String("step", string(step)), zap.Error(err))
			} else {
				log.Info("generation done", zap.String("step", string(step)))
			}
			results[i] = StepResult{Step: step, Err: err}
			return err
		})
	}
	_ = g.Wait()

	return results
}

func (p *Pipeline) runStep(ctx context.Context, step Step, role string) error {
	switch step {
	case StepRoadmap:
		return p.backend.GenerateRoadmap(ctx, role)
	case StepProjects:
		return p.backend.GenerateProjects(ctx, role)
	default:
		return fmt.Errorf("unknown generation step %q", step)
	}
}

func (p *Pipeline) finishReport(gen uint64, report GenerationReport) (GenerationReport, error) {
	err := p.commit(gen, func() error {
		p.report = &report
		return nil
	})
	if err != nil {
		return report, err
	}

	if !report.OK() {
		return report, fmt.Errorf("%w: %w", career.ErrPartialFailure, report.Err())
	}
	return report, nil
}

func (p *Pipeline) roles(raw any) []string {
	out := normalize.Roles(raw)
	if !out.OK() {
		p.logger.Debug("suggested roles fell back", zap.String("reason", string(out.Fallback)))
	}
	return out.Items
}

func (p *Pipeline) check(v any) error {
	err := p.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return career.Validationf("invalid %s", strings.Join(fields, ", "))
	}
	return career.Validationf("%v", err)
}

// begin claims the single operation slot. guard runs under the lock and may
// reject the call based on the current state.
func (p *Pipeline) begin(ctx context.Context, guard func(State) error) (context.Context, uint64, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy {
		return nil, 0, nil, career.ErrBusy
	}
	if err := guard(p.state); err != nil {
		return nil, 0, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p.busy = true
	p.cancel = cancel
	gen := p.gen

	done := func() {
		p.mu.Lock()
		if p.gen == gen {
			p.busy = false
			p.cancel = nil
		}
		p.mu.Unlock()
		cancel()
	}

	return ctx, gen, done, nil
}

func (p *Pipeline) setState(gen uint64, s State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen == gen {
		p.state = s
	}
}

// fail reports err for generation gen, moving to revert when it is a valid
// state. A stale generation yields career.ErrStale instead.
func (p *Pipeline) fail(gen uint64, revert State, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		return career.ErrStale
	}
	if revert >= Anonymous {
		p.state = revert
	}
	return err
}

// commit applies a successful response unless a reset happened meanwhile.
func (p *Pipeline) commit(gen uint64, apply func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		return career.ErrStale
	}
	return apply()
}
