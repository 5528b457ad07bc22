// Package coach wires the session store, the API client and both pipelines
// into one application object used by the commands.
package coach

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/backend"
	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/interview"
	"github.com/spigell/edubridge/internal/logger"
	"github.com/spigell/edubridge/internal/normalize"
	"github.com/spigell/edubridge/internal/onboarding"
	"github.com/spigell/edubridge/internal/session"
)

type Config struct {
	APIURL      string
	SessionFile string
	UserAgent   string
	Timeout     time.Duration
}

// Backend is everything the application needs from the remote API.
type Backend interface {
	onboarding.Backend
	interview.Backend
	FetchProfile(ctx context.Context) (*backend.ProfileResponse, error)
}

type App struct {
	Store      *session.Store
	Onboarding *onboarding.Pipeline
	Interview  *interview.Session

	backend Backend
	logger  *zap.Logger
}

// New opens the session store and builds an HTTP backed application.
func New(cfg Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := session.Open(cfg.SessionFile, log)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	client := backend.New(log, store.Token)
	if cfg.APIURL != "" {
		client.APIURL = cfg.APIURL
	}
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	return Assemble(store, client, log), nil
}

// Assemble builds an application around an existing store and backend.
func Assemble(store *session.Store, b Backend, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}

	return &App{
		Store:      store,
		Onboarding: onboarding.New(store, b, log.Named("onboarding")),
		Interview:  interview.New(store, b, log.Named("interview")),
		backend:    b,
		logger:     log,
	}
}

// Logout is the universal recovery path: both pipelines are reset, in-flight
// calls are cancelled and every persisted key is dropped at once.
func (a *App) Logout() error {
	email := a.Store.Email()

	a.Interview.Reset()

	if err := a.Onboarding.Logout(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	logger.WithSessionFields(a.logger, email, "").Info("logged out")
	return nil
}

// Profile fetches the account overview and refreshes the stored identity.
func (a *App) Profile(ctx context.Context) (career.Profile, error) {
	if !a.Store.Authenticated() {
		return career.Profile{}, career.ErrUnauthenticated
	}

	resp, err := a.backend.FetchProfile(ctx)
	if err != nil {
		return career.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}

	if err := a.refresh(resp); err != nil {
		return career.Profile{}, err
	}

	log := logger.WithSessionFields(a.logger, resp.Email, resp.SelectedRole)

	roadmap, reason := normalize.Roadmap(resp.Roadmap)
	if reason != normalize.OK && reason != normalize.ReasonAbsent {
		log.Warn("roadmap fell back", zap.String("reason", string(reason)))
	}

	projects := normalize.Projects(resp.Projects)
	if !projects.OK() && projects.Fallback != normalize.ReasonAbsent {
		log.Warn("projects fell back", zap.String("reason", string(projects.Fallback)))
	}

	return career.Profile{
		Name:         resp.Name,
		Email:        resp.Email,
		SelectedRole: resp.SelectedRole,
		Roadmap:      roadmap,
		Projects:     projects.Items,
	}, nil
}

func (a *App) Roadmap(ctx context.Context) (career.Roadmap, error) {
	p, err := a.Profile(ctx)
	if err != nil {
		return career.Roadmap{}, err
	}
	return p.Roadmap, nil
}

func (a *App) Projects(ctx context.Context) ([]career.Project, error) {
	p, err := a.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return p.Projects, nil
}

// SuggestedRoles returns the roles of the latest resume analysis in this
// process or, when there is none, the ones remembered by the account.
func (a *App) SuggestedRoles(ctx context.Context) ([]string, error) {
	if roles := a.Onboarding.Suggestions(); len(roles) > 0 {
		return roles, nil
	}
	if !a.Store.Authenticated() {
		return nil, career.ErrUnauthenticated
	}

	resp, err := a.backend.FetchProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching suggested roles: %w", err)
	}

	out := normalize.Roles(resp.SuggestedRoles)
	if !out.OK() && out.Fallback != normalize.ReasonAbsent {
		a.logger.Warn("suggested roles fell back", zap.String("reason", string(out.Fallback)))
	}
	return out.Items, nil
}

func (a *App) refresh(resp *backend.ProfileResponse) error {
	if resp.Name != "" {
		if err := a.Store.SetName(resp.Name); err != nil {
			return err
		}
	}
	if resp.Email != "" && resp.Email != a.Store.Email() {
		if err := a.Store.SetEmail(resp.Email); err != nil {
			return err
		}
	}
	if resp.SelectedRole != "" && resp.SelectedRole != a.Store.Role() {
		if err := a.Store.SetRole(resp.SelectedRole); err != nil {
			return err
		}
	}
	return nil
}
