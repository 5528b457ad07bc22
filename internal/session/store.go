// Package session keeps the process wide user state: credential, identity,
// selected role and in-flight interview artifacts.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/edubridge/internal/career"
)

// Key is one of the fixed persisted keys.
type Key string

const (
	KeyToken            Key = "token"
	KeyEmail            Key = "email"
	KeyName             Key = "name"
	KeyRole             Key = "role"
	KeyPendingQuestions Key = "pending-questions"
	KeyLastResult       Key = "last-interview-result"
)

// Keys lists every persisted key. Nothing outside this set is written to disk.
var Keys = []Key{KeyToken, KeyEmail, KeyName, KeyRole, KeyPendingQuestions, KeyLastResult}

func known(k Key) bool {
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}

// Store is the single owner of session state. Pipelines mutate it, renderers only read.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[Key]json.RawMessage
	// analysis is ephemeral and never persisted.
	analysis *career.ResumeAnalysis
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemory returns a store that is not backed by a file.
func NewMemory(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		values: make(map[Key]json.RawMessage),
		logger: logger,
		now:    time.Now,
	}
}

// Open loads the store persisted at path. A missing file yields an empty store.
// An empty path is equivalent to NewMemory.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := NewMemory(logger)
	s.path = path
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file %q: %w", path, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	var stored map[Key]json.RawMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing session file %q: %w", path, err)
	}

	for k, v := range stored {
		if !known(k) {
			s.logger.Debug("ignoring unknown session key", zap.String("key", string(k)))
			continue
		}
		s.values[k] = v
	}

	return s, nil
}

// Token returns the stored credential.
func (s *Store) Token() string { return s.getString(KeyToken) }

func (s *Store) Email() string { return s.getString(KeyEmail) }

func (s *Store) Name() string { return s.getString(KeyName) }

func (s *Store) Role() string { return s.getString(KeyRole) }

// SetAuth stores the credential and identity in one write.
func (s *Store) SetAuth(token, email string) error {
	return s.setMany(map[Key]any{KeyToken: token, KeyEmail: email})
}

func (s *Store) SetEmail(email string) error { return s.set(KeyEmail, email) }

func (s *Store) SetName(name string) error { return s.set(KeyName, name) }

func (s *Store) SetRole(role string) error { return s.set(KeyRole, role) }

func (s *Store) PendingQuestions() []career.Question {
	var questions []career.Question
	s.get(KeyPendingQuestions, &questions)
	return questions
}

// SetPendingQuestions replaces the in-flight question set. A nil slice removes the key.
func (s *Store) SetPendingQuestions(questions []career.Question) error {
	if questions == nil {
		return s.remove(KeyPendingQuestions)
	}
	return s.set(KeyPendingQuestions, questions)
}

// LastResult returns the most recent interview evaluation.
func (s *Store) LastResult() (*career.InterviewResult, bool) {
	var result career.InterviewResult
	if !s.get(KeyLastResult, &result) {
		return nil, false
	}
	result.Score = career.ClampScore(result.Score)
	return &result, true
}

func (s *Store) SetLastResult(result career.InterviewResult) error {
	result.Score = career.ClampScore(result.Score)
	return s.set(KeyLastResult, result)
}

func (s *Store) ClearLastResult() error { return s.remove(KeyLastResult) }

// Analysis returns the latest resume analysis held in memory.
func (s *Store) Analysis() (career.ResumeAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.analysis == nil {
		return career.ResumeAnalysis{}, false
	}
	a := *s.analysis
	a.SuggestedRoles = append([]string(nil), s.analysis.SuggestedRoles...)
	return a, true
}

// SetAnalysis supersedes the previous resume analysis.
func (s *Store) SetAnalysis(a career.ResumeAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.SuggestedRoles = append([]string(nil), a.SuggestedRoles...)
	s.analysis = &a
}

func (s *Store) ClearAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analysis = nil
}

// Session returns a snapshot of the authenticated identity.
func (s *Store) Session() career.Session {
	sess := career.Session{
		Token:        s.Token(),
		Email:        s.Email(),
		Name:         s.Name(),
		SelectedRole: s.Role(),
	}
	if claims, ok := ParseClaims(sess.Token); ok {
		sess.ExpiresAt = claims.ExpiresAt
		if sess.Email == "" {
			sess.Email = claims.Subject
		}
	}
	return sess
}

// Authenticated reports whether a usable, unexpired token is stored.
func (s *Store) Authenticated() bool {
	return s.Session().Authenticated(s.now())
}

// Clear drops every key at once and removes the backing file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[Key]json.RawMessage)
	s.analysis = nil

	if s.path == "" {
		return nil
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %q: %w", s.path, err)
	}

	s.logger.Debug("session cleared", zap.String("path", s.path))
	return nil
}

func (s *Store) getString(k Key) string {
	var v string
	s.get(k, &v)
	return v
}

func (s *Store) get(k Key, target any) bool {
	s.mu.RLock()
	raw, ok := s.values[k]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.Warn("dropping undecodable session value", zap.String("key", string(k)), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) set(k Key, v any) error {
	return s.setMany(map[Key]any{k: v})
}

func (s *Store) setMany(kv map[Key]any) error {
	encoded := make(map[Key]json.RawMessage, len(kv))
	for k, v := range kv {
		if !known(k) {
			return fmt.Errorf("unknown session key %q", k)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding session key %q: %w", k, err)
		}
		encoded[k] = raw
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, raw := range encoded {
		s.values[k] = raw
	}
	return s.persist()
}

func (s *Store) remove(k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[k]; !ok {
		return nil
	}
	delete(s.values, k)
	return s.persist()
}

// persist writes the whole key set atomically. Callers hold s.mu.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing session file %q: %w", s.path, err)
	}

	return nil
}
