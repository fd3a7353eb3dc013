// Package memory provides in-memory implementations of the repository
// interfaces for tests and single-process development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/clubvote/clubvote-go/internal/model"
)

type CandidateStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Candidate
	order []string // insertion order of candidate IDs
}

func NewCandidateStore() *CandidateStore {
	return &CandidateStore{byID: make(map[string]model.Candidate)}
}

func (s *CandidateStore) Insert(_ context.Context, c model.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.Club == c.Club && existing.Position == c.Position && existing.Name == c.Name {
			return model.Validationf("candidate %q already exists for %s/%s", c.Name, c.Club, c.Position)
		}
	}
	s.byID[c.ID] = c
	s.order = append(s.order, c.ID)
	return nil
}

func (s *CandidateStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *CandidateStore) GetByID(_ context.Context, id string) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return model.Candidate{}, model.NotFoundf("candidate %s", id)
	}
	return c, nil
}

func (s *CandidateStore) ListByRace(_ context.Context, club, position string) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Candidate
	for _, id := range s.order {
		c, ok := s.byID[id]
		if ok && c.Club == club && c.Position == position {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CandidateStore) CountAll(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

type WindowStore struct {
	mu      sync.RWMutex
	windows map[model.RaceKey]model.ElectionWindow
}

func NewWindowStore() *WindowStore {
	return &WindowStore{windows: make(map[model.RaceKey]model.ElectionWindow)}
}

func (s *WindowStore) Get(_ context.Context, club, position string) (model.ElectionWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[model.RaceKey{Club: club, Position: position}]
	if !ok {
		return model.ElectionWindow{}, model.NotFoundf("no election window for %s/%s", club, position)
	}
	return w, nil
}

func (s *WindowStore) Save(_ context.Context, w model.ElectionWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[model.RaceKey{Club: w.Club, Position: w.Position}] = w
	return nil
}

func (s *WindowStore) List(_ context.Context) ([]model.ElectionWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ElectionWindow, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Club != out[j].Club {
			return out[i].Club < out[j].Club
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string]model.BiometricTemplate
	order     []string
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[string]model.BiometricTemplate)}
}

func (s *TemplateStore) Get(_ context.Context, voterID string) (model.BiometricTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[voterID]
	if !ok {
		return model.BiometricTemplate{}, model.NotFoundf("no template for voter")
	}
	return tpl, nil
}

func (s *TemplateStore) List(_ context.Context) ([]model.BiometricTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.BiometricTemplate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.templates[id])
	}
	return out, nil
}

func (s *TemplateStore) Insert(_ context.Context, tpl model.BiometricTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[tpl.VoterID]; ok {
		return model.Validationf("voter already enrolled")
	}
	s.templates[tpl.VoterID] = tpl
	s.order = append(s.order, tpl.VoterID)
	return nil
}
