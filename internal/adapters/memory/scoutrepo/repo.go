package scoutrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/scoutbook-labs/badge-tracker/internal/domain"
	"github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

// Repo is an in-memory implementation of scoutrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.ScoutID]scoutrepo.Scout
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.ScoutID]scoutrepo.Scout),
	}
}

func (r *Repo) Create(ctx context.Context, s scoutrepo.Scout) error {
	_ = ctx
	if s.ID == "" {
		return scoutrepo.ErrAlreadyExists // treat empty ID as invalid; the service always assigns one
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; ok {
		return scoutrepo.ErrAlreadyExists
	}
	r.byID[s.ID] = cloneScout(s)
	return nil
}

func (r *Repo) Update(ctx context.Context, s scoutrepo.Scout) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[s.ID]
	if !ok {
		return scoutrepo.ErrNotFound
	}
	updated := cloneScout(s)
	updated.CreatedAt = existing.CreatedAt
	r.byID[s.ID] = updated
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ScoutID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return scoutrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ScoutID) (scoutrepo.Scout, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return scoutrepo.Scout{}, scoutrepo.ErrNotFound
	}
	return cloneScout(s), nil
}

func (r *Repo) List(ctx context.Context) ([]scoutrepo.Scout, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoutrepo.Scout, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, cloneScout(s))
	}
	sortScoutsByName(out)
	return out, nil
}

func cloneScout(s scoutrepo.Scout) scoutrepo.Scout {
	out := s
	out.Troop = cloneStringPtr(s.Troop)
	out.Email = cloneStringPtr(s.Email)
	if s.Age != nil {
		v := *s.Age
		out.Age = &v
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortScoutsByName(ss []scoutrepo.Scout) {
	sort.Slice(ss, func(i, j int) bool {
		ni := strings.ToLower(ss[i].Name)
		nj := strings.ToLower(ss[j].Name)
		if ni == nj {
			return string(ss[i].ID) < string(ss[j].ID)
		}
		return ni < nj
	})
}
