package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/shopcore/shopcore/internal/domain/actor"
)

type ActorRepository struct {
	mu     sync.RWMutex
	actors map[string]*domain.Actor
}

func NewActorRepository() *ActorRepository {
	return &ActorRepository{
		actors: make(map[string]*domain.Actor),
	}
}

func (r *ActorRepository) Get(ctx context.Context, id string) (*domain.Actor, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *ActorRepository) List(ctx context.Context) ([]*domain.Actor, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Actor, 0, len(r.actors))
	for _, a := range r.actors {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ActorRepository) Save(ctx context.Context, a *domain.Actor) error {
	_ = ctx
	if a == nil || a.ID == "" {
		return fmt.Errorf("actor repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.actors[a.ID] = a.Clone()
	return nil
}

func (r *ActorRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.actors, id)
	return nil
}
