package actor

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("actor: not found")
	ErrInvalidRole = errors.New("actor: invalid role")
)

// Role is the single role an actor carries. Roles change only through the
// account service's admin-gated role-change operation.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePremium, RoleAdmin:
		return true
	}
	return false
}

// Actor is an authenticated identity as supplied by the authentication
// collaborator. CartID references the one cart the actor owns.
type Actor struct {
	ID        string
	Role      Role
	CartID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id string, role Role, cartID string) (*Actor, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	now := time.Now().UTC()
	return &Actor{
		ID:        id,
		Role:      role,
		CartID:    cartID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OwnsCart reports whether the given cart belongs to this actor.
func (a *Actor) OwnsCart(cartID string) bool {
	return a.CartID != "" && a.CartID == cartID
}

func (a *Actor) ChangeRole(role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	a.Role = role
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

type Repository interface {
	Get(ctx context.Context, id string) (*Actor, error)
	List(ctx context.Context) ([]*Actor, error)
	Save(ctx context.Context, a *Actor) error
	Delete(ctx context.Context, id string) error
}
