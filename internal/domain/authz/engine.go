package authz

import (
	"errors"
	"fmt"

	"github.com/shopcore/shopcore/internal/domain/actor"
)

var (
	ErrUnauthenticated = errors.New("authz: no authenticated actor")
	ErrDenied          = errors.New("authz: denied")
)

const (
	ReasonRoleNotPermitted = "role not permitted"
	ReasonNotResourceOwner = "not resource owner"
	ReasonSellerCannotBuy  = "sellers cannot add items to a cart"
)

// DeniedError carries the denied action and the actor's role alongside the
// table/rule reason.
type DeniedError struct {
	Action Action
	Role   actor.Role
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authz: %s denied for role %s: %s", e.Action, e.Role, e.Reason)
}

func (e *DeniedError) Is(target error) bool { return target == ErrDenied }

// Decision is the transient outcome of a policy evaluation.
type Decision struct {
	Allow  bool
	Reason string
}

// Input holds everything a decision is a function of. ResourceOwner is only
// consulted for ownership-sensitive actions and may be left empty when the
// caller has no owning resource in hand.
type Input struct {
	ActorID       string
	Role          actor.Role
	Action        Action
	ResourceOwner string
}

// PlatformOwner is the sentinel owner for products not created by a premium
// seller.
const PlatformOwner = "platform"

// Engine evaluates actor role and resource ownership against an immutable
// policy table. It performs no I/O and never blocks: two calls with
// identical inputs always produce identical decisions.
type Engine struct {
	table Table
	// platformUpdateExempt lets non-admin updates through when the product
	// is platform-owned. Off by default: strict ownership applies to update
	// and delete uniformly.
	platformUpdateExempt bool
}

type Option func(*Engine)

// WithPlatformUpdateExemption restores the legacy behavior where updating a
// platform-owned product is not blocked by the ownership rule.
func WithPlatformUpdateExemption() Option {
	return func(e *Engine) { e.platformUpdateExempt = true }
}

func NewEngine(table Table, opts ...Option) *Engine {
	e := &Engine{table: table}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide evaluates the policy table plus the two named exception rules:
// admin bypasses ownership checks, and seller roles may never add items to
// a cart even where the table would let them.
func (e *Engine) Decide(in Input) Decision {
	if !e.table.Permits(in.Role, in.Action) {
		return Decision{Reason: ReasonRoleNotPermitted}
	}

	if in.Action == CartAddProduct && in.Role != actor.RoleUser {
		return Decision{Reason: ReasonSellerCannotBuy}
	}

	if ownershipSensitive(in.Action) && in.Role != actor.RoleAdmin {
		if in.ResourceOwner != "" && in.ResourceOwner != in.ActorID {
			if e.platformUpdateExempt && in.Action == ProductUpdate && in.ResourceOwner == PlatformOwner {
				return Decision{Allow: true}
			}
			return Decision{Reason: ReasonNotResourceOwner}
		}
	}

	return Decision{Allow: true}
}

// Authorize is Decide folded into the error domain: nil on allow, a
// *DeniedError otherwise.
func (e *Engine) Authorize(in Input) error {
	if d := e.Decide(in); !d.Allow {
		return &DeniedError{Action: in.Action, Role: in.Role, Reason: d.Reason}
	}
	return nil
}

func ownershipSensitive(a Action) bool {
	return a == ProductUpdate || a == ProductDelete
}
