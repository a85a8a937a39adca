package account

import (
	"context"

	"github.com/shopcore/shopcore/internal/domain/actor"
	"github.com/shopcore/shopcore/internal/domain/authz"
	"github.com/shopcore/shopcore/internal/observability"
	"github.com/shopcore/shopcore/internal/observability/logctx"
)

const accountService = "account-service"

// Service holds the admin-gated account operations. Role changes happen
// nowhere else.
type Service struct {
	actors actor.Repository
	engine *authz.Engine

	log observability.Logger
}

func NewService(actors actor.Repository, engine *authz.Engine, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		actors: actors,
		engine: engine,
		log:    tel.Logger().With(observability.F("service", accountService)),
	}
}

func (s *Service) ListAll(ctx context.Context, act *actor.Actor) ([]*actor.Actor, error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}
	if err := s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  authz.AccountViewAll,
	}); err != nil {
		return nil, err
	}
	return s.actors.List(ctx)
}

func (s *Service) ChangeRole(ctx context.Context, act *actor.Actor, targetID string, role actor.Role) (*actor.Actor, error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}
	if err := s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  authz.AccountChangeRole,
	}); err != nil {
		return nil, err
	}

	target, err := s.actors.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := target.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.actors.Save(ctx, target); err != nil {
		return nil, err
	}

	logctx.FromOr(ctx, s.log).Info("role_changed",
		observability.F("actor_id", targetID),
		observability.F("role", string(role)),
		observability.F("changed_by", act.ID),
	)
	return target.Clone(), nil
}

func (s *Service) Delete(ctx context.Context, act *actor.Actor, targetID string) error {
	if act == nil {
		return authz.ErrUnauthenticated
	}
	if err := s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  authz.AccountDelete,
	}); err != nil {
		return err
	}
	return s.actors.Delete(ctx, targetID)
}
