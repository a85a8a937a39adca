package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopcore/shopcore/internal/domain/actor"
	"github.com/shopcore/shopcore/internal/domain/authz"
	"github.com/shopcore/shopcore/internal/domain/event"
	domprod "github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/observability"
	"github.com/shopcore/shopcore/internal/observability/logctx"
)

const (
	productService = "product-service"
	publishTimeout = 300 * time.Millisecond
)

type IDGenerator interface {
	NewID() string
}

// Service covers the catalog operations. Writes go through the
// authorization engine; premium sellers own what they create, everything
// else lands under the platform owner.
type Service struct {
	repo      domprod.Repository
	stocks    domprod.StockStore
	engine    *authz.Engine
	ids       IDGenerator
	publisher event.Publisher

	log observability.Logger
}

func NewService(
	repo domprod.Repository,
	stocks domprod.StockStore,
	engine *authz.Engine,
	ids IDGenerator,
	publisher event.Publisher,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:      repo,
		stocks:    stocks,
		engine:    engine,
		ids:       ids,
		publisher: publisher,
		log:       tel.Logger().With(observability.F("service", productService)),
	}
}

type CreateInput struct {
	Title       string
	Description string
	Code        string
	Category    string
	Price       float64
	Stock       int
}

func (s *Service) Create(ctx context.Context, act *actor.Actor, in CreateInput) (*domprod.Product, error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}
	if err := s.engine.Authorize(authz.Input{
		ActorID: act.ID,
		Role:    act.Role,
		Action:  authz.ProductCreate,
	}); err != nil {
		return nil, err
	}

	exists, err := s.repo.CodeExists(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("product: code lookup: %w", err)
	}
	if exists {
		return nil, domprod.ErrCodeExists
	}

	owner := domprod.OwnerPlatform
	if act.Role == actor.RolePremium {
		owner = act.ID
	}

	p, err := domprod.New(s.ids.NewID(), owner, in.Title, in.Code, in.Category, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	p.Description = in.Description

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	if err := s.stocks.SetStock(ctx, p.ID, p.Stock); err != nil {
		// Undo the catalog write: a product without tracked stock would
		// fail every reservation against it.
		if derr := s.repo.Delete(ctx, p.ID); derr != nil {
			logctx.FromOr(ctx, s.log).Error("product_create_rollback_failed",
				observability.F("product_id", p.ID),
				observability.F("error", derr.Error()),
			)
		}
		return nil, fmt.Errorf("product: seed stock: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("product_created",
		observability.F("product_id", p.ID),
		observability.F("owner_id", p.OwnerID),
		observability.F("code", p.Code),
	)
	return p.Clone(), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domprod.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.overlayStock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, opts domprod.ListOptions) (*domprod.Page, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}
	page, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, p := range page.Products {
		if err := s.overlayStock(ctx, p); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// overlayStock replaces the catalog's stock snapshot with the tracked
// value. The catalog field only records what the product was seeded with;
// reservations mutate the StockStore, which may live in a separate
// backend.
func (s *Service) overlayStock(ctx context.Context, p *domprod.Product) error {
	n, err := s.stocks.Stock(ctx, p.ID)
	if errors.Is(err, domprod.ErrNotFound) {
		p.Stock = 0
		return nil
	}
	if err != nil {
		return fmt.Errorf("product: read stock: %w", err)
	}
	p.Stock = n
	return nil
}

func (s *Service) Update(ctx context.Context, act *actor.Actor, id string, u domprod.Update) (*domprod.Product, error) {
	if act == nil {
		return nil, authz.ErrUnauthenticated
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(authz.Input{
		ActorID:       act.ID,
		Role:          act.Role,
		Action:        authz.ProductUpdate,
		ResourceOwner: p.OwnerID,
	}); err != nil {
		return nil, err
	}

	if u.Code != nil && *u.Code != p.Code {
		exists, err := s.repo.CodeExists(ctx, *u.Code)
		if err != nil {
			return nil, fmt.Errorf("product: code lookup: %w", err)
		}
		if exists {
			return nil, domprod.ErrCodeExists
		}
	}

	next := p.Clone()
	if err := next.Apply(u); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

func (s *Service) Delete(ctx context.Context, act *actor.Actor, id string) error {
	if act == nil {
		return authz.ErrUnauthenticated
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.engine.Authorize(authz.Input{
		ActorID:       act.ID,
		Role:          act.Role,
		Action:        authz.ProductDelete,
		ResourceOwner: p.OwnerID,
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.stocks.Remove(ctx, id); err != nil && !errors.Is(err, domprod.ErrNotFound) {
		logctx.FromOr(ctx, s.log).Warn("stock_remove_failed",
			observability.F("product_id", id),
			observability.F("error", err.Error()),
		)
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, domprod.NewDeletedEvent(p)); err != nil {
			logctx.FromOr(ctx, s.log).Warn("product_deleted_event_failed",
				observability.F("product_id", id),
				observability.F("error", err.Error()),
			)
		}
	}
	return nil
}
