package authz

import (
	"github.com/shopcore/shopcore/internal/domain/actor"
)

// Action identifies a (resource, operation) pair in the policy table.
type Action string

const (
	ProductCreate Action = "product.create"
	ProductRead   Action = "product.read"
	ProductUpdate Action = "product.update"
	ProductDelete Action = "product.delete"

	CartAddProduct     Action = "cart.add_product"
	CartUpdateQuantity Action = "cart.update_quantity"
	CartRemoveProduct  Action = "cart.remove_product"
	CartPurchase       Action = "cart.purchase"

	AccountViewAll    Action = "account.view_all"
	AccountChangeRole Action = "account.change_role"
	AccountDelete     Action = "account.delete"
)

// Table maps each action to the roles permitted to attempt it. It is
// configuration data: built once, passed into the engine, never mutated.
type Table map[Action][]actor.Role

// DefaultTable returns the standard role policy.
func DefaultTable() Table {
	return Table{
		ProductCreate: {actor.RoleAdmin, actor.RolePremium},
		ProductRead:   {actor.RoleUser, actor.RolePremium, actor.RoleAdmin},
		ProductUpdate: {actor.RoleAdmin, actor.RolePremium},
		ProductDelete: {actor.RoleAdmin, actor.RolePremium},

		CartAddProduct:     {actor.RoleUser, actor.RolePremium},
		CartUpdateQuantity: {actor.RoleUser, actor.RolePremium},
		CartRemoveProduct:  {actor.RoleUser, actor.RolePremium},
		CartPurchase:       {actor.RoleUser, actor.RolePremium},

		AccountViewAll:    {actor.RoleAdmin},
		AccountChangeRole: {actor.RoleAdmin},
		AccountDelete:     {actor.RoleAdmin},
	}
}

// Permits reports whether the table lists role for action.
func (t Table) Permits(role actor.Role, action Action) bool {
	for _, r := range t[action] {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns a copy of the roles listed for action.
func (t Table) AllowedRoles(action Action) []actor.Role {
	roles := t[action]
	if len(roles) == 0 {
		return nil
	}
	out := make([]actor.Role, len(roles))
	copy(out, roles)
	return out
}

// Actions returns every action the table covers.
func (t Table) Actions() []Action {
	out := make([]Action, 0, len(t))
	for a := range t {
		out = append(out, a)
	}
	return out
}
