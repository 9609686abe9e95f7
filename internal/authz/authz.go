// Package authz holds the single policy table deciding what a principal may do with shops and
// daily records. Callers consult it before touching storage and again against the loaded row.
package authz

import (
	"fmt"

	"shopledger-backend/internal/domain"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionReadOne    Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionListAll    Action = "list_all"
	ActionListByShop Action = "list_by_shop"
	ActionAssignRole Action = "assign_role"
	ActionManageShop Action = "manage_shops"
	ActionReadShop   Action = "read_shop"
	ActionUpdateShop Action = "update_shop"
	ActionDeleteShop Action = "delete_shop"
)

type rule func(p domain.Principal, owner string) bool

func ceoOnly(p domain.Principal, _ string) bool { return p.IsCEO() }

func ceoOrOwner(p domain.Principal, owner string) bool {
	return p.IsCEO() || (owner != "" && owner == p.ShopID)
}

// create and list-by-shop never deny: their target is narrowed by CreateTarget and ListFilter.
func anyone(domain.Principal, string) bool { return true }

var policy = map[Action]rule{
	ActionCreate:     anyone,
	ActionReadOne:    ceoOrOwner,
	ActionUpdate:     ceoOrOwner,
	ActionDelete:     ceoOrOwner,
	ActionListAll:    ceoOnly,
	ActionListByShop: anyone,
	ActionAssignRole: ceoOnly,
	ActionManageShop: ceoOnly,
	ActionReadShop:   ceoOrOwner,
	ActionUpdateShop: ceoOrOwner,
	ActionDeleteShop: ceoOrOwner,
}

// Authorize decides whether p may perform action on a resource owned by owner. It returns nil,
// domain.ErrUnauthenticated or domain.ErrForbidden.
func Authorize(p domain.Principal, action Action, owner string) error {
	if !p.Authenticated() {
		return domain.ErrUnauthenticated
	}
	allow, ok := policy[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", domain.ErrForbidden, action)
	}
	if !allow(p, owner) {
		return fmt.Errorf("%w: %s not allowed for %s", domain.ErrForbidden, action, p.Role)
	}
	return nil
}

// CreateTarget resolves the shop a new record belongs to. A CEO must name one explicitly; a shop
// always writes for itself and whatever it requested is ignored.
func CreateTarget(p domain.Principal, requested string) (string, error) {
	if err := Authorize(p, ActionCreate, ""); err != nil {
		return "", err
	}
	if p.Role == domain.RoleShop {
		return p.ShopID, nil
	}
	if requested == "" {
		return "", domain.ErrMissingTarget
	}
	return requested, nil
}

// ListFilter resolves the shop filter of a listing. Shops are always narrowed to themselves;
// a CEO's filter passes through, empty meaning every shop.
func ListFilter(p domain.Principal, requested string) (string, error) {
	if p.Role == domain.RoleShop {
		if err := Authorize(p, ActionListByShop, p.ShopID); err != nil {
			return "", err
		}
		return p.ShopID, nil
	}
	if requested == "" {
		if err := Authorize(p, ActionListAll, ""); err != nil {
			return "", err
		}
		return "", nil
	}
	if err := Authorize(p, ActionListByShop, requested); err != nil {
		return "", err
	}
	return requested, nil
}
