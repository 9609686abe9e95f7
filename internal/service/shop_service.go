package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopledger-backend/internal/authz"
	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/ports"
)

type ShopService struct {
	Shops  ports.ShopStore
	Auth   AuthService
	Logger *slog.Logger
	Now    func() time.Time
}

type CreateShopInput struct {
	Name       string  `validate:"required,max=120"`
	Email      string  `validate:"required,email"`
	Password   string  `validate:"required"`
	Role       string  `validate:"omitempty,role"`
	TimerOfDay *string `validate:"omitempty,hhmm"`
}

// UpdateShopInput changes only the non-nil fields. An empty TimerOfDay clears the timer.
type UpdateShopInput struct {
	Name       *string `validate:"omitempty,min=1,max=120"`
	Email      *string `validate:"omitempty,email"`
	Password   *string `validate:"omitempty,strongpassword"`
	Role       *string `validate:"omitempty,role"`
	TimerOfDay *string `validate:"omitempty,hhmm"`
}

// ShopUpdate is the result of an update. Token is set when a shop changed its own account.
type ShopUpdate struct {
	Shop  domain.Shop
	Token *AuthResult
}

func (s ShopService) Create(ctx context.Context, p domain.Principal, in CreateShopInput) (*domain.Shop, error) {
	if err := authz.Authorize(p, authz.ActionManageShop, ""); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.TimerOfDay != nil && *in.TimerOfDay == "" {
		in.TimerOfDay = nil
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.Shops.GetShopByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	role := domain.RoleShop
	if in.Role != "" {
		role = domain.Role(in.Role)
	}
	now := s.now()
	shop := &domain.Shop{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		TimerOfDay:   in.TimerOfDay,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Shops.CreateShop(ctx, shop); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.log().Error("create shop failed", "email", in.Email, "err", err)
		}
		return nil, err
	}
	s.log().Info("shop created", "shop_id", shop.ID, "role", shop.Role, "by", p.ID)
	return shop, nil
}

func (s ShopService) Update(ctx context.Context, p domain.Principal, id string, in UpdateShopInput) (*ShopUpdate, error) {
	if err := authz.Authorize(p, authz.ActionUpdateShop, id); err != nil {
		return nil, err
	}
	if in.Role != nil {
		if err := authz.Authorize(p, authz.ActionAssignRole, id); err != nil {
			return nil, fmt.Errorf("%w: only a CEO can change shop roles", domain.ErrForbidden)
		}
	}
	clearTimer := in.TimerOfDay != nil && *in.TimerOfDay == ""
	if clearTimer {
		in.TimerOfDay = nil
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	shop, err := s.Shops.GetShop(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("shop %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	if in.Name != nil {
		shop.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		shop.Email = strings.TrimSpace(*in.Email)
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		shop.PasswordHash = hash
	}
	if in.Role != nil {
		shop.Role = domain.Role(*in.Role)
	}
	switch {
	case clearTimer:
		shop.TimerOfDay = nil
	case in.TimerOfDay != nil:
		timer := *in.TimerOfDay
		shop.TimerOfDay = &timer
	}
	shop.UpdatedAt = s.now()

	if err := s.Shops.SaveShop(ctx, shop); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) && !errors.Is(err, domain.ErrNotFound) {
			s.log().Error("save shop failed", "shop_id", id, "err", err)
		}
		return nil, err
	}
	s.log().Info("shop updated", "shop_id", id, "by", p.ID)

	out := &ShopUpdate{Shop: *shop}
	if p.ShopID == shop.ID {
		tok, err := s.Auth.IssueToken(shop)
		if err != nil {
			return nil, err
		}
		out.Token = tok
	}
	return out, nil
}

// Delete removes a shop together with all of its daily records.
func (s ShopService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if err := authz.Authorize(p, authz.ActionDeleteShop, id); err != nil {
		return err
	}
	if err := s.Shops.DeleteShop(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("shop %s: %w", id, domain.ErrNotFound)
		}
		s.log().Error("delete shop failed", "shop_id", id, "err", err)
		return err
	}
	s.log().Info("shop deleted", "shop_id", id, "by", p.ID)
	return nil
}

func (s ShopService) List(ctx context.Context, p domain.Principal) ([]domain.Shop, error) {
	if err := authz.Authorize(p, authz.ActionManageShop, ""); err != nil {
		return nil, err
	}
	return s.Shops.ListShops(ctx)
}

func (s ShopService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Shop, error) {
	if err := authz.Authorize(p, authz.ActionReadShop, id); err != nil {
		return nil, err
	}
	shop, err := s.Shops.GetShop(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("shop %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return shop, nil
}

// GetByName lets a shop look up only its own name; a CEO may look up any.
func (s ShopService) GetByName(ctx context.Context, p domain.Principal, name string) (*domain.Shop, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !p.IsCEO() && p.Name != name {
		return nil, fmt.Errorf("%w: not allowed to fetch another shop", domain.ErrForbidden)
	}
	shop, err := s.Shops.GetShopByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("shop %q: %w", name, domain.ErrNotFound)
		}
		return nil, err
	}
	if err := authz.Authorize(p, authz.ActionReadShop, shop.ID); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s ShopService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s ShopService) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
