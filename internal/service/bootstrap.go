package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/ports"
)

// EnsureCEO creates the CEO account unless a shop with that email exists. It reports whether
// an account was created. CEOs cannot be created through the API by anyone else.
func EnsureCEO(ctx context.Context, shops ports.ShopStore, name, email, password string) (*domain.Shop, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, false, fmt.Errorf("%w: ceo email and password are required", domain.ErrInvalidInput)
	}
	existing, err := shops.GetShopByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()
	ceo := &domain.Shop{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCEO,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := shops.CreateShop(ctx, ceo); err != nil {
		return nil, false, err
	}
	return ceo, true, nil
}
