package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shopledger-backend/internal/config"
	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/ports"
)

var (
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
)

type AuthService struct {
	Config config.Config
	Shops  ports.ShopStore
	Logger *slog.Logger
	Now    func() time.Time
}

type AuthResult struct {
	AccessToken string
	Shop        domain.Shop
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

type LoginInput struct {
	Email    string
	Password string
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	shop, err := s.Shops.GetShopByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(shop.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.log().Info("shop logged in", "shop_id", shop.ID, "role", shop.Role)
	return s.IssueToken(shop)
}

// Principal resolves a bearer token to the caller. The shop is re-read so that a deleted shop
// or a changed role takes effect before the token expires.
func (s AuthService) Principal(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return domain.Principal{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "access" {
		return domain.Principal{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Principal{}, ErrInvalidToken
	}

	shop, err := s.Shops.GetShop(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, ErrInvalidToken
		}
		return domain.Principal{}, err
	}
	return shop.Principal(), nil
}

// IssueToken signs an access token carrying the shop's identity and timer.
func (s AuthService) IssueToken(shop *domain.Shop) (*AuthResult, error) {
	now := s.now()
	exp := now.Add(s.Config.AccessTokenTTL)

	claims := jwt.MapClaims{
		"sub":        shop.ID,
		"name":       shop.Name,
		"email":      shop.Email,
		"role":       string(shop.Role),
		"timer":      nil,
		"token_type": "access",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}
	if shop.TimerOfDay != nil {
		claims["timer"] = *shop.TimerOfDay
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken: access,
		Shop:        *shop,
		ExpiresAt:   exp,
		ExpiresIn:   s.Config.AccessTokenTTL,
	}, nil
}

// HashPassword hashes a plain password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
