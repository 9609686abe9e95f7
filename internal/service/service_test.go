package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopledger-backend/internal/config"
	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/store/memory"
)

var testNow = time.Date(2025, 9, 26, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	auth  AuthService
	shops ShopService
	ceo   domain.Principal
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	auth := AuthService{
		Config: config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour},
		Shops:  store,
		Now:    func() time.Time { return testNow },
	}
	f := fixture{
		store: store,
		auth:  auth,
		shops: ShopService{Shops: store, Auth: auth, Now: func() time.Time { return testNow }},
	}
	hash, err := HashPassword("Boss!Pass1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	ceo := &domain.Shop{ID: "ceo", Name: "Head Office", Email: "ceo@example.com", PasswordHash: hash, Role: domain.RoleCEO}
	if err := store.CreateShop(context.Background(), ceo); err != nil {
		t.Fatalf("seed ceo: %v", err)
	}
	f.ceo = ceo.Principal()
	return f
}

func (f fixture) createShop(t *testing.T, name, email string) *domain.Shop {
	t.Helper()
	sh, err := f.shops.Create(context.Background(), f.ceo, CreateShopInput{Name: name, Email: email, Password: "Shop!Pass1"})
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	return sh
}

func TestLoginAndPrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shop := f.createShop(t, "Shop A", "a@example.com")

	if _, err := f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}

	res, err := f.auth.Login(ctx, LoginInput{Email: " a@example.com ", Password: "Shop!Pass1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("ExpiresAt = %v", res.ExpiresAt)
	}

	p, err := f.auth.Principal(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Principal: %v", err)
	}
	if p.ID != shop.ID || p.ShopID != shop.ID || p.Role != domain.RoleShop || p.Name != "Shop A" {
		t.Fatalf("principal = %+v", p)
	}

	if err := f.shops.Delete(ctx, f.ceo, shop.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.auth.Principal(ctx, res.AccessToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("token of deleted shop err = %v", err)
	}
}

func TestPrincipalRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shop, _ := f.store.GetShop(ctx, "ceo")

	other := f.auth
	other.Config.JWTSecret = "another-secret"
	forged, err := other.IssueToken(shop)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	expired := f.auth
	expired.Now = func() time.Time { return testNow.Add(-2 * time.Hour) }
	old, err := expired.IssueToken(shop)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	for name, tok := range map[string]string{"empty": "", "garbage": "abc.def.ghi", "forged": forged.AccessToken, "expired": old.AccessToken} {
		if _, err := f.auth.Principal(ctx, tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s token err = %v", name, err)
		}
	}
}

func TestCreateShopRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shop := f.createShop(t, "Shop A", "a@example.com")
	if shop.Role != domain.RoleShop || shop.TimerOfDay != nil || shop.PasswordHash == "Shop!Pass1" {
		t.Fatalf("created shop = %+v", shop)
	}

	timer := "17:30"
	tests := []struct {
		name string
		p    domain.Principal
		in   CreateShopInput
		want error
	}{
		{"shop cannot create", shop.Principal(), CreateShopInput{Name: "B", Email: "b@example.com", Password: "x"}, domain.ErrForbidden},
		{"duplicate email", f.ceo, CreateShopInput{Name: "B", Email: "A@example.com", Password: "x"}, domain.ErrDuplicateEmail},
		{"bad email", f.ceo, CreateShopInput{Name: "B", Email: "nope", Password: "x"}, domain.ErrInvalidInput},
		{"bad timer", f.ceo, CreateShopInput{Name: "B", Email: "b@example.com", Password: "x", TimerOfDay: ptr("25:00")}, domain.ErrInvalidInput},
		{"bad role", f.ceo, CreateShopInput{Name: "B", Email: "b@example.com", Password: "x", Role: "ADMIN"}, domain.ErrInvalidInput},
		{"ok with timer", f.ceo, CreateShopInput{Name: "B", Email: "b@example.com", Password: "x", TimerOfDay: &timer}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.shops.Create(ctx, tt.p, tt.in)
			if tt.want == nil && err != nil || tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateShopRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createShop(t, "Shop A", "a@example.com")
	b := f.createShop(t, "Shop B", "b@example.com")

	if _, err := f.shops.Update(ctx, a.Principal(), b.ID, UpdateShopInput{Name: ptr("x")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update other shop err = %v", err)
	}
	if _, err := f.shops.Update(ctx, a.Principal(), a.ID, UpdateShopInput{Role: ptr("CEO")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("self promotion err = %v", err)
	}
	if _, err := f.shops.Update(ctx, a.Principal(), a.ID, UpdateShopInput{Password: ptr("weakpass")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("weak password err = %v", err)
	}
	if _, err := f.shops.Update(ctx, a.Principal(), a.ID, UpdateShopInput{Email: ptr("b@example.com")}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("email clash err = %v", err)
	}

	res, err := f.shops.Update(ctx, a.Principal(), a.ID, UpdateShopInput{Name: ptr("Shop A2"), TimerOfDay: ptr("08:15"), Password: ptr("N3w!Password")})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if res.Token == nil || res.Shop.Name != "Shop A2" || *res.Shop.TimerOfDay != "08:15" {
		t.Fatalf("self update result = %+v", res)
	}
	if _, err := f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "N3w!Password"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	res, err = f.shops.Update(ctx, f.ceo, a.ID, UpdateShopInput{Role: ptr("CEO"), TimerOfDay: ptr("")})
	if err != nil {
		t.Fatalf("ceo update: %v", err)
	}
	if res.Token != nil || res.Shop.Role != domain.RoleCEO || res.Shop.TimerOfDay != nil {
		t.Fatalf("ceo update result = %+v", res)
	}

	if _, err := f.shops.Update(ctx, f.ceo, "missing", UpdateShopInput{Name: ptr("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing shop err = %v", err)
	}
}

func TestShopReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createShop(t, "Shop A", "a@example.com")
	b := f.createShop(t, "Shop B", "b@example.com")

	if _, err := f.shops.List(ctx, a.Principal()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("shop list err = %v", err)
	}
	all, err := f.shops.List(ctx, f.ceo)
	if err != nil || len(all) != 3 {
		t.Fatalf("ceo list = %d shops, err %v", len(all), err)
	}

	if _, err := f.shops.Get(ctx, a.Principal(), b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("get other err = %v", err)
	}
	if got, err := f.shops.Get(ctx, a.Principal(), a.ID); err != nil || got.ID != a.ID {
		t.Fatalf("get self = %v, %v", got, err)
	}
	if _, err := f.shops.GetByName(ctx, a.Principal(), "Shop B"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("by name other err = %v", err)
	}
	if got, err := f.shops.GetByName(ctx, f.ceo, "Shop B"); err != nil || got.ID != b.ID {
		t.Fatalf("ceo by name = %v, %v", got, err)
	}
	if _, err := f.shops.GetByName(ctx, f.ceo, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("by name missing err = %v", err)
	}
	if err := f.shops.Delete(ctx, a.Principal(), b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete other err = %v", err)
	}
	if err := f.shops.Delete(ctx, a.Principal(), a.ID); err != nil {
		t.Fatalf("delete self: %v", err)
	}
}

func TestStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"P@ssw0rd123!":  true,
		"Short1!":       false,
		"nouppercase1!": false,
		"NOLOWERCASE1!": false,
		"NoDigits!!":    false,
		"NoSpecial123":  false,
	}
	for in, want := range tests {
		if got := strongPassword(in); got != want {
			t.Errorf("strongPassword(%q) = %v, want %v", in, got, want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestEnsureCEO(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	ceo, created, err := EnsureCEO(ctx, store, "Boss", "boss@example.com", "Boss!Pass1")
	if err != nil || !created || ceo.Role != domain.RoleCEO {
		t.Fatalf("first EnsureCEO = %+v, %v, %v", ceo, created, err)
	}
	again, created, err := EnsureCEO(ctx, store, "Boss", "BOSS@example.com", "other")
	if err != nil || created || again.ID != ceo.ID {
		t.Fatalf("second EnsureCEO = %+v, %v, %v", again, created, err)
	}
	if _, _, err := EnsureCEO(ctx, store, "Boss", "", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty credentials err = %v", err)
	}
}
