package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/server/authctx"
	"shopledger-backend/internal/service"
)

type AuthHandler struct {
	Service      *service.AuthService
	CookieName   string
	SecureCookie bool
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
}

func (h AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.me)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	res, err := h.Service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAuthResponse(w, h.cookie(res), res)
}

func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principalResponse(authctx.FromContext(r.Context())))
}

func (h AuthHandler) cookie(res *service.AuthResult) *http.Cookie {
	return authCookie(h.cookieName(), h.SecureCookie, res)
}

func (h AuthHandler) cookieName() string {
	if h.CookieName == "" {
		return "Authentication"
	}
	return h.CookieName
}

func authCookie(name string, secure bool, res *service.AuthResult) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    res.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  res.ExpiresAt,
		MaxAge:   int(res.ExpiresIn.Seconds()),
	}
}

func writeAuthResponse(w http.ResponseWriter, cookie *http.Cookie, res *service.AuthResult) {
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": res.AccessToken,
		"expiresInMs": res.ExpiresIn.Milliseconds(),
		"expiresAt":   res.ExpiresAt,
		"shop":        shopResponse(res.Shop),
	})
}

func principalResponse(p domain.Principal) map[string]any {
	return map[string]any{
		"id":     p.ID,
		"shopId": p.ShopID,
		"name":   p.Name,
		"email":  p.Email,
		"role":   string(p.Role),
	}
}
