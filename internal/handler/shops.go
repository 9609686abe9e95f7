package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/server/authctx"
	"shopledger-backend/internal/service"
)

type ShopHandler struct {
	Service      *service.ShopService
	CookieName   string
	SecureCookie bool
}

func (h ShopHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shops", h.list)
	r.Post("/shops", h.create)
	r.Get("/shops/by-name/{name}", h.getByName)
	r.Get("/shops/{id}", h.get)
	r.Patch("/shops/{id}", h.update)
	r.Delete("/shops/{id}", h.delete)
}

func (h ShopHandler) list(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Service.List(r.Context(), authctx.FromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(shops))
	for _, sh := range shops {
		resp = append(resp, shopResponse(sh))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ShopHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Role     string  `json:"role"`
		Timer    *string `json:"timer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	shop, err := h.Service.Create(r.Context(), authctx.FromContext(r.Context()), service.CreateShopInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		TimerOfDay: req.Timer,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shopResponse(*shop))
}

func (h ShopHandler) get(w http.ResponseWriter, r *http.Request) {
	shop, err := h.Service.Get(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shopResponse(*shop))
}

func (h ShopHandler) getByName(w http.ResponseWriter, r *http.Request) {
	shop, err := h.Service.GetByName(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shopResponse(*shop))
}

func (h ShopHandler) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Timer    *string `json:"timer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Service.Update(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "id"), service.UpdateShopInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		TimerOfDay: req.Timer,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Token != nil {
		http.SetCookie(w, authCookie(h.cookieName(), h.SecureCookie, res.Token))
	}
	writeJSON(w, http.StatusOK, shopResponse(res.Shop))
}

func (h ShopHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h ShopHandler) cookieName() string {
	if h.CookieName == "" {
		return "Authentication"
	}
	return h.CookieName
}

func shopResponse(sh domain.Shop) map[string]any {
	return map[string]any{
		"id":        sh.ID,
		"name":      sh.Name,
		"email":     sh.Email,
		"role":      string(sh.Role),
		"timer":     sh.TimerOfDay,
		"createdAt": sh.CreatedAt,
		"updatedAt": sh.UpdatedAt,
	}
}
