package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/services"
	"github.com/diewo77/go-bookstore/validation"
)

type AccountHandler struct {
	accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, "login.html", nil)
		return
	}

	username := r.FormValue("username")
	user, err := h.accounts.Authenticate(r.Context(), username, r.FormValue("password"))
	if errors.Is(err, services.ErrInvalidLogin) {
		logging.Ctx(r.Context()).Info().Str("username", username).Msg("login failed")
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		render(w, r, "login.html", map[string]any{"Error": "Invalid credentials", "Username": username})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	auth.CreateSession(w, user.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"user_id": user.ID})
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, "Login successful!", "/")
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, "register.html", map[string]any{"Form": services.Registration{}})
		return
	}

	form := services.Registration{
		Username:        r.FormValue("username"),
		Fullname:        r.FormValue("fullname"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}
	_, err := h.accounts.Register(r.Context(), form)
	var v validation.Violations
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		registerFailed(w, r, form, validation.Violations{"username": "taken"})
	case errors.As(err, &v):
		registerFailed(w, r, form, v)
	case err != nil:
		serverError(w, r, err)
	default:
		flashRedirect(w, r, httpx.FlashSuccess, "Registration successful! Please login.", auth.LoginPath)
	}
}

func registerFailed(w http.ResponseWriter, r *http.Request, form services.Registration, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	form.Password, form.PasswordConfirm = "", ""
	renderStatus(w, r, http.StatusUnprocessableEntity, "register.html", map[string]any{"Form": form, "Errors": v})
}

// Profile shows the current user with its customer or staff record.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.accounts.Profile(r.Context(), currentUser(r))
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	render(w, r, "profile.html", map[string]any{"Profile": p})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	flashRedirect(w, r, httpx.FlashSuccess, "Logged out successfully!", "/")
}
