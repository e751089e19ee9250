// Package handlers serves the bookstore pages. Every handler renders HTML
// through the view package, or JSON when the client asks for it, and
// reports user-facing outcomes as flash messages.
package handlers

import (
	"net/http"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/view"
)

// Messages shared by several handlers.
const (
	MsgNoCustomer   = "Customer profile not found"
	MsgUnauthorized = "Unauthorized access"
	MsgEmptyCart    = "Your cart is empty"
)

func currentUser(r *http.Request) string {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

func render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	renderStatus(w, r, http.StatusOK, name, data)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// flashRedirect stores a flash message and sends the client to target.
func flashRedirect(w http.ResponseWriter, r *http.Request, level, msg, target string) {
	httpx.SetFlash(w, level, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail answers with an error page or a JSON error body.
func fail(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, msg)
		return
	}
	renderStatus(w, r, status, "error.html", map[string]any{"Status": status, "Message": msg})
}

func notFound(w http.ResponseWriter, r *http.Request, msg string) {
	fail(w, r, http.StatusNotFound, "not_found", msg)
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	fail(w, r, http.StatusInternalServerError, "internal_error", "Something went wrong.")
}

// NotFound is the fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(w, r, "Page not found")
}
