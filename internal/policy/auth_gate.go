// Package policy wires the authorization gate to the bookstore: staff
// profiles from the database, ownership of customer resources and the
// HTTP middleware guarding the back office.
package policy

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/gate"
	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/logging"
)

// Flash messages of the staff guard.
const (
	MsgStaffOnly        = "Access denied. Staff only."
	MsgPermissionDenied = "You do not have permission to do that."
)

// AuthGate combines cached profile resolution with resource policies.
type AuthGate struct {
	Gate          *gate.HybridGate[string]
	CacheResolver *gate.CachedResolver[string]
}

// NewAuthGate builds a gate resolving staff profiles from db, cached for ttl.
func NewAuthGate(db *gorm.DB, ttl time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[string](NewDBProfileResolver(db), ttl)
	g := gate.NewHybridGate[string](cached)
	g.Observe(observeDecision)
	return &AuthGate{Gate: g, CacheResolver: cached}
}

// IsStaff reports whether the user has a staff profile.
func (a *AuthGate) IsStaff(ctx context.Context, userID string) bool {
	_, ok := a.Gate.Profile(ctx, userID)
	return ok
}

// Can checks the current request's user against resource:action.
func (a *AuthGate) Can(r *http.Request, resourceType string, action gate.Action) bool {
	uid, _ := auth.UserIDFromContext(r.Context())
	return a.Gate.CanProfile(r.Context(), uid, action, resourceType)
}

func deny(w http.ResponseWriter, r *http.Request, msg, redirect string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", msg)
		return
	}
	httpx.SetFlash(w, httpx.FlashError, msg)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// RequireStaff lets through users holding a staff profile. Others are sent
// back to the catalog with a notice.
func (a *AuthGate) RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, _ := auth.UserIDFromContext(r.Context())
			if !a.IsStaff(r.Context(), uid) {
				logging.Ctx(r.Context()).Warn().Str("user_id", uid).Str("path", r.URL.Path).Msg("staff access denied")
				deny(w, r, MsgStaffOnly, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission lets through users whose profile grants resource:action.
func (a *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, _ := auth.UserIDFromContext(r.Context())
			if err := a.Gate.Authorize(r.Context(), uid, action, resourceType, nil); err != nil {
				logging.Ctx(r.Context()).Warn().Str("user_id", uid).
					Str("permission", string(gate.NewPermission(resourceType, action))).Msg("permission denied")
				deny(w, r, MsgPermissionDenied, "/staff/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
