package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/gate"
	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/models"
)

// StaffRoleHandler lists staff members and assigns them a role. A role is
// the name of a Profile; changing it invalidates the cached profile so the
// new permissions apply on the next request.
type StaffRoleHandler struct {
	DB            *gorm.DB
	CacheResolver *gate.CachedResolver[string]
}

func NewStaffRoleHandler(db *gorm.DB, cacheResolver *gate.CachedResolver[string]) *StaffRoleHandler {
	return &StaffRoleHandler{DB: db, CacheResolver: cacheResolver}
}

// List displays every staff member and the available profiles.
func (h *StaffRoleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var staff []models.Staff
	if err := h.DB.WithContext(ctx).Preload("User").Order("role, user_id").Find(&staff).Error; err != nil {
		serverError(w, r, err)
		return
	}
	var profiles []models.Profile
	if err := h.DB.WithContext(ctx).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		serverError(w, r, err)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"staff": staff, "profiles": profiles})
		return
	}
	render(w, r, "staff/roles.html", map[string]any{"Staff": staff, "Profiles": profiles})
}

// Assign handles POST /staff/roles/{userID}/ with a role form value.
func (h *StaffRoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	role := strings.TrimSpace(r.FormValue("role"))

	var profile models.Profile
	err := h.DB.WithContext(ctx).Where("name = ?", role).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(w, r, http.StatusBadRequest, "profile_not_found", fmt.Sprintf("Unknown role %q", role))
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	res := h.DB.WithContext(ctx).Model(&models.Staff{}).Where("user_id = ?", userID).Update("role", profile.Name)
	if res.Error != nil {
		serverError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		notFound(w, r, "Staff member not found")
		return
	}

	if h.CacheResolver != nil {
		h.CacheResolver.Invalidate(userID)
	}
	logging.Ctx(ctx).Info().Str("user_id", userID).Str("role", profile.Name).Str("by", currentUser(r)).Msg("staff role changed")

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "role": profile.Name})
		return
	}
	flashRedirect(w, r, httpx.FlashSuccess, "Role updated", "/staff/roles/")
}
