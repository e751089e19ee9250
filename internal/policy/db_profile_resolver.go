package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/gate"
	"github.com/diewo77/go-bookstore/internal/models"
)

// DBProfileResolver resolves a user id to the profile named by its staff
// role. Users without a staff record have no profile.
type DBProfileResolver struct {
	db *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{db: db}
}

func (r *DBProfileResolver) Resolve(ctx context.Context, userID string) (gate.Profile, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Preload("Profile").Preload("Profile.Permissions").
		Where("user_id = ?", userID).
		First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if staff.Profile == nil {
		return nil, nil
	}
	perms := make([]gate.Permission, 0, len(staff.Profile.Permissions))
	for _, p := range staff.Profile.Permissions {
		perms = append(perms, gate.Permission(p.Code()))
	}
	return gate.NewStaticProfile(staff.Profile.ID, staff.Profile.Name, perms...), nil
}
