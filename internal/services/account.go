package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/models"
	"github.com/diewo77/go-bookstore/internal/repository"
	"github.com/diewo77/go-bookstore/validation"
)

// AccountService handles login, registration and profiles.
type AccountService struct {
	db    *gorm.DB
	users *repository.Repository[models.User]
	// persist makes Register create accounts; otherwise it only validates.
	persist bool
}

func NewAccountService(db *gorm.DB, registrationEnabled bool) *AccountService {
	return &AccountService{db: db, users: repository.New[models.User](db), persist: registrationEnabled}
}

// Authenticate checks a username and password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.First(ctx, repository.Where("username = ?", strings.TrimSpace(username)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}
	return user, nil
}

// Exists reports whether a user id is still present.
func (s *AccountService) Exists(ctx context.Context, userID string) bool {
	ok, err := s.users.Exists(ctx, repository.Where("id = ?", userID))
	return err == nil && ok
}

// Registration is the sign-up form.
type Registration struct {
	Username        string `form:"username" validate:"required,min=3,max=150"`
	Fullname        string `form:"fullname" validate:"max=255"`
	Email           string `form:"email" validate:"omitempty,email"`
	Password        string `form:"password" validate:"required,min=6"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

// Register validates the form. When registration is enabled it creates the
// user and its customer profile in one transaction and returns the user;
// otherwise it returns nil after validation.
func (s *AccountService) Register(ctx context.Context, in Registration) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	if !s.persist {
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: in.Username, Password: string(hash), Fullname: strings.TrimSpace(in.Fullname)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		customer := &models.Customer{UserID: user.ID}
		if in.Email != "" {
			customer.Email = &in.Email
		}
		return tx.Create(customer).Error
	})
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("account registered")
	return user, nil
}

// Profile is what the profile page shows. Customer or Staff may be nil.
type Profile struct {
	User     *models.User     `json:"user"`
	Customer *models.Customer `json:"customer,omitempty"`
	Staff    *models.Staff    `json:"staff,omitempty"`
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.First(ctx,
		repository.Where("id = ?", userID),
		repository.Preload("Customer"), repository.Preload("Customer.Address"),
		repository.Preload("Staff"),
	)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Customer: user.Customer, Staff: user.Staff}, nil
}
