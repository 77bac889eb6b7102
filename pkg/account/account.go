// Package account manages user accounts in the users collection.
package account

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

type Service struct {
	store *store.Store
	cost  int
}

func NewService(s *store.Store) *Service {
	return &Service{store: s, cost: bcrypt.DefaultCost}
}

// Signup creates a seller or buyer account. Emails are compared exactly.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (models.User, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = models.RoleBuyer
	case models.RoleBuyer, models.RoleSeller:
	default:
		return models.User{}, global.Validation("role", "invalid_value", "role must be seller or buyer")
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return models.User{}, global.Validation("confirm_password", "mismatch", "passwords do not match")
	}
	return s.create(ctx, req.Email, req.Password, req.Name, role)
}

// CreateAdmin is only reachable from the command line tool.
func (s *Service) CreateAdmin(ctx context.Context, email, password, name string) (models.User, error) {
	return s.create(ctx, email, password, name, models.RoleAdmin)
}

func (s *Service) create(ctx context.Context, email, password, name, role string) (models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	var problems global.ValidationErrors
	if email == "" {
		problems = append(problems, global.ValidationError{Field: "email", Message: "email is required", Code: "required"})
	}
	if password == "" {
		problems = append(problems, global.ValidationError{Field: "password", Message: "password is required", Code: "required"})
	}
	if name == "" {
		problems = append(problems, global.ValidationError{Field: "name", Message: "name is required", Code: "required"})
	}
	if len(problems) > 0 {
		return models.User{}, problems
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, global.Validation("password", "invalid_value", err.Error())
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Role:     role,
		Profile:  models.Profile{FullName: name},
		Products: []int{},
		Orders:   []int{},
	}
	user.SetTimestamps()

	err = store.Update(ctx, s.store, store.Users, func(users []models.User) ([]models.User, error) {
		if slices.ContainsFunc(users, func(u models.User) bool { return u.Email == email }) {
			return nil, global.Conflict("email", "an account with this email already exists")
		}
		return append(users, user), nil
	})
	if err != nil {
		return models.User{}, err
	}

	slog.Info("Account created", "email", email, "role", role)
	return user, nil
}

// Login checks the credentials. Unknown emails and wrong passwords give the
// same error.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.Get(ctx, strings.TrimSpace(email))
	if errors.Is(err, global.ErrNotFound) {
		return models.User{}, global.Unauthorized("invalid email or password")
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return models.User{}, global.Unauthorized("invalid email or password")
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, email string) (models.User, error) {
	users, err := store.Load[models.User](ctx, s.store, store.Users)
	if err != nil {
		return models.User{}, err
	}
	i := slices.IndexFunc(users, func(u models.User) bool { return u.Email == email })
	if i < 0 {
		return models.User{}, global.NotFound("email", "account %s not found", email)
	}
	return users[i], nil
}

// UpdateProfile merges the non-empty fields of p into the profile.
func (s *Service) UpdateProfile(ctx context.Context, email string, p models.Profile) (models.User, error) {
	return s.modify(ctx, email, func(u *models.User) error {
		mergeString(&u.Profile.FullName, p.FullName)
		mergeString(&u.Profile.Phone, p.Phone)
		mergeString(&u.Profile.Country, p.Country)
		mergeString(&u.Profile.State, p.State)
		mergeString(&u.Profile.Username, p.Username)
		mergeString(&u.Profile.SecurityEmail, p.SecurityEmail)
		return nil
	})
}

func (s *Service) UpdateShippingAddress(ctx context.Context, email string, addr models.ShippingAddress) (models.User, error) {
	return s.modify(ctx, email, func(u *models.User) error {
		u.ShippingAddress = addr
		return nil
	})
}

func (s *Service) ChangePassword(ctx context.Context, email string, req models.ChangePasswordRequest) error {
	if req.NewPassword == "" {
		return global.Validation("new_password", "required", "new password is required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return global.Validation("confirm_password", "mismatch", "passwords do not match")
	}
	_, err := s.modify(ctx, email, func(u *models.User) error {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.CurrentPassword)) != nil {
			return global.Unauthorized("current password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
		if err != nil {
			return global.Validation("new_password", "invalid_value", err.Error())
		}
		u.Password = string(hash)
		return nil
	})
	return err
}

func (s *Service) modify(ctx context.Context, email string, fn func(*models.User) error) (models.User, error) {
	if email == "" {
		return models.User{}, global.Unauthorized("login required")
	}
	var updated models.User
	err := store.Update(ctx, s.store, store.Users, func(users []models.User) ([]models.User, error) {
		i := slices.IndexFunc(users, func(u models.User) bool { return u.Email == email })
		if i < 0 {
			return nil, global.NotFound("email", "account %s not found", email)
		}
		if err := fn(&users[i]); err != nil {
			return nil, err
		}
		users[i].SetTimestamps()
		updated = users[i]
		return users, nil
	})
	return updated, err
}

func mergeString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
