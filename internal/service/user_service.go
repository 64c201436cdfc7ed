package service

import (
	"context"
	"fmt"

	"capstonehub/internal/models"
	"capstonehub/internal/repository"
	"capstonehub/internal/validation"
)

// UpdateProfileInput carries self-service profile edits.
type UpdateProfileInput struct {
	Name  string `json:"name"`
	NIM   string `json:"nim"`
	Prodi string `json:"prodi"`
}

// PrecreateUserInput carries an admin-provisioned account. The account has no
// password until its owner claims it through signup.
type PrecreateUserInput struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	NIM   string      `json:"nim"`
	Prodi string      `json:"prodi"`
}

// UserService manages accounts.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns a filtered page of users.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	return s.users.List(ctx, filter)
}

// Stats returns account aggregates for the admin dashboard.
func (s *UserService) Stats(ctx context.Context) (*repository.UserStats, error) {
	return s.users.Stats(ctx)
}

// UpdateProfile applies self-service edits to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.NIM != "" {
		user.NIM = input.NIM
	}
	if input.Prodi != "" {
		user.Prodi = input.Prodi
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Precreate provisions an unclaimed account. The email's campus domain must
// permit the assigned role.
func (s *UserService) Precreate(ctx context.Context, input PrecreateUserInput) (*models.User, error) {
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !input.Role.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown role %q", input.Role))
	}
	if !validation.RoleAllowedForEmail(input.Email, input.Role) {
		return nil, models.NewValidationError(
			fmt.Sprintf("Role %q is not allowed for the email domain", input.Role))
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("An account with this email already exists")
	}

	user := &models.User{
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
		NIM:   input.NIM,
		Prodi: input.Prodi,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole changes an account's role, subject to the email domain rules.
func (s *UserService) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown role %q", role))
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validation.RoleAllowedForEmail(user.Email, role) {
		return nil, models.NewValidationError(
			fmt.Sprintf("Role %q is not allowed for the email domain", role))
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
