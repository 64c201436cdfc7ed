// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"capstonehub/internal/cache"
	"capstonehub/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role   models.Role
	Query  string
	Limit  int
	Offset int
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	Total      int64            `json:"total"`
	Verified   int64            `json:"verified"`
	Unclaimed  int64            `json:"unclaimed"`
	ByRole     map[string]int64 `json:"byRole"`
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByNIM(ctx context.Context, nim string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Stats(ctx context.Context) (*UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByNIM(ctx context.Context, nim string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("nim = ?", nim).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR nim LIKE ?", pattern, pattern, pattern)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	if err := q.Order("name ASC").Limit(filter.Limit).Offset(filter.Offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Stats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{ByRole: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&stats.Total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_verified = ?", true).Count(&stats.Verified).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("password = '' OR password IS NULL").Count(&stats.Unclaimed).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	type roleCount struct {
		Role  string
		Count int64
	}
	var rows []roleCount
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		stats.ByRole[row.Role] = row.Count
	}
	return stats, nil
}
