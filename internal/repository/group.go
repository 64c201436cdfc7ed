package repository

import (
	"context"
	"errors"

	"capstonehub/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines persistence operations for capstone groups.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetByLeader(ctx context.Context, leaderID uint) (*models.Group, error)
	GetByMember(ctx context.Context, userID uint) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
	ReplaceMembers(ctx context.Context, group *models.Group, members []models.User) error
	List(ctx context.Context, limit, offset int) ([]models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Group name already taken or user already leads a group")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).
		Preload("Leader").
		Preload("Members").
		First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

func (r *groupRepository) GetByLeader(ctx context.Context, leaderID uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).
		Preload("Leader").
		Preload("Members").
		Where("leader_id = ?", leaderID).
		First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

// GetByMember resolves the group a user belongs to, whether as leader or as a
// plain member. Returns nil, nil when the user is in no group.
func (r *groupRepository) GetByMember(ctx context.Context, userID uint) (*models.Group, error) {
	group, err := r.GetByLeader(ctx, userID)
	if err != nil || group != nil {
		return group, err
	}

	var membership struct{ GroupID uint }
	if err := r.db.WithContext(ctx).
		Table("group_members").
		Where("user_id = ?", userID).
		Take(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return r.GetByID(ctx, membership.GroupID)
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Save(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Group name already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Select("Members").Delete(&models.Group{ID: id}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) ReplaceMembers(ctx context.Context, group *models.Group, members []models.User) error {
	if err := r.db.WithContext(ctx).Model(group).Association("Members").Replace(members); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) List(ctx context.Context, limit, offset int) ([]models.Group, error) {
	var groups []models.Group
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if err := r.db.WithContext(ctx).
		Preload("Leader").
		Preload("Members").
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}
