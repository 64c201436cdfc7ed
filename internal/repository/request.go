package repository

import (
	"context"
	"errors"
	"time"

	"capstonehub/internal/models"

	"gorm.io/gorm"
)

// RequestRepository defines persistence operations for capstone requests.
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id uint) (*models.Request, error)
	// GetActivePair returns the non-rejected request a group holds against a
	// capstone, or nil, nil when there is none.
	GetActivePair(ctx context.Context, groupID, capstoneID uint) (*models.Request, error)
	CountActiveByGroup(ctx context.Context, groupID uint) (int64, error)
	CountPendingByCapstone(ctx context.Context, capstoneID uint) (int64, error)
	HasAccepted(ctx context.Context, capstoneID uint) (bool, error)
	GetAcceptedByCapstone(ctx context.Context, capstoneID uint) (*models.Request, error)
	ListByGroup(ctx context.Context, groupID uint) ([]models.Request, error)
	ListByCapstoneOwner(ctx context.Context, ownerID uint) ([]models.Request, error)
	ListPendingByCapstone(ctx context.Context, capstoneID uint, excludeID uint) ([]models.Request, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Request, error)
	// UpdateStatusIfPending transitions a request out of pending only when it
	// is still pending, returning the number of rows changed. Zero rows means
	// a concurrent reviewer or the sweeper got there first.
	UpdateStatusIfPending(ctx context.Context, id uint, status models.RequestStatus, reason string) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new RequestRepository implementation.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Group already has an active request for this capstone")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Leader").
		Preload("Capstone").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) GetActivePair(ctx context.Context, groupID, capstoneID uint) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND capstone_id = ? AND status <> ?", groupID, capstoneID, models.RequestStatusRejected).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) CountActiveByGroup(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("group_id = ? AND status <> ?", groupID, models.RequestStatusRejected).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *requestRepository) CountPendingByCapstone(ctx context.Context, capstoneID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("capstone_id = ? AND status = ?", capstoneID, models.RequestStatusPending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *requestRepository) HasAccepted(ctx context.Context, capstoneID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("capstone_id = ? AND status = ?", capstoneID, models.RequestStatusAccepted).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *requestRepository) GetAcceptedByCapstone(ctx context.Context, capstoneID uint) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Where("capstone_id = ? AND status = ?", capstoneID, models.RequestStatusAccepted).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) ListByGroup(ctx context.Context, groupID uint) ([]models.Request, error) {
	var requests []models.Request
	if err := r.db.WithContext(ctx).
		Preload("Capstone").
		Preload("Capstone.Owner").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) ListByCapstoneOwner(ctx context.Context, ownerID uint) ([]models.Request, error) {
	var requests []models.Request
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Leader").
		Preload("Capstone").
		Joins("JOIN capstones ON capstones.id = requests.capstone_id").
		Where("capstones.owner_id = ?", ownerID).
		Order("requests.created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) ListPendingByCapstone(ctx context.Context, capstoneID uint, excludeID uint) ([]models.Request, error) {
	var requests []models.Request
	q := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Leader").
		Where("capstone_id = ? AND status = ?", capstoneID, models.RequestStatusPending)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("created_at ASC").Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Request, error) {
	var requests []models.Request
	if err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Leader").
		Preload("Capstone").
		Where("status = ? AND created_at < ?", models.RequestStatusPending, cutoff).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) UpdateStatusIfPending(ctx context.Context, id uint, status models.RequestStatus, reason string) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if reason != "" {
		updates["reason"] = reason
	}
	res := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(updates)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
