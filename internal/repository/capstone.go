package repository

import (
	"context"
	"errors"

	"capstonehub/internal/cache"
	"capstonehub/internal/models"

	"gorm.io/gorm"
)

// CapstoneFilter narrows capstone listings.
type CapstoneFilter struct {
	Query    string
	Category string
	Status   models.CapstoneStatus
	Sort     string
	Limit    int
	Offset   int
}

// CapstoneStats aggregates catalog counts.
type CapstoneStats struct {
	Total       int64            `json:"total"`
	Available   int64            `json:"available"`
	Unavailable int64            `json:"unavailable"`
	ByCategory  map[string]int64 `json:"byCategory"`
}

// CapstoneRepository defines persistence operations for capstone topics.
type CapstoneRepository interface {
	Create(ctx context.Context, capstone *models.Capstone) error
	GetByID(ctx context.Context, id uint) (*models.Capstone, error)
	List(ctx context.Context, filter CapstoneFilter) ([]models.Capstone, int64, error)
	Update(ctx context.Context, capstone *models.Capstone) error
	UpdateStatus(ctx context.Context, id uint, status models.CapstoneStatus) error
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*CapstoneStats, error)
}

type capstoneRepository struct {
	db *gorm.DB
}

// NewCapstoneRepository returns a new CapstoneRepository implementation.
func NewCapstoneRepository(db *gorm.DB) CapstoneRepository {
	return &capstoneRepository{db: db}
}

func (r *capstoneRepository) Create(ctx context.Context, capstone *models.Capstone) error {
	if err := r.db.WithContext(ctx).Create(capstone).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCapstone(ctx, capstone.ID)
	return nil
}

func (r *capstoneRepository) GetByID(ctx context.Context, id uint) (*models.Capstone, error) {
	var capstone models.Capstone
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Dosen").
		Preload("CoAuthors").
		First(&capstone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Capstone", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &capstone, nil
}

func (r *capstoneRepository) List(ctx context.Context, filter CapstoneFilter) ([]models.Capstone, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Capstone{})

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("title ILIKE ? OR abstract ILIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	order := "created_at DESC"
	switch filter.Sort {
	case "oldest":
		order = "created_at ASC"
	case "title":
		order = "title ASC"
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	var capstones []models.Capstone
	if err := q.
		Preload("Owner").
		Preload("Dosen").
		Preload("CoAuthors").
		Order(order).
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&capstones).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return capstones, total, nil
}

func (r *capstoneRepository) Update(ctx context.Context, capstone *models.Capstone) error {
	if err := r.db.WithContext(ctx).Save(capstone).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCapstone(ctx, capstone.ID)
	return nil
}

func (r *capstoneRepository) UpdateStatus(ctx context.Context, id uint, status models.CapstoneStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Capstone{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Capstone", id)
	}
	cache.InvalidateCapstone(ctx, id)
	return nil
}

func (r *capstoneRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Select("CoAuthors").Delete(&models.Capstone{ID: id}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCapstone(ctx, id)
	return nil
}

func (r *capstoneRepository) Stats(ctx context.Context) (*CapstoneStats, error) {
	stats := &CapstoneStats{ByCategory: make(map[string]int64)}

	err := cache.Aside(ctx, cache.CapstoneStatsKey, stats, cache.CapstoneStatsTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Capstone{}).Count(&stats.Total).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := r.db.WithContext(ctx).Model(&models.Capstone{}).
			Where("status = ?", models.CapstoneStatusAvailable).Count(&stats.Available).Error; err != nil {
			return models.NewInternalError(err)
		}
		stats.Unavailable = stats.Total - stats.Available

		type categoryCount struct {
			Category string
			Count    int64
		}
		var rows []categoryCount
		if err := r.db.WithContext(ctx).Model(&models.Capstone{}).
			Select("category, COUNT(*) AS count").Group("category").Scan(&rows).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, row := range rows {
			stats.ByCategory[row.Category] = row.Count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
