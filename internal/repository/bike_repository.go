package repository

import (
	"context"

	"github.com/veloparc/velo-api/internal/models"
	"gorm.io/gorm"
)

// BikeRepository defines the interface for bike data access
type BikeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Bike, error)
	FindRentable(ctx context.Context) ([]models.Bike, error)
	FindAll(ctx context.Context) ([]models.Bike, error)
	Create(ctx context.Context, bike *models.Bike) error
	Update(ctx context.Context, bike *models.Bike) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Bike, int64, error)
}

type bikeRepository struct {
	db *gorm.DB
}

// NewBikeRepository creates a new bike repository
func NewBikeRepository(db *gorm.DB) BikeRepository {
	return &bikeRepository{db: db}
}

func (r *bikeRepository) FindByID(ctx context.Context, id uint) (*models.Bike, error) {
	var bike models.Bike
	err := r.db.WithContext(ctx).First(&bike, id).Error
	if err != nil {
		return nil, err
	}
	return &bike, nil
}

func (r *bikeRepository) FindRentable(ctx context.Context) ([]models.Bike, error) {
	var bikes []models.Bike
	err := r.db.WithContext(ctx).
		Where("rental_available = ?", true).
		Order("name ASC").
		Find(&bikes).Error
	return bikes, err
}

func (r *bikeRepository) FindAll(ctx context.Context) ([]models.Bike, error) {
	var bikes []models.Bike
	err := r.db.WithContext(ctx).Order("name ASC").Find(&bikes).Error
	return bikes, err
}

func (r *bikeRepository) Create(ctx context.Context, bike *models.Bike) error {
	return r.db.WithContext(ctx).Create(bike).Error
}

func (r *bikeRepository) Update(ctx context.Context, bike *models.Bike) error {
	return r.db.WithContext(ctx).Save(bike).Error
}

func (r *bikeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Bike{}, id).Error
}

func (r *bikeRepository) List(ctx context.Context, query *ListQuery) ([]models.Bike, int64, error) {
	var bikes []models.Bike
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Bike{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR category ILIKE ?", search, search)
	}

	if query.Filters["category"] != "" {
		db = db.Where("bikes.category = ?", query.Filters["category"])
	}

	if val, ok := query.Filters["rental_available"]; ok && val != "" {
		db = db.Where("bikes.rental_available = ?", val == "true")
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("name ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&bikes).Error
	return bikes, total, err
}
