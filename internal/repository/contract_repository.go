package repository

import (
	"context"
	"strings"
	"time"

	"github.com/veloparc/velo-api/internal/models"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for rental contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.RentalContract, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.RentalContract, error)
	FindByBike(ctx context.Context, bikeID uint) ([]models.RentalContract, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]models.RentalContract, error)
	Create(ctx context.Context, contract *models.RentalContract) error
	Update(ctx context.Context, contract *models.RentalContract) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ContractQuery) ([]models.RentalContract, int64, error)
	CountOverlapping(ctx context.Context, bikeID, excludeID uint, start, end time.Time) (int64, error)
	FindDueToStart(ctx context.Context, now time.Time) ([]models.RentalContract, error)
	FindDueToFinish(ctx context.Context, now time.Time) ([]models.RentalContract, error)
	FindNonCancelled(ctx context.Context) ([]models.RentalContract, error)
	FindActiveSince(ctx context.Context, cutoff time.Time) ([]models.RentalContract, error)
	GetStats(ctx context.Context) (*ContractStats, error)
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	State      string
	BikeID     uint
	CustomerID uint
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.RentalContract, error) {
	var contract models.RentalContract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.RentalContract, error) {
	var contract models.RentalContract
	// Bike and Customer are belongs-to so a single Joins query covers both;
	// the invoice with its lines needs its own Preload.
	err := r.db.WithContext(ctx).
		Joins("Bike").
		Joins("Customer").
		Preload("Invoice.Lines").
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByBike(ctx context.Context, bikeID uint) ([]models.RentalContract, error) {
	var contracts []models.RentalContract
	err := r.db.WithContext(ctx).
		Where("bike_id = ?", bikeID).
		Preload("Customer").
		Order("start_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByCustomer(ctx context.Context, customerID uint) ([]models.RentalContract, error) {
	var contracts []models.RentalContract
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Bike").
		Order("start_date DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.RentalContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.RentalContract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *contractRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.RentalContract{}, id).Error
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.RentalContract, int64, error) {
	var contracts []models.RentalContract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.RentalContract{})

	// State filter (single or multiple via state_in)
	if query.Filters != nil {
		if val, ok := query.Filters["state_in"]; ok && val != "" {
			states := strings.Split(val, ",")
			for i, s := range states {
				states[i] = strings.TrimSpace(s)
			}
			if len(states) > 0 {
				db = db.Where("rental_contracts.state IN ?", states)
			}
		}
	}
	if query.Filters == nil || query.Filters["state_in"] == "" {
		if query.State != "" {
			db = db.Where("rental_contracts.state = ?", query.State)
		}
	}

	if query.BikeID > 0 {
		db = db.Where("rental_contracts.bike_id = ?", query.BikeID)
	}
	if query.CustomerID > 0 {
		db = db.Where("rental_contracts.customer_id = ?", query.CustomerID)
	}

	// Booking period filters
	if query.Filters != nil {
		if val, ok := query.Filters["start_from"]; ok && val != "" {
			db = db.Where("rental_contracts.start_date >= ?", val)
		}
		if val, ok := query.Filters["start_to"]; ok && val != "" {
			// Include the full day if only a date is provided
			if len(val) == 10 { // YYYY-MM-DD
				val += " 23:59:59"
			}
			db = db.Where("rental_contracts.start_date <= ?", val)
		}
	}

	// Search joins only for filtering; associations are loaded via Preload below
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN bikes ON bikes.id = rental_contracts.bike_id").
			Joins("LEFT JOIN customers ON customers.id = rental_contracts.customer_id").
			Where("rental_contracts.reference ILIKE ? OR bikes.name ILIKE ? OR customers.full_name ILIKE ? OR customers.email ILIKE ?",
				search, search, search, search)
	}

	// Count in a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("rental_contracts.created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Bike").
		Preload("Customer").
		Find(&contracts).Error
	if err != nil {
		return nil, 0, err
	}

	return contracts, total, nil
}

// CountOverlapping counts other blocking contracts (confirmed or ongoing) for
// the same bike whose booking period overlaps [start, end). Touching endpoints
// do not overlap.
func (r *contractRepository) CountOverlapping(ctx context.Context, bikeID, excludeID uint, start, end time.Time) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&models.RentalContract{}).
		Where("bike_id = ?", bikeID).
		Where("state IN ?", models.BlockingStates).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count, err
}

func (r *contractRepository) FindDueToStart(ctx context.Context, now time.Time) ([]models.RentalContract, error) {
	var contracts []models.RentalContract
	err := r.db.WithContext(ctx).
		Where("state = ? AND start_date <= ?", models.ContractStateConfirmed, now).
		Preload("Bike").
		Order("start_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindDueToFinish(ctx context.Context, now time.Time) ([]models.RentalContract, error) {
	var contracts []models.RentalContract
	err := r.db.WithContext(ctx).
		Where("state = ? AND end_date <= ?", models.ContractStateOngoing, now).
		Preload("Bike").
		Order("end_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindNonCancelled(ctx context.Context) ([]models.RentalContract, error) {
	var contracts []models.RentalContract
	err := r.db.WithContext(ctx).
		Where("state <> ?", models.ContractStateCancelled).
		Preload("Bike").
		Preload("Customer").
		Order("start_date DESC").
		Find(&contracts).Error
	return contracts, err
}

// FindActiveSince returns confirmed, ongoing and done contracts whose rental
// started on or after the cutoff.
func (r *contractRepository) FindActiveSince(ctx context.Context, cutoff time.Time) ([]models.RentalContract, error) {
	var contracts []models.RentalContract
	err := r.db.WithContext(ctx).
		Where("state IN ? AND start_date >= ?", models.ActiveStates, cutoff).
		Preload("Bike").
		Order("start_date ASC").
		Find(&contracts).Error
	return contracts, err
}

// ContractStats holds the count of contracts by state
type ContractStats struct {
	Total     int64 `json:"total"`
	Draft     int64 `json:"draft"`
	Confirmed int64 `json:"confirmed"`
	Ongoing   int64 `json:"ongoing"`
	Done      int64 `json:"done"`
	Cancelled int64 `json:"cancelled"`
}

func (r *contractRepository) GetStats(ctx context.Context) (*ContractStats, error) {
	stats := &ContractStats{}

	rows, err := r.db.WithContext(ctx).
		Model(&models.RentalContract{}).
		Select("state, count(*) as count").
		Group("state").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var total int64
	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		total += count
		switch state {
		case models.ContractStateDraft:
			stats.Draft = count
		case models.ContractStateConfirmed:
			stats.Confirmed = count
		case models.ContractStateOngoing:
			stats.Ongoing = count
		case models.ContractStateDone:
			stats.Done = count
		case models.ContractStateCancelled:
			stats.Cancelled = count
		}
	}
	stats.Total = total

	return stats, nil
}
