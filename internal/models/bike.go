package models

import (
	"time"
)

// Bike represents a bicycle in the rental catalog
type Bike struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Category        string    `gorm:"default:standard;index" json:"category"`
	RentalAvailable bool      `gorm:"default:false;index" json:"rental_available"`
	HourlyRate      float64   `gorm:"type:decimal(10,2);not null;default:0" json:"hourly_rate"`
	DailyRate       float64   `gorm:"type:decimal(10,2);not null;default:0" json:"daily_rate"`
	Note            *string   `gorm:"type:text" json:"note"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	Contracts []RentalContract `gorm:"foreignKey:BikeID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Bike
func (Bike) TableName() string {
	return "bikes"
}

// Bike category constants
const (
	BikeCategoryStandard = "standard"
	BikeCategoryElectric = "electric"
	BikeCategoryCargo    = "cargo"
)

// RateFor returns the rate matching a billing unit
func (b *Bike) RateFor(billingUnit string) float64 {
	if billingUnit == BillingUnitHour {
		return b.HourlyRate
	}
	return b.DailyRate
}

// IsRentable returns true if the bike can be booked
func (b *Bike) IsRentable() bool {
	return b.RentalAvailable
}

// BikeResponse is the JSON response format for bikes
type BikeResponse struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	RentalAvailable bool    `json:"rental_available"`
	HourlyRate      float64 `json:"hourly_rate"`
	DailyRate       float64 `json:"daily_rate"`
	Note            *string `json:"note"`
}

// ToResponse converts Bike to BikeResponse
func (b *Bike) ToResponse() BikeResponse {
	return BikeResponse{
		ID:              b.ID,
		Name:            b.Name,
		Category:        b.Category,
		RentalAvailable: b.RentalAvailable,
		HourlyRate:      b.HourlyRate,
		DailyRate:       b.DailyRate,
		Note:            b.Note,
	}
}
