package models

import (
	"time"
)

// OccupationPeriodDays is the trailing window used by the occupation report.
const OccupationPeriodDays = 365

// RentalReportRow is one analytical row per non-cancelled contract.
// It is a pure projection of RentalContract, never stored.
type RentalReportRow struct {
	ContractID    uint      `json:"contract_id"`
	Reference     string    `json:"reference"`
	BikeID        uint      `json:"bike_id"`
	BikeName      string    `json:"bike_name"`
	CustomerID    uint      `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	State         string    `json:"state"`
	DurationDays  float64   `json:"duration_days"`
	DurationHours float64   `json:"duration_hours"`
	Price         float64   `json:"price"`
	LatePenalty   float64   `json:"late_penalty"`
	TotalAmount   float64   `json:"total_amount"`
	IsLate        bool      `json:"is_late"`
	LateHours     float64   `json:"late_hours"`
	Month         string    `json:"month"`
	Year          string    `json:"year"`
	DaysRented    float64   `json:"days_rented"`
}

// BikeOccupationRow aggregates occupancy and revenue per bike over the
// trailing 365 days. Recomputed on demand from the contract table.
type BikeOccupationRow struct {
	BikeID          uint    `json:"bike_id"`
	BikeName        string  `json:"bike_name"`
	TotalDaysRented float64 `json:"total_days_rented"`
	NumberOfRentals int     `json:"number_of_rentals"`
	TotalRevenue    float64 `json:"total_revenue"`
	OccupationRate  float64 `json:"occupation_rate"`
	PeriodDays      int     `json:"period_days"`
}
