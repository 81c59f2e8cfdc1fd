package models

import (
	"time"
)

// RentalContract represents a bike rental agreement between a customer and the shop
type RentalContract struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Reference        string     `gorm:"not null;index" json:"reference"`
	BikeID           uint       `gorm:"not null;index" json:"bike_id"`
	CustomerID       uint       `gorm:"not null;index" json:"customer_id"`
	StartDate        time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate          time.Time  `gorm:"not null;index" json:"end_date"`
	BillingUnit      string     `gorm:"default:day;not null" json:"billing_unit"`
	DurationHours    float64    `gorm:"type:decimal(12,4);default:0" json:"duration_hours"`
	DurationDays     float64    `gorm:"type:decimal(12,4);default:0" json:"duration_days"`
	UnitPrice        float64    `gorm:"type:decimal(10,2);default:0" json:"unit_price"`
	Price            float64    `gorm:"type:decimal(12,2);default:0" json:"price"`
	ActualReturnDate *time.Time `json:"actual_return_date"`
	IsLate           bool       `gorm:"default:false" json:"is_late"`
	LateHours        float64    `gorm:"type:decimal(12,4);default:0" json:"late_hours"`
	LatePenalty      float64    `gorm:"type:decimal(12,2);default:0" json:"late_penalty"`
	TotalAmount      float64    `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	InvoiceID        *uint      `gorm:"index" json:"invoice_id"`
	Notes            *string    `gorm:"type:text" json:"notes"`
	State            string     `gorm:"default:draft;index" json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Bike     Bike     `gorm:"foreignKey:BikeID" json:"bike,omitempty"`
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Invoice  *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

// TableName specifies the table name for RentalContract
func (RentalContract) TableName() string {
	return "rental_contracts"
}

// Contract state constants
const (
	ContractStateDraft     = "draft"
	ContractStateConfirmed = "confirmed"
	ContractStateOngoing   = "ongoing"
	ContractStateDone      = "done"
	ContractStateCancelled = "cancelled"
)

// Billing unit constants
const (
	BillingUnitHour = "hour"
	BillingUnitDay  = "day"
)

// ActiveStates are the states that occupy a bike and count toward reporting
var ActiveStates = []string{ContractStateConfirmed, ContractStateOngoing, ContractStateDone}

// BlockingStates are the states that participate in availability conflicts
var BlockingStates = []string{ContractStateConfirmed, ContractStateOngoing}

// MayConfirm returns true if the contract can be confirmed
func (c *RentalContract) MayConfirm() bool {
	return c.State == ContractStateDraft
}

// MayStart returns true if the rental can begin
func (c *RentalContract) MayStart() bool {
	return c.State == ContractStateConfirmed
}

// MayFinish returns true if the bike can be returned
func (c *RentalContract) MayFinish() bool {
	return c.State == ContractStateOngoing
}

// MayCancel returns true if the contract can be cancelled.
// Done and cancelled are terminal for this action.
func (c *RentalContract) MayCancel() bool {
	return c.State == ContractStateDraft ||
		c.State == ContractStateConfirmed ||
		c.State == ContractStateOngoing
}

// MayResetDraft returns true if the contract can go back to draft
func (c *RentalContract) MayResetDraft() bool {
	return c.State == ContractStateCancelled
}

// IsInvoiceable returns true if an invoice can be generated
func (c *RentalContract) IsInvoiceable() bool {
	return c.State == ContractStateOngoing || c.State == ContractStateDone
}

// HourlyEquivalentRate is the rate used to price late hours: the unit price
// itself when billing hourly, otherwise the daily unit price spread over 24h.
func (c *RentalContract) HourlyEquivalentRate() float64 {
	if c.BillingUnit == BillingUnitHour {
		return c.UnitPrice
	}
	return c.UnitPrice / 24
}

// Recompute refreshes every derived field from its declared inputs, in
// dependency order: duration, unit price, price, late, late penalty, total.
// It must run after any write touching dates, bike, billing unit, state or
// the actual return date, before the record is persisted.
func (c *RentalContract) Recompute(bike *Bike, now time.Time) {
	c.recomputeDuration()
	c.recomputeUnitPrice(bike)
	c.recomputePrice()
	c.RecomputeLate(now)
}

// RecomputeLate refreshes only the lateness chain (late, penalty, total).
// Split out so read paths can reflect the passage of time on ongoing
// contracts without touching the booking-derived fields.
func (c *RentalContract) RecomputeLate(now time.Time) {
	c.recomputeLateness(now)
	c.recomputeLatePenalty()
	c.TotalAmount = c.Price + c.LatePenalty
}

func (c *RentalContract) recomputeDuration() {
	c.DurationHours = 0
	c.DurationDays = 0
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.After(c.StartDate) {
		hours := c.EndDate.Sub(c.StartDate).Seconds() / 3600
		c.DurationHours = hours
		c.DurationDays = hours / 24
	}
}

func (c *RentalContract) recomputeUnitPrice(bike *Bike) {
	if bike == nil {
		c.UnitPrice = 0
		return
	}
	c.UnitPrice = bike.RateFor(c.BillingUnit)
}

func (c *RentalContract) recomputePrice() {
	if c.BillingUnit == BillingUnitHour {
		c.Price = c.UnitPrice * c.DurationHours
	} else {
		c.Price = c.UnitPrice * c.DurationDays
	}
}

// recomputeLateness only looks at ongoing and done contracts; drafts and
// cancelled contracts are never late. For done contracts the reference is the
// actual return date, for ongoing ones the current time.
func (c *RentalContract) recomputeLateness(now time.Time) {
	c.IsLate = false
	c.LateHours = 0
	if c.EndDate.IsZero() {
		return
	}
	if c.State != ContractStateOngoing && c.State != ContractStateDone {
		return
	}
	ref := now
	if c.ActualReturnDate != nil {
		ref = *c.ActualReturnDate
	}
	if ref.After(c.EndDate) {
		c.LateHours = ref.Sub(c.EndDate).Seconds() / 3600
		c.IsLate = true
	}
}

func (c *RentalContract) recomputeLatePenalty() {
	c.LatePenalty = 0
	if c.IsLate && c.LateHours > 0 {
		c.LatePenalty = c.HourlyEquivalentRate() * c.LateHours
	}
}

// RentalContractResponse is the JSON response format for rental contracts
type RentalContractResponse struct {
	ID               uint       `json:"id"`
	Reference        string     `json:"reference"`
	BikeID           uint       `json:"bike_id"`
	BikeName         string     `json:"bike_name"`
	CustomerID       uint       `json:"customer_id"`
	CustomerName     string     `json:"customer_name"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	BillingUnit      string     `json:"billing_unit"`
	DurationHours    float64    `json:"duration_hours"`
	DurationDays     float64    `json:"duration_days"`
	UnitPrice        float64    `json:"unit_price"`
	Price            float64    `json:"price"`
	ActualReturnDate *time.Time `json:"actual_return_date"`
	IsLate           bool       `json:"is_late"`
	LateHours        float64    `json:"late_hours"`
	LatePenalty      float64    `json:"late_penalty"`
	TotalAmount      float64    `json:"total_amount"`
	InvoiceID        *uint      `json:"invoice_id"`
	Notes            *string    `json:"notes"`
	State            string     `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ToResponse converts RentalContract to RentalContractResponse
func (c *RentalContract) ToResponse() RentalContractResponse {
	return RentalContractResponse{
		ID:               c.ID,
		Reference:        c.Reference,
		BikeID:           c.BikeID,
		BikeName:         c.Bike.Name,
		CustomerID:       c.CustomerID,
		CustomerName:     c.Customer.FullName,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		BillingUnit:      c.BillingUnit,
		DurationHours:    c.DurationHours,
		DurationDays:     c.DurationDays,
		UnitPrice:        c.UnitPrice,
		Price:            c.Price,
		ActualReturnDate: c.ActualReturnDate,
		IsLate:           c.IsLate,
		LateHours:        c.LateHours,
		LatePenalty:      c.LatePenalty,
		TotalAmount:      c.TotalAmount,
		InvoiceID:        c.InvoiceID,
		Notes:            c.Notes,
		State:            c.State,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
