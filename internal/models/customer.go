package models

import (
	"time"
)

// Customer represents a rental customer
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	Address   *string   `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Contracts []RentalContract `gorm:"foreignKey:CustomerID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// CustomerResponse is the JSON response format for customers
type CustomerResponse struct {
	ID       uint    `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  *string `json:"address"`
}

// ToResponse converts Customer to CustomerResponse
func (c *Customer) ToResponse() CustomerResponse {
	return CustomerResponse{
		ID:       c.ID,
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
	}
}
