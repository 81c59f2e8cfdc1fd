package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Bike     BikeRepository
	Customer CustomerRepository
	Contract ContractRepository
	Invoice  InvoiceRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Bike:     NewBikeRepository(db),
		Customer: NewCustomerRepository(db),
		Contract: NewContractRepository(db),
		Invoice:  NewInvoiceRepository(db),
	}
}

// ListQuery holds common listing parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
