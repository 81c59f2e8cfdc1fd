package models

import (
	"time"
)

// Invoice is a customer invoice generated from a rental contract
type Invoice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Number     string    `gorm:"not null;uniqueIndex" json:"number"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	IssueDate  time.Time `gorm:"not null" json:"issue_date"`
	Origin     string    `gorm:"index" json:"origin"`
	Total      float64   `gorm:"type:decimal(12,2);default:0" json:"total"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	Customer Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine is a single billable line on an invoice
type InvoiceLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"invoice_id"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(12,4);not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Amount      float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// TableName specifies the table name for InvoiceLine
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// InvoiceResponse is the JSON response format for invoices
type InvoiceResponse struct {
	ID           uint                  `json:"id"`
	Number       string                `json:"number"`
	CustomerID   uint                  `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	IssueDate    time.Time             `json:"issue_date"`
	Origin       string                `json:"origin"`
	Total        float64               `json:"total"`
	Lines        []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse is the JSON response format for invoice lines
type InvoiceLineResponse struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// ToResponse converts Invoice to InvoiceResponse
func (i *Invoice) ToResponse() InvoiceResponse {
	resp := InvoiceResponse{
		ID:           i.ID,
		Number:       i.Number,
		CustomerID:   i.CustomerID,
		CustomerName: i.Customer.FullName,
		IssueDate:    i.IssueDate,
		Origin:       i.Origin,
		Total:        i.Total,
	}
	for _, line := range i.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
		})
	}
	return resp
}
