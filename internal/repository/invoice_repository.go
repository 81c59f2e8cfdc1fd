package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/veloparc/velo-api/internal/models"
	"gorm.io/gorm"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	List(ctx context.Context, query *ListQuery) ([]models.Invoice, int64, error)
	Issue(ctx context.Context, invoice *models.Invoice, contract *models.RentalContract) error
	NextNumber(ctx context.Context, issueDate time.Time) (string, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines").
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, query *ListQuery) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Invoice{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
			Where("invoices.number ILIKE ? OR invoices.origin ILIKE ? OR customers.full_name ILIKE ?",
				search, search, search)
	}

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
		db = db.Order("invoices.issue_date DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Preload("Customer").
		Preload("Lines").
		Find(&invoices).Error
	return invoices, total, err
}

// Issue persists the invoice with its lines and stamps the contract with the
// new invoice id in a single transaction, so a failed write leaves the
// contract uninvoiced.
func (r *invoiceRepository) Issue(ctx context.Context, invoice *models.Invoice, contract *models.RentalContract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		contract.InvoiceID = &invoice.ID
		return tx.Save(contract).Error
	})
}

// NextNumber allocates the next sequential invoice number for the issue year,
// in the form INV-2026-00042.
func (r *invoiceRepository) NextNumber(ctx context.Context, issueDate time.Time) (string, error) {
	var count int64
	prefix := fmt.Sprintf("INV-%d-", issueDate.Year())
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
