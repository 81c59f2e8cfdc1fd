package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
)

type ReportService struct {
	contractRepo repository.ContractRepository
	bikeRepo     repository.BikeRepository
	invoiceRepo  repository.InvoiceRepository
}

func NewReportService(
	contractRepo repository.ContractRepository,
	bikeRepo repository.BikeRepository,
	invoiceRepo repository.InvoiceRepository,
) *ReportService {
	return &ReportService{
		contractRepo: contractRepo,
		bikeRepo:     bikeRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// RentalReport projects every non-cancelled contract into an analytical row.
// Recomputed on demand from the contract table, never stored.
func (s *ReportService) RentalReport(ctx context.Context) ([]models.RentalReportRow, error) {
	contracts, err := s.contractRepo.FindNonCancelled(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range contracts {
		contracts[i].RecomputeLate(now)
	}
	return BuildRentalReport(contracts), nil
}

// BuildRentalReport is the pure projection behind RentalReport
func BuildRentalReport(contracts []models.RentalContract) []models.RentalReportRow {
	rows := make([]models.RentalReportRow, 0, len(contracts))
	for i := range contracts {
		c := &contracts[i]

		// Days only count once the booking is at least confirmed
		daysRented := 0.0
		switch c.State {
		case models.ContractStateConfirmed, models.ContractStateOngoing, models.ContractStateDone:
			daysRented = c.DurationDays
		}

		rows = append(rows, models.RentalReportRow{
			ContractID:    c.ID,
			Reference:     c.Reference,
			BikeID:        c.BikeID,
			BikeName:      c.Bike.Name,
			CustomerID:    c.CustomerID,
			CustomerName:  c.Customer.FullName,
			StartDate:     c.StartDate,
			EndDate:       c.EndDate,
			State:         c.State,
			DurationDays:  c.DurationDays,
			DurationHours: c.DurationHours,
			Price:         c.Price,
			LatePenalty:   c.LatePenalty,
			TotalAmount:   c.TotalAmount,
			IsLate:        c.IsLate,
			LateHours:     c.LateHours,
			Month:         c.StartDate.Format("2006-01"),
			Year:          c.StartDate.Format("2006"),
			DaysRented:    daysRented,
		})
	}
	return rows
}

// OccupationReport aggregates occupancy and revenue per bike over the
// trailing 365 days
func (s *ReportService) OccupationReport(ctx context.Context) ([]models.BikeOccupationRow, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -models.OccupationPeriodDays)

	bikes, err := s.bikeRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contractRepo.FindActiveSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		contracts[i].RecomputeLate(now)
	}
	return BuildOccupationReport(bikes, contracts), nil
}

// BuildOccupationReport is the pure aggregation behind OccupationReport.
// Bikes with no rentals in the window appear with zeroed totals.
func BuildOccupationReport(bikes []models.Bike, contracts []models.RentalContract) []models.BikeOccupationRow {
	type totals struct {
		days    float64
		count   int
		revenue float64
	}
	perBike := make(map[uint]*totals, len(bikes))
	for i := range contracts {
		c := &contracts[i]
		t := perBike[c.BikeID]
		if t == nil {
			t = &totals{}
			perBike[c.BikeID] = t
		}
		t.days += c.DurationDays
		t.count++
		t.revenue += c.TotalAmount
	}

	rows := make([]models.BikeOccupationRow, 0, len(bikes))
	for i := range bikes {
		bike := &bikes[i]
		row := models.BikeOccupationRow{
			BikeID:     bike.ID,
			BikeName:   bike.Name,
			PeriodDays: models.OccupationPeriodDays,
		}
		if t := perBike[bike.ID]; t != nil {
			row.TotalDaysRented = t.days
			row.NumberOfRentals = t.count
			row.TotalRevenue = t.revenue
			if t.days > 0 {
				row.OccupationRate = decimal.NewFromFloat(t.days).
					Div(decimal.NewFromInt(models.OccupationPeriodDays)).
					Mul(decimal.NewFromInt(100)).
					Round(2).
					InexactFloat64()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// GenerateContractPDF renders the rental contract as a printable document
func (s *ReportService) GenerateContractPDF(ctx context.Context, contractID uint) (*bytes.Buffer, error) {
	contract, err := s.contractRepo.FindByIDWithDetails(ctx, contractID)
	if err != nil {
		return nil, err
	}
	contract.RecomputeLate(time.Now())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Contrat de location de velo")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Reference:")
	pdf.Cell(60, 8, contract.Reference)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Client:")
	pdf.Cell(60, 8, contract.Customer.FullName)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Velo:")
	pdf.Cell(60, 8, contract.Bike.Name)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Debut:")
	pdf.Cell(60, 8, contract.StartDate.Format("2006-01-02 15:04"))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Fin:")
	pdf.Cell(60, 8, contract.EndDate.Format("2006-01-02 15:04"))
	pdf.Ln(6)

	unitLabel := "jour"
	if contract.BillingUnit == models.BillingUnitHour {
		unitLabel = "heure"
	}
	pdf.Cell(60, 8, "Tarif:")
	pdf.Cell(60, 8, fmt.Sprintf("%.2f EUR / %s", contract.UnitPrice, unitLabel))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Duree:")
	pdf.Cell(60, 8, fmt.Sprintf("%.2f jours (%.2f heures)", contract.DurationDays, contract.DurationHours))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Prix:")
	pdf.Cell(60, 8, fmt.Sprintf("%.2f EUR", contract.Price))
	pdf.Ln(6)

	if contract.IsLate {
		pdf.Cell(60, 8, "Penalite de retard:")
		pdf.Cell(60, 8, fmt.Sprintf("%.2f EUR (%.2f heures)", contract.LatePenalty, contract.LateHours))
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 8, "Montant total:")
	pdf.Cell(60, 8, fmt.Sprintf("%.2f EUR", contract.TotalAmount))
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 8, fmt.Sprintf("Etat: %s - genere le %s", contract.State, time.Now().Format("2006-01-02 15:04")))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// GenerateInvoicePDF renders an issued invoice with its lines
func (s *ReportService) GenerateInvoicePDF(ctx context.Context, invoiceID uint) (*bytes.Buffer, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Facture %s", invoice.Number))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Client:")
	pdf.Cell(60, 8, invoice.Customer.FullName)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Date:")
	pdf.Cell(60, 8, invoice.IssueDate.Format("2006-01-02"))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Origine:")
	pdf.Cell(60, 8, invoice.Origin)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(90, 8, "Description")
	pdf.Cell(30, 8, "Quantite")
	pdf.Cell(30, 8, "Prix unitaire")
	pdf.Cell(30, 8, "Montant")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, line := range invoice.Lines {
		pdf.Cell(90, 8, line.Description)
		pdf.Cell(30, 8, fmt.Sprintf("%.2f", line.Quantity))
		pdf.Cell(30, 8, fmt.Sprintf("%.2f", line.UnitPrice))
		pdf.Cell(30, 8, fmt.Sprintf("%.2f", line.Amount))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(150, 10, "Total:")
	pdf.Cell(30, 10, fmt.Sprintf("%.2f EUR", invoice.Total))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
