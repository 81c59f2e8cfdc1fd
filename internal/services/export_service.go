package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/veloparc/velo-api/internal/models"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	reportSvc *ReportService
}

func NewExportService(reportSvc *ReportService) *ExportService {
	return &ExportService{reportSvc: reportSvc}
}

// ExportRentalCSV renders the rental report as CSV
func (s *ExportService) ExportRentalCSV(ctx context.Context) ([]byte, string, error) {
	rows, err := s.reportSvc.RentalReport(ctx)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	header := []string{"Référence", "Vélo", "Client", "Début", "Fin", "État", "Durée (jours)", "Prix", "Pénalité", "Total", "Mois", "Année", "Jours loués"}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}

	for _, row := range rows {
		record := []string{
			row.Reference,
			row.BikeName,
			row.CustomerName,
			row.StartDate.Format("2006-01-02 15:04"),
			row.EndDate.Format("2006-01-02 15:04"),
			row.State,
			fmt.Sprintf("%.2f", row.DurationDays),
			fmt.Sprintf("%.2f", row.Price),
			fmt.Sprintf("%.2f", row.LatePenalty),
			fmt.Sprintf("%.2f", row.TotalAmount),
			row.Month,
			row.Year,
			fmt.Sprintf("%.2f", row.DaysRented),
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("rental_report_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportOccupationXLSX renders the bike occupation report as a spreadsheet
func (s *ExportService) ExportOccupationXLSX(ctx context.Context) ([]byte, string, error) {
	rows, err := s.reportSvc.OccupationReport(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Occupation"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Taux d'occupation des vélos (%d jours)", models.OccupationPeriodDays))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	headers := []string{"Vélo", "Jours loués", "Locations", "Revenu total", "Taux d'occupation (%)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		line := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.BikeName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.TotalDaysRented)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.NumberOfRentals)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", line), row.TotalRevenue)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", line), row.OccupationRate)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("bike_occupation_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
