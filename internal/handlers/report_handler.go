package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
	}
}

// @Summary Rental Report
// @Description Analytical rows projected from non-cancelled contracts
// @Tags Reports
// @Produce json
// @Param state query string false "Filter by state"
// @Param bike_id query int false "Filter by bike"
// @Param customer_id query int false "Filter by customer"
// @Param month query string false "Filter by start month (YYYY-MM)"
// @Param year query string false "Filter by start year (YYYY)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/rental [get]
func (h *ReportHandler) Rental(c *gin.Context) {
	rows, err := h.reportService.RentalReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	rows = filterRentalRows(rows, c)
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// filterRentalRows narrows the projected rows to the requested state, bike,
// customer, month or year
func filterRentalRows(rows []models.RentalReportRow, c *gin.Context) []models.RentalReportRow {
	state := c.Query("state")
	month := c.Query("month")
	year := c.Query("year")
	bikeID, _ := strconv.ParseUint(c.Query("bike_id"), 10, 32)
	customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 32)

	if state == "" && month == "" && year == "" && bikeID == 0 && customerID == 0 {
		return rows
	}

	filtered := make([]models.RentalReportRow, 0, len(rows))
	for _, row := range rows {
		if state != "" && row.State != state {
			continue
		}
		if month != "" && row.Month != month {
			continue
		}
		if year != "" && row.Year != year {
			continue
		}
		if bikeID > 0 && row.BikeID != uint(bikeID) {
			continue
		}
		if customerID > 0 && row.CustomerID != uint(customerID) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// @Summary Bike Occupation Report
// @Description Occupancy and revenue per bike over the trailing year
// @Tags Reports
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/occupation [get]
func (h *ReportHandler) Occupation(c *gin.Context) {
	rows, err := h.reportService.OccupationReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// @Summary Export Rental Report CSV
// @Description Download the rental report as a CSV file
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/rental/csv [get]
func (h *ReportHandler) RentalCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportRentalCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// @Summary Export Occupation Report XLSX
// @Description Download the bike occupation report as a spreadsheet
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/occupation/xlsx [get]
func (h *ReportHandler) OccupationXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportOccupationXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Contract PDF
// @Description Download the printable rental contract
// @Tags Reports
// @Produce application/pdf
// @Param contract_id path int true "Contract ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/document [get]
func (h *ReportHandler) ContractPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	buf, err := h.reportService.GenerateContractPDF(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrat introuvable"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=contract_%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Invoice PDF
// @Description Download an issued invoice as PDF
// @Tags Reports
// @Produce application/pdf
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id}/pdf [get]
func (h *ReportHandler) InvoicePDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("invoice_id"), 10, 32)
	buf, err := h.reportService.GenerateInvoicePDF(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture introuvable"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get recorded audit entries, newest first
// @Tags Audits
// @Produce json
// @Param limit query int false "Max entries" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	logs, total, err := h.auditService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
