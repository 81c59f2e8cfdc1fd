package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veloparc/velo-api/internal/services"
	"gorm.io/gorm"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Bike     *BikeHandler
	Customer *CustomerHandler
	Contract *ContractHandler
	Report   *ReportHandler
	Audit    *AuditHandler
	Job      *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(),
		Auth:     NewAuthHandler(svcs.Auth),
		Bike:     NewBikeHandler(svcs.Bike),
		Customer: NewCustomerHandler(svcs.Customer, svcs.Contract),
		Contract: NewContractHandler(svcs.Contract),
		Report:   NewReportHandler(svcs.Report, svcs.Export),
		Audit:    NewAuditHandler(svcs.Audit),
		Job:      NewJobHandler(svcs.Job),
	}
}

// respondError maps service errors to HTTP statuses: validation and business
// refusals are 422 with the message verbatim, missing records are 404,
// anything else is 500.
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err), services.IsUserError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Enregistrement introuvable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
