package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veloparc/velo-api/internal/middleware"
	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
	"github.com/veloparc/velo-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// @Summary List Contracts
// @Description Get a paginated list of rental contracts
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param state query string false "Filter by state"
// @Param bike_id query int false "Filter by bike"
// @Param customer_id query int false "Filter by customer"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	query.State = c.Query("state")
	if bikeID, err := strconv.ParseUint(c.Query("bike_id"), 10, 32); err == nil {
		query.BikeID = uint(bikeID)
	}
	if customerID, err := strconv.ParseUint(c.Query("customer_id"), 10, 32); err == nil {
		query.CustomerID = uint(customerID)
	}
	if stateIn := c.Query("state_in"); stateIn != "" {
		query.Filters["state_in"] = stateIn
	}
	if startFrom := c.Query("start_from"); startFrom != "" {
		query.Filters["start_from"] = startFrom
	}
	if startTo := c.Query("start_to"); startTo != "" {
		query.Filters["start_to"] = startTo
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Contract Stats
// @Description Get contract counts by state
// @Tags Contracts
// @Produce json
// @Success 200 {object} repository.ContractStats
// @Security BearerAuth
// @Router /contracts/stats [get]
func (h *ContractHandler) GetStats(c *gin.Context) {
	stats, err := h.contractService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get Contract
// @Description Get a rental contract by ID with bike, customer and invoice
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.RentalContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrat introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

type ContractRequest struct {
	Reference   string    `json:"reference"`
	BikeID      uint      `json:"bike_id"`
	CustomerID  uint      `json:"customer_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	BillingUnit string    `json:"billing_unit"`
	Notes       *string   `json:"notes"`
}

// @Summary Create Contract
// @Description Create a new draft rental contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body ContractRequest true "Contract data"
// @Success 201 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req ContractRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BikeID == 0 || req.CustomerID == 0 || req.StartDate.IsZero() || req.EndDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bike_id, customer_id, start_date et end_date sont requis"})
		return
	}

	contract := &models.RentalContract{
		Reference:   req.Reference,
		BikeID:      req.BikeID,
		CustomerID:  req.CustomerID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		BillingUnit: req.BillingUnit,
		Notes:       req.Notes,
	}

	if err := h.contractService.Create(c.Request.Context(), contract, middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

type ContractUpdateRequest struct {
	Reference   *string    `json:"reference"`
	BikeID      *uint      `json:"bike_id"`
	CustomerID  *uint      `json:"customer_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	BillingUnit *string    `json:"billing_unit"`
	Notes       *string    `json:"notes"`
}

// @Summary Update Contract
// @Description Update a rental contract; derived fields are recomputed
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param request body ContractUpdateRequest true "Fields to update"
// @Success 200 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [patch]
func (h *ContractHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrat introuvable"})
		return
	}

	var req ContractUpdateRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Reference != nil {
		contract.Reference = *req.Reference
	}
	if req.BikeID != nil && *req.BikeID != contract.BikeID {
		contract.BikeID = *req.BikeID
		contract.Bike = models.Bike{}
	}
	if req.CustomerID != nil && *req.CustomerID != contract.CustomerID {
		contract.CustomerID = *req.CustomerID
		contract.Customer = models.Customer{}
	}
	if req.StartDate != nil {
		contract.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		contract.EndDate = *req.EndDate
	}
	if req.BillingUnit != nil {
		contract.BillingUnit = *req.BillingUnit
	}
	if req.Notes != nil {
		contract.Notes = req.Notes
	}

	if err := h.contractService.Update(c.Request.Context(), contract, middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Delete Contract
// @Description Delete a draft or cancelled contract
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	if err := h.contractService.Delete(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contrat supprimé"})
}

// @Summary Confirm Contract
// @Description Confirm a draft contract after checking bike availability
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/confirm [post]
func (h *ContractHandler) Confirm(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Confirm(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Start Contract
// @Description Hand the bike over: confirmed contract becomes ongoing
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/start [post]
func (h *ContractHandler) Start(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Start(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Finish Contract
// @Description Record the bike return: ongoing contract becomes done
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/done [post]
func (h *ContractHandler) Finish(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Finish(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Cancel Contract
// @Description Cancel a draft, confirmed or ongoing contract
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Cancel(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Reset Contract to Draft
// @Description Bring a cancelled contract back to draft
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.RentalContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/reset_draft [post]
func (h *ContractHandler) ResetDraft(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.ResetDraft(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Create Invoice
// @Description Generate the invoice for an ongoing or done contract
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 201 {object} models.InvoiceResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/invoice [post]
func (h *ContractHandler) CreateInvoice(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	invoice, err := h.contractService.CreateInvoice(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice.ToResponse()})
}

// @Summary List Invoices
// @Description Get a paginated list of issued invoices
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /invoices [get]
func (h *ContractHandler) ListInvoices(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")

	invoices, total, err := h.contractService.ListInvoices(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, invoice := range invoices {
		responses = append(responses, invoice.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Invoice
// @Description Get an issued invoice with its lines
// @Tags Invoices
// @Produce json
// @Param invoice_id path int true "Invoice ID"
// @Success 200 {object} models.InvoiceResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /invoices/{invoice_id} [get]
func (h *ContractHandler) ShowInvoice(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("invoice_id"), 10, 32)
	invoice, err := h.contractService.FindInvoice(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice.ToResponse()})
}
