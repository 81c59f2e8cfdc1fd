package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veloparc/velo-api/internal/middleware"
	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
	"github.com/veloparc/velo-api/internal/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	contractService *services.ContractService
}

func NewCustomerHandler(customerService *services.CustomerService, contractService *services.ContractService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		contractService: contractService,
	}
}

// @Summary List Customers
// @Description Get a paginated list of customers
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")

	customers, total, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, customer := range customers {
		responses = append(responses, customer.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Customer
// @Description Get a customer by ID
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} models.CustomerResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	customer, err := h.customerService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer.ToResponse()})
}

// @Summary Customer Contracts
// @Description List the rental contracts of a customer
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers/{customer_id}/contracts [get]
func (h *CustomerHandler) Contracts(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	contracts, err := h.contractService.FindByCustomer(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"contracts": responses})
}

type CustomerRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone"`
	Address  *string `json:"address"`
}

// @Summary Create Customer
// @Description Register a new customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body CustomerRequest true "Customer data"
// @Success 201 {object} models.CustomerResponse
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := BindNestedOrFlat(c, "customer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := &models.Customer{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}

	if err := h.customerService.Create(c.Request.Context(), customer, middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer.ToResponse()})
}

// @Summary Update Customer
// @Description Update a customer's details
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param request body CustomerRequest true "Customer data"
// @Success 200 {object} models.CustomerResponse
// @Security BearerAuth
// @Router /customers/{customer_id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	customer, err := h.customerService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}

	var req CustomerRequest
	if err := BindNestedOrFlat(c, "customer", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer.FullName = req.FullName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address

	if err := h.customerService.Update(c.Request.Context(), customer, middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer.ToResponse()})
}

// @Summary Delete Customer
// @Description Remove a customer without contracts
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	if err := h.customerService.Delete(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client supprimé"})
}
