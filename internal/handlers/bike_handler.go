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

type BikeHandler struct {
	bikeService *services.BikeService
}

func NewBikeHandler(bikeService *services.BikeService) *BikeHandler {
	return &BikeHandler{bikeService: bikeService}
}

// @Summary List Bikes
// @Description Get a paginated list of bikes
// @Tags Bikes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param category query string false "Filter by category"
// @Param rental_available query bool false "Filter by rentable flag"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bikes [get]
func (h *BikeHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	if category := c.Query("category"); category != "" {
		query.Filters["category"] = category
	}
	if rentable := c.Query("rental_available"); rentable != "" {
		query.Filters["rental_available"] = rentable
	}

	bikes, total, err := h.bikeService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, bike := range bikes {
		responses = append(responses, bike.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"bikes": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Rentable Bikes
// @Description Public list of bikes currently offered for rental
// @Tags Bikes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /bikes/rentable [get]
func (h *BikeHandler) Rentable(c *gin.Context) {
	bikes, err := h.bikeService.FindRentable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for _, bike := range bikes {
		responses = append(responses, bike.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"bikes": responses})
}

// @Summary Get Bike
// @Description Get a bike by ID
// @Tags Bikes
// @Produce json
// @Param bike_id path int true "Bike ID"
// @Success 200 {object} models.BikeResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /bikes/{bike_id} [get]
func (h *BikeHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("bike_id"), 10, 32)
	bike, err := h.bikeService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vélo introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bike": bike.ToResponse()})
}

type BikeRequest struct {
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category"`
	RentalAvailable bool    `json:"rental_available"`
	HourlyRate      float64 `json:"hourly_rate"`
	DailyRate       float64 `json:"daily_rate"`
	Note            *string `json:"note"`
}

// @Summary Create Bike
// @Description Add a bike to the catalog
// @Tags Bikes
// @Accept json
// @Produce json
// @Param request body BikeRequest true "Bike data"
// @Success 201 {object} models.BikeResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bikes [post]
func (h *BikeHandler) Create(c *gin.Context) {
	var req BikeRequest
	if err := BindNestedOrFlat(c, "bike", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bike := &models.Bike{
		Name:            req.Name,
		Category:        req.Category,
		RentalAvailable: req.RentalAvailable,
		HourlyRate:      req.HourlyRate,
		DailyRate:       req.DailyRate,
		Note:            req.Note,
	}

	if err := h.bikeService.Create(c.Request.Context(), bike, middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bike": bike.ToResponse()})
}

// @Summary Update Bike
// @Description Update a bike's catalog attributes
// @Tags Bikes
// @Accept json
// @Produce json
// @Param bike_id path int true "Bike ID"
// @Param request body BikeRequest true "Bike data"
// @Success 200 {object} models.BikeResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bikes/{bike_id} [put]
func (h *BikeHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("bike_id"), 10, 32)
	bike, err := h.bikeService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vélo introuvable"})
		return
	}

	var req BikeRequest
	if err := BindNestedOrFlat(c, "bike", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bike.Name = req.Name
	bike.Category = req.Category
	bike.RentalAvailable = req.RentalAvailable
	bike.HourlyRate = req.HourlyRate
	bike.DailyRate = req.DailyRate
	bike.Note = req.Note

	if err := h.bikeService.Update(c.Request.Context(), bike, middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bike": bike.ToResponse()})
}

// @Summary Delete Bike
// @Description Remove a bike from the catalog
// @Tags Bikes
// @Produce json
// @Param bike_id path int true "Bike ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bikes/{bike_id} [delete]
func (h *BikeHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("bike_id"), 10, 32)
	if err := h.bikeService.Delete(c.Request.Context(), uint(id), middleware.GetUserEmail(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vélo supprimé"})
}
