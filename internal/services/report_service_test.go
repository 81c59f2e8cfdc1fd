package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloparc/velo-api/internal/models"
)

func TestBuildRentalReport(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	contracts := []models.RentalContract{
		{
			ID:           1,
			Reference:    "LOC-DRAFT",
			State:        models.ContractStateDraft,
			StartDate:    start,
			EndDate:      start.Add(48 * time.Hour),
			DurationDays: 2,
			Bike:         models.Bike{Name: "VTT 27"},
			Customer:     models.Customer{FullName: "Jeanne Martin"},
		},
		{
			ID:           2,
			Reference:    "LOC-DONE",
			State:        models.ContractStateDone,
			StartDate:    start.AddDate(0, 1, 0),
			EndDate:      start.AddDate(0, 1, 3),
			DurationDays: 3,
			Price:        60,
			TotalAmount:  60,
			Bike:         models.Bike{Name: "Cargo Long"},
			Customer:     models.Customer{FullName: "Paul Petit"},
		},
	}

	rows := BuildRentalReport(contracts)
	require.Len(t, rows, 2)

	// Drafts appear but do not count as rented days
	assert.Equal(t, "LOC-DRAFT", rows[0].Reference)
	assert.Zero(t, rows[0].DaysRented)
	assert.Equal(t, "2026-03", rows[0].Month)
	assert.Equal(t, "2026", rows[0].Year)

	assert.Equal(t, "LOC-DONE", rows[1].Reference)
	assert.InDelta(t, 3.0, rows[1].DaysRented, 0.0001)
	assert.Equal(t, "2026-04", rows[1].Month)
	assert.Equal(t, "Cargo Long", rows[1].BikeName)
	assert.Equal(t, "Paul Petit", rows[1].CustomerName)
}

func TestBuildRentalReportDaysRentedByState(t *testing.T) {
	tests := []struct {
		state      string
		daysRented float64
	}{
		{models.ContractStateDraft, 0},
		{models.ContractStateConfirmed, 2},
		{models.ContractStateOngoing, 2},
		{models.ContractStateDone, 2},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			rows := BuildRentalReport([]models.RentalContract{{
				State:        tt.state,
				StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				DurationDays: 2,
			}})
			require.Len(t, rows, 1)
			assert.Equal(t, tt.daysRented, rows[0].DaysRented)
		})
	}
}

func TestBuildOccupationReport(t *testing.T) {
	bikes := []models.Bike{
		{ID: 1, Name: "VTT 27"},
		{ID: 2, Name: "Cargo Long"},
	}
	contracts := []models.RentalContract{
		{BikeID: 1, State: models.ContractStateDone, DurationDays: 15, TotalAmount: 150},
		{BikeID: 1, State: models.ContractStateOngoing, DurationDays: 15, TotalAmount: 180},
	}

	rows := BuildOccupationReport(bikes, contracts)
	require.Len(t, rows, 2)

	rented := rows[0]
	assert.Equal(t, uint(1), rented.BikeID)
	assert.InDelta(t, 30.0, rented.TotalDaysRented, 0.0001)
	assert.Equal(t, 2, rented.NumberOfRentals)
	assert.InDelta(t, 330.0, rented.TotalRevenue, 0.0001)
	// 30 days over a 365-day window, rounded to 2 decimals
	assert.InDelta(t, 8.22, rented.OccupationRate, 0.0001)
	assert.Equal(t, models.OccupationPeriodDays, rented.PeriodDays)

	// Unrented bikes still appear, fully zeroed
	idle := rows[1]
	assert.Equal(t, uint(2), idle.BikeID)
	assert.Zero(t, idle.TotalDaysRented)
	assert.Zero(t, idle.NumberOfRentals)
	assert.Zero(t, idle.TotalRevenue)
	assert.Zero(t, idle.OccupationRate)
}

func TestBuildOccupationReportFullYear(t *testing.T) {
	bikes := []models.Bike{{ID: 1, Name: "VTT 27"}}
	contracts := []models.RentalContract{
		{BikeID: 1, State: models.ContractStateDone, DurationDays: 365, TotalAmount: 3650},
	}

	rows := BuildOccupationReport(bikes, contracts)
	require.Len(t, rows, 1)
	assert.InDelta(t, 100.0, rows[0].OccupationRate, 0.0001)
}
