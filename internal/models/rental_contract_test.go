package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeDurationAndPrice(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	bike := &Bike{Name: "VTT 27", HourlyRate: 5, DailyRate: 10}

	t.Run("Daily Billing", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     start.Add(48 * time.Hour),
			BillingUnit: BillingUnitDay,
			State:       ContractStateDraft,
		}
		c.Recompute(bike, start)

		assert.InDelta(t, 48.0, c.DurationHours, 0.0001)
		assert.InDelta(t, 2.0, c.DurationDays, 0.0001)
		assert.Equal(t, 10.0, c.UnitPrice)
		assert.InDelta(t, 20.0, c.Price, 0.0001)
		assert.InDelta(t, 20.0, c.TotalAmount, 0.0001)
	})

	t.Run("Hourly Billing", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     start.Add(3 * time.Hour),
			BillingUnit: BillingUnitHour,
			State:       ContractStateDraft,
		}
		c.Recompute(bike, start)

		assert.InDelta(t, 3.0, c.DurationHours, 0.0001)
		assert.Equal(t, 5.0, c.UnitPrice)
		assert.InDelta(t, 15.0, c.Price, 0.0001)
	})

	t.Run("Inverted Dates Yield Zero Duration", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     start.Add(-time.Hour),
			BillingUnit: BillingUnitDay,
		}
		c.Recompute(bike, start)

		assert.Zero(t, c.DurationHours)
		assert.Zero(t, c.DurationDays)
		assert.Zero(t, c.Price)
	})

	t.Run("Nil Bike Zeroes Unit Price", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     start.Add(24 * time.Hour),
			BillingUnit: BillingUnitDay,
		}
		c.Recompute(nil, start)

		assert.Zero(t, c.UnitPrice)
		assert.Zero(t, c.Price)
	})
}

func TestRecomputeLateness(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	bike := &Bike{Name: "VTT 27", DailyRate: 10}

	t.Run("Ongoing Past End Date Is Late", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     end,
			BillingUnit: BillingUnitDay,
			State:       ContractStateOngoing,
		}
		c.Recompute(bike, end.Add(6*time.Hour))

		assert.True(t, c.IsLate)
		assert.InDelta(t, 6.0, c.LateHours, 0.0001)
		// 6 late hours at the daily rate spread over 24h
		assert.InDelta(t, 2.5, c.LatePenalty, 0.0001)
		assert.InDelta(t, 12.5, c.TotalAmount, 0.0001)
	})

	t.Run("Done Uses Actual Return Date", func(t *testing.T) {
		returned := end.Add(12 * time.Hour)
		c := &RentalContract{
			StartDate:        start,
			EndDate:          end,
			BillingUnit:      BillingUnitDay,
			State:            ContractStateDone,
			ActualReturnDate: &returned,
		}
		// Clock well past the return: lateness must still come from the return date
		c.Recompute(bike, end.Add(100*time.Hour))

		assert.True(t, c.IsLate)
		assert.InDelta(t, 12.0, c.LateHours, 0.0001)
		assert.InDelta(t, 5.0, c.LatePenalty, 0.0001)
	})

	t.Run("Draft Is Never Late", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     end,
			BillingUnit: BillingUnitDay,
			State:       ContractStateDraft,
		}
		c.Recompute(bike, end.Add(48*time.Hour))

		assert.False(t, c.IsLate)
		assert.Zero(t, c.LateHours)
		assert.Zero(t, c.LatePenalty)
	})

	t.Run("Cancelled Is Never Late", func(t *testing.T) {
		c := &RentalContract{
			StartDate:   start,
			EndDate:     end,
			BillingUnit: BillingUnitDay,
			State:       ContractStateCancelled,
		}
		c.Recompute(bike, end.Add(48*time.Hour))

		assert.False(t, c.IsLate)
	})

	t.Run("On Time Return Has No Penalty", func(t *testing.T) {
		returned := end.Add(-time.Hour)
		c := &RentalContract{
			StartDate:        start,
			EndDate:          end,
			BillingUnit:      BillingUnitDay,
			State:            ContractStateDone,
			ActualReturnDate: &returned,
		}
		c.Recompute(bike, returned)

		assert.False(t, c.IsLate)
		assert.Zero(t, c.LatePenalty)
		assert.InDelta(t, c.Price, c.TotalAmount, 0.0001)
	})
}

func TestHourlyEquivalentRate(t *testing.T) {
	c := &RentalContract{BillingUnit: BillingUnitHour, UnitPrice: 5}
	assert.Equal(t, 5.0, c.HourlyEquivalentRate())

	c = &RentalContract{BillingUnit: BillingUnitDay, UnitPrice: 24}
	assert.Equal(t, 1.0, c.HourlyEquivalentRate())
}

func TestStateGuards(t *testing.T) {
	tests := []struct {
		state       string
		confirm     bool
		start       bool
		finish      bool
		cancel      bool
		reset       bool
		invoiceable bool
	}{
		{ContractStateDraft, true, false, false, true, false, false},
		{ContractStateConfirmed, false, true, false, true, false, false},
		{ContractStateOngoing, false, false, true, true, false, true},
		{ContractStateDone, false, false, false, false, false, true},
		{ContractStateCancelled, false, false, false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			c := &RentalContract{State: tt.state}
			assert.Equal(t, tt.confirm, c.MayConfirm())
			assert.Equal(t, tt.start, c.MayStart())
			assert.Equal(t, tt.finish, c.MayFinish())
			assert.Equal(t, tt.cancel, c.MayCancel())
			assert.Equal(t, tt.reset, c.MayResetDraft())
			assert.Equal(t, tt.invoiceable, c.IsInvoiceable())
		})
	}
}
