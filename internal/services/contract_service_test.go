package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
	"github.com/veloparc/velo-api/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}

// newSilentAuditService backs the audit trail with a bare sqlmock connection;
// audit failures are ignored by the services under test.
func newSilentAuditService(t *testing.T) *AuditService {
	t.Helper()
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewAuditService(db)
}

type stubContractRepo struct {
	repository.ContractRepository
	contracts   map[uint]*models.RentalContract
	overlaps    map[uint]int64
	bookings    []models.RentalContract
	dueToStart  []models.RentalContract
	dueToFinish []models.RentalContract
	created     []*models.RentalContract
	updates     []models.RentalContract
	deleted     []uint
}

func newStubContractRepo() *stubContractRepo {
	return &stubContractRepo{
		contracts: make(map[uint]*models.RentalContract),
		overlaps:  make(map[uint]int64),
	}
}

func (m *stubContractRepo) FindByID(ctx context.Context, id uint) (*models.RentalContract, error) {
	contract, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (m *stubContractRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.RentalContract, error) {
	return m.FindByID(ctx, id)
}

func (m *stubContractRepo) Create(ctx context.Context, contract *models.RentalContract) error {
	contract.ID = uint(len(m.created) + 1)
	m.created = append(m.created, contract)
	m.contracts[contract.ID] = contract
	return nil
}

func (m *stubContractRepo) Update(ctx context.Context, contract *models.RentalContract) error {
	m.updates = append(m.updates, *contract)
	return nil
}

func (m *stubContractRepo) Delete(ctx context.Context, id uint) error {
	m.deleted = append(m.deleted, id)
	delete(m.contracts, id)
	return nil
}

// CountOverlapping mirrors the repository contract: blocking states only,
// half-open interval, self excluded. A fixed count per bike can be forced
// through the overlaps map.
func (m *stubContractRepo) CountOverlapping(ctx context.Context, bikeID, excludeID uint, start, end time.Time) (int64, error) {
	if count, ok := m.overlaps[bikeID]; ok {
		return count, nil
	}
	var count int64
	for _, booking := range m.bookings {
		if booking.BikeID != bikeID || booking.ID == excludeID {
			continue
		}
		if booking.State != models.ContractStateConfirmed && booking.State != models.ContractStateOngoing {
			continue
		}
		if booking.StartDate.Before(end) && booking.EndDate.After(start) {
			count++
		}
	}
	return count, nil
}

func (m *stubContractRepo) FindDueToStart(ctx context.Context, now time.Time) ([]models.RentalContract, error) {
	return m.dueToStart, nil
}

func (m *stubContractRepo) FindDueToFinish(ctx context.Context, now time.Time) ([]models.RentalContract, error) {
	return m.dueToFinish, nil
}

type stubBikeRepo struct {
	repository.BikeRepository
	bikes map[uint]*models.Bike
}

func (m *stubBikeRepo) FindByID(ctx context.Context, id uint) (*models.Bike, error) {
	bike, ok := m.bikes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return bike, nil
}

type stubCustomerRepo struct {
	repository.CustomerRepository
	customers map[uint]*models.Customer
}

func (m *stubCustomerRepo) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

type stubInvoiceRepo struct {
	repository.InvoiceRepository
	nextNumber string
	issued     []*models.Invoice
}

func (m *stubInvoiceRepo) NextNumber(ctx context.Context, issueDate time.Time) (string, error) {
	return m.nextNumber, nil
}

func (m *stubInvoiceRepo) Issue(ctx context.Context, invoice *models.Invoice, contract *models.RentalContract) error {
	invoice.ID = uint(len(m.issued) + 1)
	contract.InvoiceID = &invoice.ID
	m.issued = append(m.issued, invoice)
	return nil
}

type contractServiceFixture struct {
	svc          *ContractService
	contractRepo *stubContractRepo
	bikeRepo     *stubBikeRepo
	invoiceRepo  *stubInvoiceRepo
}

func newContractServiceFixture(t *testing.T, dateGuard string) *contractServiceFixture {
	t.Helper()
	contractRepo := newStubContractRepo()
	bikeRepo := &stubBikeRepo{bikes: map[uint]*models.Bike{
		1: {ID: 1, Name: "VTT 27", RentalAvailable: true, HourlyRate: 5, DailyRate: 20},
		2: {ID: 2, Name: "Cargo Long", RentalAvailable: false, DailyRate: 35},
	}}
	customerRepo := &stubCustomerRepo{customers: map[uint]*models.Customer{
		1: {ID: 1, FullName: "Jeanne Martin", Email: "jeanne@example.fr"},
	}}
	invoiceRepo := &stubInvoiceRepo{nextNumber: "INV-2026-00001"}

	svc := NewContractService(contractRepo, bikeRepo, customerRepo, invoiceRepo, newSilentAuditService(t), dateGuard)
	return &contractServiceFixture{
		svc:          svc,
		contractRepo: contractRepo,
		bikeRepo:     bikeRepo,
		invoiceRepo:  invoiceRepo,
	}
}

func TestCreateContract(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := &models.RentalContract{
			BikeID:     1,
			CustomerID: 1,
			StartDate:  start,
			EndDate:    start.Add(48 * time.Hour),
		}

		err := f.svc.Create(ctx, contract, "admin@veloparc.fr", "127.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, models.ContractStateDraft, contract.State)
		assert.Equal(t, models.BillingUnitDay, contract.BillingUnit)
		assert.Regexp(t, `^LOC-[0-9A-F]{8}$`, contract.Reference)
		assert.Equal(t, 20.0, contract.UnitPrice)
		assert.InDelta(t, 40.0, contract.Price, 0.0001)
		assert.Equal(t, "VTT 27", contract.Bike.Name)
		assert.Equal(t, "Jeanne Martin", contract.Customer.FullName)
		assert.Len(t, f.contractRepo.created, 1)
	})

	t.Run("Unrentable Bike Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := &models.RentalContract{
			BikeID:     2,
			CustomerID: 1,
			StartDate:  start,
			EndDate:    start.Add(24 * time.Hour),
		}

		err := f.svc.Create(ctx, contract, "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), "Cargo Long")
	})

	t.Run("End Before Start Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := &models.RentalContract{
			BikeID:     1,
			CustomerID: 1,
			StartDate:  start,
			EndDate:    start,
		}

		err := f.svc.Create(ctx, contract, "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "La date de fin doit être strictement après la date de début.", err.Error())
	})

	t.Run("Past Start Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := &models.RentalContract{
			BikeID:     1,
			CustomerID: 1,
			StartDate:  time.Now().Add(-time.Hour),
			EndDate:    time.Now().Add(24 * time.Hour),
		}

		err := f.svc.Create(ctx, contract, "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "La date de début ne peut pas être dans le passé.", err.Error())
	})

	t.Run("Unknown Customer Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := &models.RentalContract{
			BikeID:     1,
			CustomerID: 99,
			StartDate:  start,
			EndDate:    start.Add(24 * time.Hour),
		}

		err := f.svc.Create(ctx, contract, "admin", "")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestUpdateContractDateGuard(t *testing.T) {
	ctx := context.Background()
	pastStart := time.Now().Add(-48 * time.Hour)

	contract := func() *models.RentalContract {
		return &models.RentalContract{
			ID:         1,
			Reference:  "LOC-TEST",
			BikeID:     1,
			CustomerID: 1,
			StartDate:  pastStart,
			EndDate:    pastStart.Add(72 * time.Hour),
			State:      models.ContractStateOngoing,
		}
	}

	t.Run("Strict Rejects Past Start On Update", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.contracts[1] = contract()
		err := f.svc.Update(ctx, contract(), "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("Create Only Allows Past Start On Update", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardCreateOnly)
		f.contractRepo.contracts[1] = contract()
		c := contract()
		err := f.svc.Update(ctx, c, "admin", "")
		require.NoError(t, err)
		assert.Len(t, f.contractRepo.updates, 1)
		assert.InDelta(t, 3.0, c.DurationDays, 0.0001)
		assert.Equal(t, "VTT 27", c.Bike.Name)
	})
}

func TestUpdateContractBikeEligibility(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)

	stored := func(bikeID uint) *models.RentalContract {
		return &models.RentalContract{
			ID:         1,
			Reference:  "LOC-TEST",
			BikeID:     bikeID,
			CustomerID: 1,
			StartDate:  start,
			EndDate:    start.Add(48 * time.Hour),
			State:      models.ContractStateDraft,
		}
	}

	t.Run("Switch To Unrentable Bike Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.contracts[1] = stored(1)

		edited := stored(1)
		edited.BikeID = 2
		err := f.svc.Update(ctx, edited, "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "Le vélo Cargo Long n'est pas disponible à la location.", err.Error())
		assert.Empty(t, f.contractRepo.updates)
	})

	t.Run("Withdrawn Bike Does Not Block Edits", func(t *testing.T) {
		// Bike 2 was taken out of rental after this contract was booked;
		// editing the contract without changing the bike stays allowed.
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.contracts[1] = stored(2)

		edited := stored(2)
		edited.EndDate = edited.EndDate.Add(24 * time.Hour)
		err := f.svc.Update(ctx, edited, "admin", "")
		require.NoError(t, err)
		assert.Len(t, f.contractRepo.updates, 1)
	})

	t.Run("Switch To Rentable Bike Reprices", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.contracts[1] = stored(2)

		edited := stored(2)
		edited.BikeID = 1
		edited.BillingUnit = models.BillingUnitDay
		err := f.svc.Update(ctx, edited, "admin", "")
		require.NoError(t, err)
		assert.Equal(t, 20.0, edited.UnitPrice)
		assert.Equal(t, "VTT 27", edited.Bike.Name)
	})
}

func TestConfirmContract(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)

	seed := func(f *contractServiceFixture, state string) *models.RentalContract {
		contract := &models.RentalContract{
			ID:          1,
			Reference:   "LOC-AAA11111",
			BikeID:      1,
			CustomerID:  1,
			StartDate:   start,
			EndDate:     start.Add(48 * time.Hour),
			BillingUnit: models.BillingUnitDay,
			State:       state,
			Bike:        *f.bikeRepo.bikes[1],
		}
		f.contractRepo.contracts[1] = contract
		return contract
	}

	t.Run("Success", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateDraft)

		contract, err := f.svc.Confirm(ctx, 1, "admin", "")
		require.NoError(t, err)
		assert.Equal(t, models.ContractStateConfirmed, contract.State)
		assert.Len(t, f.contractRepo.updates, 1)
	})

	t.Run("Overlapping Booking Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateDraft)
		f.contractRepo.overlaps[1] = 1

		_, err := f.svc.Confirm(ctx, 1, "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "Le vélo VTT 27 est déjà loué sur cette période.", err.Error())
		assert.Empty(t, f.contractRepo.updates)
	})

	t.Run("Booking Ending At Start Does Not Conflict", func(t *testing.T) {
		// Half-open intervals: a booking that ends exactly when this one
		// begins shares no rented time with it.
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateDraft)
		f.contractRepo.bookings = []models.RentalContract{{
			ID:        9,
			BikeID:    1,
			StartDate: start.Add(-48 * time.Hour),
			EndDate:   start,
			State:     models.ContractStateConfirmed,
		}}

		contract, err := f.svc.Confirm(ctx, 1, "admin", "")
		require.NoError(t, err)
		assert.Equal(t, models.ContractStateConfirmed, contract.State)
	})

	t.Run("Booking Starting At End Does Not Conflict", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateDraft)
		f.contractRepo.bookings = []models.RentalContract{{
			ID:        9,
			BikeID:    1,
			StartDate: start.Add(48 * time.Hour),
			EndDate:   start.Add(96 * time.Hour),
			State:     models.ContractStateConfirmed,
		}}

		_, err := f.svc.Confirm(ctx, 1, "admin", "")
		assert.NoError(t, err)
	})

	t.Run("Enclosed Booking Conflicts", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateDraft)
		f.contractRepo.bookings = []models.RentalContract{{
			ID:        9,
			BikeID:    1,
			StartDate: start.Add(12 * time.Hour),
			EndDate:   start.Add(36 * time.Hour),
			State:     models.ContractStateOngoing,
		}}

		_, err := f.svc.Confirm(ctx, 1, "admin", "")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("Cancelled Booking Does Not Block", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateDraft)
		f.contractRepo.bookings = []models.RentalContract{{
			ID:        9,
			BikeID:    1,
			StartDate: start,
			EndDate:   start.Add(48 * time.Hour),
			State:     models.ContractStateCancelled,
		}}

		_, err := f.svc.Confirm(ctx, 1, "admin", "")
		assert.NoError(t, err)
	})

	t.Run("Wrong State Rejected", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		seed(f, models.ContractStateOngoing)

		_, err := f.svc.Confirm(ctx, 1, "admin", "")
		assert.Error(t, err)
	})
}

func TestFinishContract(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(-48 * time.Hour)

	f := newContractServiceFixture(t, DateGuardStrict)
	f.contractRepo.contracts[1] = &models.RentalContract{
		ID:          1,
		Reference:   "LOC-BBB22222",
		BikeID:      1,
		CustomerID:  1,
		StartDate:   start,
		EndDate:     start.Add(24 * time.Hour), // ended a day ago
		BillingUnit: models.BillingUnitDay,
		State:       models.ContractStateOngoing,
		Bike:        *f.bikeRepo.bikes[1],
	}

	contract, err := f.svc.Finish(ctx, 1, "admin", "")
	require.NoError(t, err)

	assert.Equal(t, models.ContractStateDone, contract.State)
	require.NotNil(t, contract.ActualReturnDate)
	assert.True(t, contract.IsLate)
	assert.InDelta(t, 24.0, contract.LateHours, 0.1)
	assert.Greater(t, contract.LatePenalty, 0.0)
}

func TestDeleteContract(t *testing.T) {
	ctx := context.Background()

	t.Run("Draft Deleted", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.contracts[1] = &models.RentalContract{ID: 1, State: models.ContractStateDraft}

		require.NoError(t, f.svc.Delete(ctx, 1, "admin", ""))
		assert.Equal(t, []uint{1}, f.contractRepo.deleted)
	})

	t.Run("Ongoing Refused", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.contracts[1] = &models.RentalContract{ID: 1, State: models.ContractStateOngoing}

		err := f.svc.Delete(ctx, 1, "admin", "")
		require.Error(t, err)
		assert.True(t, IsUserError(err))
		assert.Empty(t, f.contractRepo.deleted)
	})
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(-72 * time.Hour)
	end := start.Add(48 * time.Hour)
	returned := end.Add(12 * time.Hour)

	seed := func(f *contractServiceFixture) *models.RentalContract {
		contract := &models.RentalContract{
			ID:               1,
			Reference:        "LOC-CCC33333",
			BikeID:           1,
			CustomerID:       1,
			StartDate:        start,
			EndDate:          end,
			BillingUnit:      models.BillingUnitDay,
			State:            models.ContractStateDone,
			ActualReturnDate: &returned,
			Bike:             *f.bikeRepo.bikes[1],
		}
		contract.Recompute(&contract.Bike, returned)
		f.contractRepo.contracts[1] = contract
		return contract
	}

	t.Run("Done Contract With Late Return", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := seed(f)

		invoice, err := f.svc.CreateInvoice(ctx, 1, "admin", "")
		require.NoError(t, err)

		assert.Equal(t, "INV-2026-00001", invoice.Number)
		assert.Equal(t, contract.Reference, invoice.Origin)
		assert.Equal(t, contract.CustomerID, invoice.CustomerID)
		require.Len(t, invoice.Lines, 2)

		rental := invoice.Lines[0]
		assert.Equal(t, "Location vélo VTT 27 - 2.00 jours", rental.Description)
		assert.InDelta(t, 2.0, rental.Quantity, 0.0001)
		assert.Equal(t, 20.0, rental.UnitPrice)
		assert.InDelta(t, 40.0, rental.Amount, 0.0001)

		penalty := invoice.Lines[1]
		assert.Equal(t, "Pénalité retard - 12.00 heures (0.50 jours)", penalty.Description)
		assert.InDelta(t, 0.5, penalty.Quantity, 0.0001)
		assert.InDelta(t, 20.0, penalty.UnitPrice, 0.0001)
		assert.InDelta(t, 10.0, penalty.Amount, 0.0001)

		assert.InDelta(t, 50.0, invoice.Total, 0.0001)
		require.NotNil(t, contract.InvoiceID)
		assert.Equal(t, invoice.ID, *contract.InvoiceID)
	})

	t.Run("On Time Return Has Single Line", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := seed(f)
		onTime := end.Add(-time.Hour)
		contract.ActualReturnDate = &onTime
		contract.Recompute(&contract.Bike, onTime)

		invoice, err := f.svc.CreateInvoice(ctx, 1, "admin", "")
		require.NoError(t, err)
		require.Len(t, invoice.Lines, 1)
		assert.InDelta(t, 40.0, invoice.Total, 0.0001)
	})

	t.Run("Second Invoice Refused", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := seed(f)
		existing := uint(7)
		contract.InvoiceID = &existing

		_, err := f.svc.CreateInvoice(ctx, 1, "admin", "")
		require.Error(t, err)
		assert.True(t, IsUserError(err))
		assert.Equal(t, "Une facture a déjà été créée pour ce contrat.", err.Error())
	})

	t.Run("Draft Contract Refused", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		contract := seed(f)
		contract.State = models.ContractStateDraft

		_, err := f.svc.CreateInvoice(ctx, 1, "admin", "")
		require.Error(t, err)
		assert.True(t, IsUserError(err))
		assert.Equal(t, "Le contrat doit être 'En cours' ou 'Terminé' pour créer une facture.", err.Error())
		assert.Empty(t, f.invoiceRepo.issued)
	})
}

func TestUpdateContractStates(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Starts And Finishes Due Contracts", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.dueToStart = []models.RentalContract{{
			ID:          1,
			Reference:   "LOC-START",
			BikeID:      1,
			StartDate:   now.Add(-time.Hour),
			EndDate:     now.Add(24 * time.Hour),
			BillingUnit: models.BillingUnitDay,
			State:       models.ContractStateConfirmed,
			Bike:        *f.bikeRepo.bikes[1],
		}}
		f.contractRepo.dueToFinish = []models.RentalContract{{
			ID:          2,
			Reference:   "LOC-FINISH",
			BikeID:      1,
			StartDate:   now.Add(-48 * time.Hour),
			EndDate:     now.Add(-time.Hour),
			BillingUnit: models.BillingUnitDay,
			State:       models.ContractStateOngoing,
			Bike:        *f.bikeRepo.bikes[1],
		}}

		require.NoError(t, f.svc.UpdateContractStates(ctx))
		require.Len(t, f.contractRepo.updates, 2)
		assert.Equal(t, models.ContractStateOngoing, f.contractRepo.updates[0].State)
		assert.Equal(t, models.ContractStateDone, f.contractRepo.updates[1].State)
		assert.NotNil(t, f.contractRepo.updates[1].ActualReturnDate)
	})

	t.Run("Does Not Chain Start And Finish In One Pass", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		// Confirmed contract whose whole booking period is already over: it was
		// selected as due-to-start only, so a single pass must leave it ongoing.
		f.contractRepo.dueToStart = []models.RentalContract{{
			ID:          1,
			Reference:   "LOC-EXPIRED",
			BikeID:      1,
			StartDate:   now.Add(-72 * time.Hour),
			EndDate:     now.Add(-24 * time.Hour),
			BillingUnit: models.BillingUnitDay,
			State:       models.ContractStateConfirmed,
			Bike:        *f.bikeRepo.bikes[1],
		}}

		require.NoError(t, f.svc.UpdateContractStates(ctx))
		require.Len(t, f.contractRepo.updates, 1)
		assert.Equal(t, models.ContractStateOngoing, f.contractRepo.updates[0].State)
	})

	t.Run("Failure On One Contract Does Not Stop The Pass", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		f.contractRepo.overlaps[2] = 1 // blocks the first candidate's bike
		f.contractRepo.dueToStart = []models.RentalContract{
			{
				ID:          1,
				Reference:   "LOC-BLOCKED",
				BikeID:      2,
				StartDate:   now.Add(-time.Hour),
				EndDate:     now.Add(24 * time.Hour),
				BillingUnit: models.BillingUnitDay,
				State:       models.ContractStateConfirmed,
				Bike:        *f.bikeRepo.bikes[2],
			},
			{
				ID:          2,
				Reference:   "LOC-OK",
				BikeID:      1,
				StartDate:   now.Add(-time.Hour),
				EndDate:     now.Add(24 * time.Hour),
				BillingUnit: models.BillingUnitDay,
				State:       models.ContractStateConfirmed,
				Bike:        *f.bikeRepo.bikes[1],
			},
		}

		require.NoError(t, f.svc.UpdateContractStates(ctx))
		require.Len(t, f.contractRepo.updates, 1)
		assert.Equal(t, "LOC-OK", f.contractRepo.updates[0].Reference)
		assert.Equal(t, models.ContractStateOngoing, f.contractRepo.updates[0].State)
	})

	t.Run("Idempotent When Nothing Is Due", func(t *testing.T) {
		f := newContractServiceFixture(t, DateGuardStrict)
		require.NoError(t, f.svc.UpdateContractStates(ctx))
		assert.Empty(t, f.contractRepo.updates)
	})
}
