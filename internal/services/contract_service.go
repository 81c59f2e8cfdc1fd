package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
	"github.com/veloparc/velo-api/internal/statemachine"
	"github.com/veloparc/velo-api/pkg/logger"
)

// Date guard policies for edits touching the booking period
const (
	DateGuardStrict     = "strict"      // past-start re-validated on every date edit
	DateGuardCreateOnly = "create-only" // past-start enforced only at creation
)

// SchedulerActor identifies transitions applied by the periodic job
const SchedulerActor = "scheduler"

type ContractService struct {
	repo         repository.ContractRepository
	bikeRepo     repository.BikeRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	auditSvc     *AuditService
	dateGuard    string
}

func NewContractService(
	repo repository.ContractRepository,
	bikeRepo repository.BikeRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	auditSvc *AuditService,
	dateGuard string,
) *ContractService {
	if dateGuard != DateGuardCreateOnly {
		dateGuard = DateGuardStrict
	}
	return &ContractService{
		repo:         repo,
		bikeRepo:     bikeRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		auditSvc:     auditSvc,
		dateGuard:    dateGuard,
	}
}

// FindByID gets a contract by ID
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.RentalContract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contract.RecomputeLate(time.Now())
	return contract, nil
}

// FindByIDWithDetails gets a contract by ID with bike, customer and invoice preloaded
func (s *ContractService) FindByIDWithDetails(ctx context.Context, id uint) (*models.RentalContract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	contract.RecomputeLate(time.Now())
	return contract, nil
}

// List returns contracts matching the query. Late fields of ongoing contracts
// are refreshed in memory so lateness reflects the current time, not the last
// persisted write.
func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.RentalContract, int64, error) {
	contracts, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	for i := range contracts {
		contracts[i].RecomputeLate(now)
	}
	return contracts, total, nil
}

func (s *ContractService) FindByBike(ctx context.Context, bikeID uint) ([]models.RentalContract, error) {
	return s.repo.FindByBike(ctx, bikeID)
}

func (s *ContractService) FindByCustomer(ctx context.Context, customerID uint) ([]models.RentalContract, error) {
	return s.repo.FindByCustomer(ctx, customerID)
}

// Create validates and persists a new draft contract
func (s *ContractService) Create(ctx context.Context, contract *models.RentalContract, actor, ip string) error {
	bike, err := s.bikeRepo.FindByID(ctx, contract.BikeID)
	if err != nil {
		return err
	}
	if !bike.IsRentable() {
		return NewValidationError(fmt.Sprintf("Le vélo %s n'est pas disponible à la location.", bike.Name))
	}

	customer, err := s.customerRepo.FindByID(ctx, contract.CustomerID)
	if err != nil {
		return err
	}

	if err := s.validateDates(contract, time.Now(), true); err != nil {
		return err
	}

	if strings.TrimSpace(contract.Reference) == "" {
		contract.Reference = "LOC-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if contract.BillingUnit == "" {
		contract.BillingUnit = models.BillingUnitDay
	}
	contract.State = models.ContractStateDraft
	contract.Recompute(bike, time.Now())

	if err := s.repo.Create(ctx, contract); err != nil {
		return err
	}
	contract.Bike = *bike
	contract.Customer = *customer

	s.auditSvc.Log(ctx, actor, "CREATE", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s créé pour le vélo %s, client %s", contract.Reference, bike.Name, customer.FullName), ip)

	return nil
}

// Update validates and persists changes to an existing contract, refreshing
// every derived field. Re-pointing the contract at another bike requires that
// bike to be rentable; a bike withdrawn from rental after the booking does not
// block edits to its existing contracts.
func (s *ContractService) Update(ctx context.Context, contract *models.RentalContract, actor, ip string) error {
	bike, err := s.bikeRepo.FindByID(ctx, contract.BikeID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, contract.ID)
	if err != nil {
		return err
	}
	if existing.BikeID != contract.BikeID && !bike.IsRentable() {
		return NewValidationError(fmt.Sprintf("Le vélo %s n'est pas disponible à la location.", bike.Name))
	}

	customer, err := s.customerRepo.FindByID(ctx, contract.CustomerID)
	if err != nil {
		return err
	}

	checkPast := s.dateGuard == DateGuardStrict
	if err := s.validateDates(contract, time.Now(), checkPast); err != nil {
		return err
	}

	contract.Recompute(bike, time.Now())

	if err := s.repo.Update(ctx, contract); err != nil {
		return err
	}
	contract.Bike = *bike
	contract.Customer = *customer

	s.auditSvc.Log(ctx, actor, "UPDATE", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s modifié", contract.Reference), ip)

	return nil
}

// Delete removes a contract. Only drafts and cancelled contracts can be deleted.
func (s *ContractService) Delete(ctx context.Context, id uint, actor, ip string) error {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if contract.State != models.ContractStateDraft && contract.State != models.ContractStateCancelled {
		return NewUserError("Seul un contrat en brouillon ou annulé peut être supprimé.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "RentalContract", id,
		fmt.Sprintf("Contrat %s supprimé", contract.Reference), ip)
	return nil
}

// validateDates enforces the booking period rules: the end must be strictly
// after the start, and, when checkPast is set, the start must not be in the past.
func (s *ContractService) validateDates(contract *models.RentalContract, now time.Time, checkPast bool) error {
	if contract.StartDate.IsZero() || contract.EndDate.IsZero() {
		return nil
	}
	if !contract.StartDate.Before(contract.EndDate) {
		return NewValidationError("La date de fin doit être strictement après la date de début.")
	}
	if checkPast && contract.StartDate.Before(now) {
		return NewValidationError("La date de début ne peut pas être dans le passé.")
	}
	return nil
}

// checkBikeAvailability rejects the booking when another confirmed or ongoing
// contract holds the same bike over an overlapping period. Touching endpoints
// are allowed.
func (s *ContractService) checkBikeAvailability(ctx context.Context, contract *models.RentalContract) error {
	if contract.BikeID == 0 || contract.StartDate.IsZero() || contract.EndDate.IsZero() {
		return nil
	}
	count, err := s.repo.CountOverlapping(ctx, contract.BikeID, contract.ID, contract.StartDate, contract.EndDate)
	if err != nil {
		return err
	}
	if count > 0 {
		bikeName := contract.Bike.Name
		if bikeName == "" {
			if bike, err := s.bikeRepo.FindByID(ctx, contract.BikeID); err == nil {
				bikeName = bike.Name
			}
		}
		return NewValidationError(fmt.Sprintf("Le vélo %s est déjà loué sur cette période.", bikeName))
	}
	return nil
}

// Confirm transitions a draft contract to confirmed after checking availability
func (s *ContractService) Confirm(ctx context.Context, id uint, actor, ip string) (*models.RentalContract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkBikeAvailability(ctx, contract); err != nil {
		return nil, err
	}

	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.Confirm(ctx); err != nil {
		return nil, err
	}

	contract.Recompute(&contract.Bike, time.Now())
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "CONFIRM", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s confirmé", contract.Reference), ip)

	return contract, nil
}

// Start transitions a confirmed contract to ongoing after re-checking availability
func (s *ContractService) Start(ctx context.Context, id uint, actor, ip string) (*models.RentalContract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkBikeAvailability(ctx, contract); err != nil {
		return nil, err
	}

	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.Start(ctx); err != nil {
		return nil, err
	}

	contract.Recompute(&contract.Bike, time.Now())
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "START", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s démarré", contract.Reference), ip)

	return contract, nil
}

// Finish transitions an ongoing contract to done and records the return time
func (s *ContractService) Finish(ctx context.Context, id uint, actor, ip string) (*models.RentalContract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.Finish(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	contract.ActualReturnDate = &now
	contract.Recompute(&contract.Bike, now)
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "DONE", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s terminé, vélo rendu", contract.Reference), ip)

	return contract, nil
}

// Cancel transitions a non-terminal contract to cancelled
func (s *ContractService) Cancel(ctx context.Context, id uint, actor, ip string) (*models.RentalContract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.Cancel(ctx); err != nil {
		return nil, err
	}

	contract.Recompute(&contract.Bike, time.Now())
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "CANCEL", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s annulé", contract.Reference), ip)

	return contract, nil
}

// ResetDraft brings a cancelled contract back to draft
func (s *ContractService) ResetDraft(ctx context.Context, id uint, actor, ip string) (*models.RentalContract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.ResetDraft(ctx); err != nil {
		return nil, err
	}

	contract.Recompute(&contract.Bike, time.Now())
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "RESET", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s remis en brouillon", contract.Reference), ip)

	return contract, nil
}

// CreateInvoice builds and persists the invoice for an ongoing or done
// contract: one rental line, plus a penalty line when the return is late.
// The invoice insert and the contract stamp happen in one transaction.
func (s *ContractService) CreateInvoice(ctx context.Context, id uint, actor, ip string) (*models.Invoice, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if contract.InvoiceID != nil {
		return nil, NewUserError("Une facture a déjà été créée pour ce contrat.")
	}
	if !contract.IsInvoiceable() {
		return nil, NewUserError("Le contrat doit être 'En cours' ou 'Terminé' pour créer une facture.")
	}

	now := time.Now()
	contract.RecomputeLate(now)

	number, err := s.invoiceRepo.NextNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		Number:     number,
		CustomerID: contract.CustomerID,
		IssueDate:  now,
		Origin:     contract.Reference,
		Lines:      buildInvoiceLines(contract),
	}
	total := decimal.Zero
	for _, line := range invoice.Lines {
		total = total.Add(decimal.NewFromFloat(line.Amount))
	}
	invoice.Total = total.Round(2).InexactFloat64()

	if err := s.invoiceRepo.Issue(ctx, invoice, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, "INVOICE", "RentalContract", contract.ID,
		fmt.Sprintf("Facture %s créée pour le contrat %s, total %.2f", invoice.Number, contract.Reference, invoice.Total), ip)

	return invoice, nil
}

// buildInvoiceLines derives the billable lines from the contract's current
// derived fields
func buildInvoiceLines(contract *models.RentalContract) []models.InvoiceLine {
	var quantity float64
	var description string
	if contract.BillingUnit == models.BillingUnitHour {
		quantity = contract.DurationHours
		description = fmt.Sprintf("Location vélo %s - %.2f heures", contract.Bike.Name, contract.DurationHours)
	} else {
		quantity = contract.DurationDays
		description = fmt.Sprintf("Location vélo %s - %.2f jours", contract.Bike.Name, contract.DurationDays)
	}

	lines := []models.InvoiceLine{
		{
			Description: description,
			Quantity:    quantity,
			UnitPrice:   contract.UnitPrice,
			Amount:      lineAmount(quantity, contract.UnitPrice),
		},
	}

	if contract.IsLate && contract.LateHours > 0 {
		lateDays := contract.LateHours / 24
		penaltyUnit := contract.HourlyEquivalentRate() * 24 // price per late day
		lines = append(lines, models.InvoiceLine{
			Description: fmt.Sprintf("Pénalité retard - %.2f heures (%.2f jours)", contract.LateHours, lateDays),
			Quantity:    lateDays,
			UnitPrice:   penaltyUnit,
			Amount:      lineAmount(lateDays, penaltyUnit),
		})
	}

	return lines
}

func lineAmount(quantity, unitPrice float64) float64 {
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(unitPrice)).
		Round(2).
		InexactFloat64()
}

// FindInvoice gets an issued invoice with its lines
func (s *ContractService) FindInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// ListInvoices returns issued invoices matching the query
func (s *ContractService) ListInvoices(ctx context.Context, query *repository.ListQuery) ([]models.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, query)
}

// GetStats returns contract counts by state
func (s *ContractService) GetStats(ctx context.Context) (*repository.ContractStats, error) {
	return s.repo.GetStats(ctx)
}

// UpdateContractStates advances contract states for the periodic job. Both
// candidate sets are selected before any transition is applied, so a single
// pass never starts and finishes the same contract. Each transition is
// independent: a failure is logged and the pass continues.
func (s *ContractService) UpdateContractStates(ctx context.Context) error {
	now := time.Now()

	dueToStart, err := s.repo.FindDueToStart(ctx, now)
	if err != nil {
		return err
	}
	dueToFinish, err := s.repo.FindDueToFinish(ctx, now)
	if err != nil {
		return err
	}

	started, finished := 0, 0

	for i := range dueToStart {
		contract := &dueToStart[i]
		if err := s.startScheduled(ctx, contract, now); err != nil {
			logger.Warn(fmt.Sprintf("[Contract cron] Failed to start contract %d (%s): %v", contract.ID, contract.Reference, err))
			continue
		}
		started++
	}

	for i := range dueToFinish {
		contract := &dueToFinish[i]
		if err := s.finishScheduled(ctx, contract, now); err != nil {
			logger.Warn(fmt.Sprintf("[Contract cron] Failed to finish contract %d (%s): %v", contract.ID, contract.Reference, err))
			continue
		}
		finished++
	}

	if started > 0 || finished > 0 {
		logger.Info(fmt.Sprintf("[Contract cron] Started %d contract(s), finished %d contract(s)", started, finished))
	}

	return nil
}

func (s *ContractService) startScheduled(ctx context.Context, contract *models.RentalContract, now time.Time) error {
	if err := s.checkBikeAvailability(ctx, contract); err != nil {
		return err
	}

	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.Start(ctx); err != nil {
		return err
	}

	contract.Recompute(&contract.Bike, now)
	if err := s.repo.Update(ctx, contract); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, SchedulerActor, "START", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s démarré automatiquement", contract.Reference), "")
	return nil
}

func (s *ContractService) finishScheduled(ctx context.Context, contract *models.RentalContract, now time.Time) error {
	fsm := statemachine.NewRentalFSM(contract)
	if err := fsm.Finish(ctx); err != nil {
		return err
	}

	contract.ActualReturnDate = &now
	contract.Recompute(&contract.Bike, now)
	if err := s.repo.Update(ctx, contract); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, SchedulerActor, "DONE", "RentalContract", contract.ID,
		fmt.Sprintf("Contrat %s terminé automatiquement", contract.Reference), "")
	return nil
}
