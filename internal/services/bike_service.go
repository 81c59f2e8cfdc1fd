package services

import (
	"context"
	"fmt"

	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
)

type BikeService struct {
	repo         repository.BikeRepository
	contractRepo repository.ContractRepository
	auditSvc     *AuditService
}

func NewBikeService(repo repository.BikeRepository, contractRepo repository.ContractRepository, auditSvc *AuditService) *BikeService {
	return &BikeService{
		repo:         repo,
		contractRepo: contractRepo,
		auditSvc:     auditSvc,
	}
}

func (s *BikeService) FindByID(ctx context.Context, id uint) (*models.Bike, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BikeService) List(ctx context.Context, query *repository.ListQuery) ([]models.Bike, int64, error) {
	return s.repo.List(ctx, query)
}

// FindRentable returns the bikes currently offered for rental
func (s *BikeService) FindRentable(ctx context.Context) ([]models.Bike, error) {
	return s.repo.FindRentable(ctx)
}

func (s *BikeService) Create(ctx context.Context, bike *models.Bike, actor, ip string) error {
	if err := validateRates(bike); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, bike); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "CREATE", "Bike", bike.ID,
		fmt.Sprintf("Vélo %s créé (%.2f/h, %.2f/j)", bike.Name, bike.HourlyRate, bike.DailyRate), ip)
	return nil
}

func (s *BikeService) Update(ctx context.Context, bike *models.Bike, actor, ip string) error {
	if err := validateRates(bike); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, bike); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "UPDATE", "Bike", bike.ID,
		fmt.Sprintf("Vélo %s modifié", bike.Name), ip)
	return nil
}

// Delete removes a bike unless rental contracts reference it
func (s *BikeService) Delete(ctx context.Context, id uint, actor, ip string) error {
	bike, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	contracts, err := s.contractRepo.FindByBike(ctx, id)
	if err != nil {
		return err
	}
	if len(contracts) > 0 {
		return NewUserError("Impossible de supprimer un vélo référencé par des contrats de location.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "Bike", id,
		fmt.Sprintf("Vélo %s supprimé", bike.Name), ip)
	return nil
}

func validateRates(bike *models.Bike) error {
	if bike.HourlyRate < 0 || bike.DailyRate < 0 {
		return NewValidationError("Les tarifs de location doivent être positifs ou nuls.")
	}
	return nil
}
