package services

import (
	"context"
	"fmt"

	"github.com/veloparc/velo-api/internal/models"
	"github.com/veloparc/velo-api/internal/repository"
)

type CustomerService struct {
	repo     repository.CustomerRepository
	auditSvc *AuditService
}

func NewCustomerService(repo repository.CustomerRepository, auditSvc *AuditService) *CustomerService {
	return &CustomerService{
		repo:     repo,
		auditSvc: auditSvc,
	}
}

func (s *CustomerService) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *CustomerService) Create(ctx context.Context, customer *models.Customer, actor, ip string) error {
	if err := s.repo.Create(ctx, customer); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "CREATE", "Customer", customer.ID,
		fmt.Sprintf("Client %s créé", customer.FullName), ip)
	return nil
}

func (s *CustomerService) Update(ctx context.Context, customer *models.Customer, actor, ip string) error {
	if err := s.repo.Update(ctx, customer); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "UPDATE", "Customer", customer.ID,
		fmt.Sprintf("Client %s modifié", customer.FullName), ip)
	return nil
}

// Delete removes a customer unless rental contracts reference them
func (s *CustomerService) Delete(ctx context.Context, id uint, actor, ip string) error {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	hasContracts, err := s.repo.HasContracts(ctx, id)
	if err != nil {
		return err
	}
	if hasContracts {
		return NewUserError("Impossible de supprimer un client avec des contrats de location.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, "DELETE", "Customer", id,
		fmt.Sprintf("Client %s supprimé", customer.FullName), ip)
	return nil
}
