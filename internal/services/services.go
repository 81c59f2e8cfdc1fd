package services

import (
	"github.com/veloparc/velo-api/internal/config"
	"github.com/veloparc/velo-api/internal/jobs"
	"github.com/veloparc/velo-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth     *AuthService
	Bike     *BikeService
	Customer *CustomerService
	Contract *ContractService
	Report   *ReportService
	Export   *ExportService
	Audit    *AuditService
	Job      *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)
	reportSvc := NewReportService(repos.Contract, repos.Bike, repos.Invoice)

	return &Services{
		Auth:     NewAuthService(cfg),
		Bike:     NewBikeService(repos.Bike, repos.Contract, auditSvc),
		Customer: NewCustomerService(repos.Customer, auditSvc),
		Contract: NewContractService(repos.Contract, repos.Bike, repos.Customer, repos.Invoice, auditSvc, cfg.DateGuard),
		Report:   reportSvc,
		Export:   NewExportService(reportSvc),
		Audit:    auditSvc,
		Job:      NewJobService(worker),
	}
}
