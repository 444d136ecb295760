package service

import (
	"context"
	"fmt"
	"strings"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/database"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/validator"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*model.Customer, error)
	ListCustomers(ctx context.Context, search string) ([]repository.CustomerListItem, error)
}

type CreateCustomerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
}

type customerService struct {
	customerRepo repository.CustomerRepository
	clock        clock.Clock
	log          *logger.Logger
}

func NewCustomerService(customerRepo repository.CustomerRepository, clk clock.Clock, log *logger.Logger) CustomerService {
	return &customerService{customerRepo: customerRepo, clock: clk, log: log}
}

// NormalizeEmail is the dedup key form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*model.Customer, error) {
	req.Email = NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	if err := validator.Check(&req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	customer := &model.Customer{
		FirstName: req.FirstName,
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
	}
	customer.CreatedAt, customer.UpdatedAt = now, now

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("A customer with email %s already exists", req.Email))
		}
		return nil, storeErr(err, "Customer", "creating")
	}
	s.log.Info(s.log.WithField(ctx, "customer_id", customer.ID), "customer created")
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Customer", "loading")
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string) ([]repository.CustomerListItem, error) {
	customers, err := s.customerRepo.List(ctx, search)
	if err != nil {
		return nil, storeErr(err, "Customer", "loading")
	}
	return customers, nil
}
