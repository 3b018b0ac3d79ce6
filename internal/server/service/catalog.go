package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// CatalogService is plain CRUD over the product collection. Products are
// immutable after creation; the shipping builder reads them for package
// dimensions and price.
type CatalogService struct {
	repo Repository
}

func (s *CatalogService) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return models.Product{}, validationf("name is required")
	}
	if p.Price < 0 {
		return models.Product{}, validationf("price must be >= 0")
	}
	return s.repo.CreateProduct(ctx, p)
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) List(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.ListProducts(ctx, limit)
}

// StatusService records trivial liveness pings from monitoring clients.
type StatusService struct {
	repo Repository
}

func (s *StatusService) Create(ctx context.Context, clientName string) (models.StatusCheck, error) {
	if strings.TrimSpace(clientName) == "" {
		return models.StatusCheck{}, validationf("client_name is required")
	}
	sc := models.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.repo.SaveStatusCheck(ctx, sc); err != nil {
		return models.StatusCheck{}, err
	}
	return sc, nil
}

func (s *StatusService) List(ctx context.Context) ([]models.StatusCheck, error) {
	return s.repo.ListStatusChecks(ctx, 1000)
}
