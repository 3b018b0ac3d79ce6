// Package memory is an in-process Repository used by tests and local
// development. It mirrors the mongodb package's semantics, including
// single-use state consumption and full token replacement.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felippeximenes/modeloloja/internal/server/repository"
	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

type Repository struct {
	mu sync.Mutex

	products     []models.Product
	states       map[string]time.Time
	token        *models.TokenRecord
	shipments    []repository.AuditRecord
	checkouts    []repository.AuditRecord
	statusChecks []models.StatusCheck
}

func New() *Repository {
	return &Repository{states: make(map[string]time.Time)}
}

func (r *Repository) Close(context.Context) error { return nil }

func (r *Repository) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	r.products = append(r.products, p)
	return p, nil
}

func (r *Repository) GetProduct(_ context.Context, id string) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, repository.ErrNotFound
}

func (r *Repository) ListProducts(_ context.Context, limit int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.products)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Product, n)
	copy(out, r.products[:n])
	return out, nil
}

func (r *Repository) SaveOAuthState(_ context.Context, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state] = time.Now().UTC()
	return nil
}

func (r *Repository) ConsumeOAuthState(_ context.Context, state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[state]; !ok {
		return false, nil
	}
	delete(r.states, state)
	return true, nil
}

func (r *Repository) SaveToken(_ context.Context, t models.TokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = &t
	return nil
}

func (r *Repository) CurrentToken(context.Context) (models.TokenRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token == nil {
		return models.TokenRecord{}, false, nil
	}
	return *r.token, true, nil
}

func (r *Repository) SaveShipment(_ context.Context, rec repository.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shipments = append(r.shipments, rec)
	return nil
}

func (r *Repository) SaveCheckout(_ context.Context, rec repository.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts = append(r.checkouts, rec)
	return nil
}

// Shipments returns the audit trail of cart-create calls.
func (r *Repository) Shipments() []repository.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.AuditRecord, len(r.shipments))
	copy(out, r.shipments)
	return out
}

// Checkouts returns the audit trail of checkout calls.
func (r *Repository) Checkouts() []repository.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.AuditRecord, len(r.checkouts))
	copy(out, r.checkouts)
	return out
}

func (r *Repository) SaveStatusCheck(_ context.Context, sc models.StatusCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusChecks = append(r.statusChecks, sc)
	return nil
}

func (r *Repository) ListStatusChecks(_ context.Context, limit int) ([]models.StatusCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.statusChecks)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.StatusCheck, n)
	copy(out, r.statusChecks[:n])
	return out, nil
}
