package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/felippeximenes/modeloloja/internal/server/config"
	"github.com/felippeximenes/modeloloja/internal/server/melhorenvio"
	"github.com/felippeximenes/modeloloja/internal/server/repository"
	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

type Repository interface {
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListProducts(ctx context.Context, limit int) ([]models.Product, error)

	SaveOAuthState(ctx context.Context, state string) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
	SaveToken(ctx context.Context, t models.TokenRecord) error
	CurrentToken(ctx context.Context) (models.TokenRecord, bool, error)

	SaveShipment(ctx context.Context, rec repository.AuditRecord) error
	SaveCheckout(ctx context.Context, rec repository.AuditRecord) error

	SaveStatusCheck(ctx context.Context, sc models.StatusCheck) error
	ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error)
}

type Services struct {
	OAuth    *OAuthService
	Catalog  *CatalogService
	Shipping *ShippingService
	Status   *StatusService
}

func NewServices(repo Repository, cfg config.Config, gw *melhorenvio.Client) *Services {
	return &Services{
		OAuth:    &OAuthService{repo: repo, cfg: cfg.MelhorEnvio, gw: gw},
		Catalog:  &CatalogService{repo: repo},
		Shipping: &ShippingService{repo: repo, cfg: cfg.MelhorEnvio, gw: gw},
		Status:   &StatusService{repo: repo},
	}
}

// Error taxonomy. Provider-side errors (APIError, ErrUnreachable) come from
// the melhorenvio package; store lookups come from repository.

// ErrNotConnected means there is no usable provider token.
var ErrNotConnected = errors.New("melhor envio not connected (token not found)")

// ErrInvalidState means the OAuth state is unknown, expired or already
// consumed.
var ErrInvalidState = errors.New("invalid or expired state")

// ValidationError rejects malformed input before any network call.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ConfigError means a required setting is absent or malformed. It is fatal
// to the operation and never retried.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configMissing(label string) error {
	return &ConfigError{msg: "missing " + label + " in .env"}
}
