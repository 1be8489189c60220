// Package orders is the order-persistence collaborator: create at checkout,
// list by device for "my orders", list-all and status updates for the admin
// panel. Items and totals are stored exactly as written at creation and
// never recomputed from the current catalog.
package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByDevice(ctx context.Context, deviceID string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	RunMigrations(*Credentials) error
	Close() error
}
