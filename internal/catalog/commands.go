package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/go-playground/validator/v10"
)

// ErrBusy is returned when a command is invoked while its previous request
// is still outstanding. Duplicate submissions are never sent.
var ErrBusy = errors.New("operation already in progress")

// Mutator is the slice of the API client the commands use.
type Mutator interface {
	Purchase(ctx context.Context, id int64) (*api.Product, error)
	Restock(ctx context.Context, id int64, quantity int) (*api.Product, error)
	CreateProduct(ctx context.Context, in api.CreateProductInput) (*api.Product, error)
}

// Refresher triggers a catalog re-synchronization after a successful mutation.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Invalidator force-closes the session when an authorized request is
// rejected with 401.
type Invalidator interface {
	Logout() error
}

// Commands implements the three inventory mutations. Each call validates
// its input locally, issues at most one authorized request, and on success
// returns a confirmation message and re-synchronizes the catalog. Failed
// commands are never retried automatically.
type Commands struct {
	mutator  Mutator
	catalog  Refresher
	sessions Invalidator
	validate *validator.Validate
	logger   *slog.Logger

	purchasing atomic.Bool
	restocking atomic.Bool
	creating   atomic.Bool
}

// NewCommands creates the mutation command set.
func NewCommands(mutator Mutator, catalog Refresher, sessions Invalidator, logger *slog.Logger) *Commands {
	return &Commands{
		mutator:  mutator,
		catalog:  catalog,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.With("component", "commands"),
	}
}

// RestockInput is the restock form payload.
type RestockInput struct {
	ID       int64 `validate:"required,gt=0"`
	Quantity int   `validate:"required,gt=0"`
}

// CreateInput is the create-product form payload.
type CreateInput struct {
	Name        string  `validate:"required,max=100"`
	Description string  `validate:"max=500"`
	Price       float64 `validate:"required,gt=0"`
	Quantity    int     `validate:"gte=0"`
}

// Purchase buys one unit of the given product.
func (c *Commands) Purchase(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("invalid input: ID failed on rule: gt")
	}
	if !c.purchasing.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.purchasing.Store(false)

	p, err := c.mutator.Purchase(ctx, id)
	if err != nil {
		c.logger.Warn("Purchase failed", "id", id, "error", err)
		return "", c.fail(err)
	}
	c.catalog.Refresh(ctx)
	return fmt.Sprintf("Purchased %s! New stock: %d", p.Name, p.Quantity), nil
}

// Restock adds stock to an existing product.
func (c *Commands) Restock(ctx context.Context, in RestockInput) (string, error) {
	if err := c.validate.Struct(in); err != nil {
		return "", validationError(err)
	}
	if !c.restocking.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.restocking.Store(false)

	p, err := c.mutator.Restock(ctx, in.ID, in.Quantity)
	if err != nil {
		c.logger.Warn("Restock failed", "id", in.ID, "error", err)
		return "", c.fail(err)
	}
	c.catalog.Refresh(ctx)
	return fmt.Sprintf("Restocked %s. New quantity: %d", p.Name, p.Quantity), nil
}

// Create adds a new product to the catalog.
func (c *Commands) Create(ctx context.Context, in CreateInput) (string, error) {
	if err := c.validate.Struct(in); err != nil {
		return "", validationError(err)
	}
	if !c.creating.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.creating.Store(false)

	p, err := c.mutator.CreateProduct(ctx, api.CreateProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	})
	if err != nil {
		c.logger.Warn("Create product failed", "name", in.Name, "error", err)
		return "", c.fail(err)
	}
	c.catalog.Refresh(ctx)
	return fmt.Sprintf("Sweet '%s' added successfully!", p.Name), nil
}

// fail maps a request error to its user-facing outcome. A 401 closes the
// session; every other failure is returned for display as-is.
func (c *Commands) fail(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		if lerr := c.sessions.Logout(); lerr != nil {
			c.logger.Error("Forced logout failed", "error", lerr)
		}
		return fmt.Errorf("%s: %w", MsgSessionExpired, err)
	}
	return err
}

// validationError flattens validator errors into a single user-facing message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on rule: %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(fields, "; "))
}
