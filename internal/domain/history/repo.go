package history

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("calculation not found")

type Repository interface {
	Create(ctx context.Context, c *Calculation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Calculation, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Calculation, int, error)
}
