package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/astrobsm/criticalcare/internal/engine"
	"github.com/astrobsm/criticalcare/internal/platform/auth"
	"github.com/astrobsm/criticalcare/internal/platform/input"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores one outcome with the raw input that produced it and the
// calling user. It satisfies engine.Recorder.
func (s *Service) Record(ctx context.Context, rec input.Record, out *engine.Outcome) error {
	if out == nil || out.Result == nil {
		return fmt.Errorf("history: empty outcome")
	}
	if rec == nil {
		rec = input.Record{}
	}
	in, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: encode input: %w", err)
	}
	res, err := json.Marshal(out.Result)
	if err != nil {
		return fmt.Errorf("history: encode result: %w", err)
	}
	return s.repo.Create(ctx, &Calculation{
		ID:         out.ID,
		Calculator: out.Calculator,
		UserID:     auth.UserIDFromContext(ctx),
		Input:      in,
		Result:     res,
		ComputedAt: out.ComputedAt,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Calculation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Calculation, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
