package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// ErrUnknownCalculator is returned for an id that is not registered.
var ErrUnknownCalculator = errors.New("unknown calculator")

// Outcome wraps a result with the identity and time of the run.
type Outcome struct {
	ID         uuid.UUID      `json:"id"`
	Calculator string         `json:"calculator"`
	ComputedAt time.Time      `json:"computed_at"`
	Result     *result.Result `json:"result"`
}

// Recorder persists outcomes. It never feeds back into a calculation.
type Recorder interface {
	Record(ctx context.Context, rec input.Record, out *Outcome) error
}

type Service struct {
	registry *Registry
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(registry *Registry, logger zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger.With().Str("component", "engine").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetRecorder enables history. A nil recorder disables it.
func (s *Service) SetRecorder(r Recorder) { s.recorder = r }

func (s *Service) Registry() *Registry { return s.registry }

// Run evaluates rec with the calculator id. Recording failures are logged and
// do not fail the run.
func (s *Service) Run(ctx context.Context, id string, rec input.Record) (*Outcome, error) {
	calc, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalculator, id)
	}

	start := time.Now()
	res, err := calc.Calculate(rec)
	elapsed := time.Since(start)

	if err != nil {
		err = result.Validation(err)
		var verr *result.ValidationError
		if errors.As(err, &verr) {
			s.logger.Warn().Str("calculator", id).Str("field", verr.Field).Str("reason", verr.Reason).
				Msg("input rejected")
		}
		s.logger.Debug().Str("calculator", id).Str("outcome", Kind(err)).Dur("duration", elapsed).
			Msg("calculation")
		return nil, err
	}

	out := &Outcome{
		ID:         uuid.New(),
		Calculator: id,
		ComputedAt: s.now(),
		Result:     res,
	}
	s.logger.Debug().Str("calculator", id).Str("outcome", Kind(nil)).Dur("duration", elapsed).
		Str("run_id", out.ID.String()).Msg("calculation")

	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, rec, out); rerr != nil {
			s.logger.Error().Err(rerr).Str("run_id", out.ID.String()).Msg("failed to record calculation")
		}
	}
	return out, nil
}

// Kind names the class of a run error for logs and responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case result.IsValidation(err):
		return "validation"
	case result.IsLookupMiss(err):
		return "lookup_miss"
	case errors.Is(err, ErrUnknownCalculator):
		return "unknown_calculator"
	default:
		return "error"
	}
}
