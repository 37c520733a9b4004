package engine

import (
	"context"

	"github.com/astrobsm/criticalcare/internal/platform/cdshooks"
	"github.com/astrobsm/criticalcare/internal/platform/input"
	"github.com/astrobsm/criticalcare/internal/platform/result"
)

// CDSHook is the hook every calculator service answers.
const CDSHook = "patient-view"

// RegisterCDSServices exposes every calculator as a CDS service. The raw
// record is taken from context.inputs of the hook request.
func (s *Service) RegisterCDSServices(h *cdshooks.Handler) {
	source := cdshooks.Source{Label: "Critical Care Calculator"}
	for _, info := range s.registry.List() {
		id, title := info.ID, info.Title
		h.RegisterService(cdshooks.Service{
			Hook:        CDSHook,
			Title:       title,
			Description: title + " from the inputs supplied in context.inputs",
			ID:          id,
		}, func(ctx context.Context, req cdshooks.Request) (*cdshooks.Response, error) {
			raw, ok := req.Context["inputs"].(map[string]interface{})
			if !ok {
				return nil, result.Invalid("context.inputs", "must be an object of calculator inputs")
			}
			out, err := s.Run(ctx, id, input.Record(raw))
			if err != nil {
				return nil, err
			}
			return &cdshooks.Response{Cards: cdshooks.Cards(title, out.Result, source)}, nil
		})
	}
	h.SetFeedbackHandler(func(_ context.Context, serviceID string, fb cdshooks.Feedback) error {
		s.logger.Info().Str("service", serviceID).Str("card", fb.Card).Str("outcome", fb.Outcome).
			Msg("cds card feedback")
		return nil
	})
}
