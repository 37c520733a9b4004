// Package history stores calculation outcomes for audit and review. It sits
// outside the engine: nothing here is read back into a calculation.
package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Calculation struct {
	ID         uuid.UUID       `json:"id"`
	Calculator string          `json:"calculator"`
	UserID     string          `json:"user_id,omitempty"`
	Input      json.RawMessage `json:"input"`
	Result     json.RawMessage `json:"result"`
	ComputedAt time.Time       `json:"computed_at"`
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Calculator string
	UserID     string
}
