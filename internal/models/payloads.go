package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ExpensePayload is the wire shape of an expense record. Amounts are
// decimals, never floats, so queued mutations survive round-tripping
// through JSON without losing cents.
type ExpensePayload struct {
	ID       string          `json:"id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Category string          `json:"category"`
	Note     string          `json:"note,omitempty"`
	SpentAt  int64           `json:"spent_at"`
}

// BudgetPayload is the wire shape of a monthly budget record.
type BudgetPayload struct {
	ID       string          `json:"id,omitempty"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Currency string          `json:"currency"`
	Month    string          `json:"month"` // YYYY-MM
}

// MealPayload is the wire shape of a logged meal.
type MealPayload struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	EatenAt  int64  `json:"eaten_at"`
}

// WorkoutPayload is the wire shape of a logged workout.
type WorkoutPayload struct {
	ID          string `json:"id,omitempty"`
	Activity    string `json:"activity"`
	DurationMin int    `json:"duration_min"`
	StartedAt   int64  `json:"started_at"`
}

// Marshal serializes a payload into the opaque data blob a mutation
// carries. It exists so call sites enqueue typed payloads instead of
// hand-built maps.
func Marshal(payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
