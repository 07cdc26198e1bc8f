// Package models provides data model definitions for LifeLedger sync.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jwyliao/lifeledger/internal/uuid"
)

// MutationType represents the kind of write a pending mutation carries.
type MutationType string

const (
	MutationCreate MutationType = "create"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
)

// Entity identifies which tracker domain a mutation targets.
type Entity string

const (
	EntityExpense Entity = "expense"
	EntityBudget  Entity = "budget"
	EntityMeal    Entity = "meal"
	EntityWorkout Entity = "workout"
)

// collectionPaths is the closed set of syncable entities. An entity
// missing from this table is rejected at construction time rather than
// producing a malformed request path during a drain.
var collectionPaths = map[Entity]string{
	EntityExpense: "/api/expenses",
	EntityBudget:  "/api/budgets",
	EntityMeal:    "/api/meals",
	EntityWorkout: "/api/workouts",
}

// methods maps each mutation type to its HTTP method.
var methods = map[MutationType]string{
	MutationCreate: "POST",
	MutationUpdate: "PUT",
	MutationDelete: "DELETE",
}

// PendingMutation represents a queued write operation awaiting
// transmission to the backend. It is the only entity the sync queue
// persists; the JSON field names define the on-disk layout.
type PendingMutation struct {
	ID         string          `json:"id" validate:"required"`
	Type       MutationType    `json:"type" validate:"required,oneof=create update delete"`
	Entity     Entity          `json:"entity" validate:"required"`
	Data       json.RawMessage `json:"data" validate:"required"`
	Timestamp  int64           `json:"timestamp" validate:"required"`
	RetryCount int             `json:"retryCount"`
}

var validate = validator.New()

// NewMutation builds a PendingMutation for the given write. The ID is
// generated here; for creates it is a temporary client-side identifier
// that the backend replaces with its own on insert. Update and delete
// mutations must carry the server-assigned record ID in their payload.
func NewMutation(mutType MutationType, entity Entity, data json.RawMessage) (*PendingMutation, error) {
	if _, ok := collectionPaths[entity]; !ok {
		return nil, fmt.Errorf("unknown entity %q", entity)
	}

	id := uuid.New()
	if mutType == MutationCreate {
		id = uuid.NewTemp()
	}

	m := &PendingMutation{
		ID:        id,
		Type:      mutType,
		Entity:    entity,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("invalid mutation: %w", err)
	}

	if mutType == MutationUpdate || mutType == MutationDelete {
		if _, err := m.RecordID(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordID extracts the server-assigned identifier of the target record
// from the payload. Only meaningful for update and delete mutations.
func (m *PendingMutation) RecordID() (string, error) {
	var target struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(m.Data, &target); err != nil {
		return "", fmt.Errorf("payload for %s is not an object: %w", m.ID, err)
	}
	if target.ID == "" {
		return "", fmt.Errorf("%s mutation %s is missing the target record id", m.Type, m.ID)
	}
	return target.ID, nil
}

// Request translates the mutation into its outbound HTTP method and
// path. The mapping is fixed: create POSTs to the collection, update
// and delete address the individual record.
func (m *PendingMutation) Request() (method string, path string, err error) {
	base, ok := collectionPaths[m.Entity]
	if !ok {
		return "", "", fmt.Errorf("unknown entity %q", m.Entity)
	}

	method = methods[m.Type]

	switch m.Type {
	case MutationCreate:
		return method, base, nil
	case MutationUpdate, MutationDelete:
		recordID, err := m.RecordID()
		if err != nil {
			return "", "", err
		}
		return method, base + "/" + recordID, nil
	default:
		return "", "", fmt.Errorf("unknown mutation type %q", m.Type)
	}
}

// Time returns the enqueue timestamp as time.Time.
func (m *PendingMutation) Time() time.Time {
	return time.Unix(m.Timestamp, 0)
}

// Entities returns the closed set of syncable entities.
func Entities() []Entity {
	out := make([]Entity, 0, len(collectionPaths))
	for e := range collectionPaths {
		out = append(out, e)
	}
	return out
}
