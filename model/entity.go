// api/model/entity.go
package model

import (
	"encoding/json"
	"time"
)

// OwnedRecord is the common projection the governance layer needs from any
// caller-owned row (account, category, credit card, entry): its identity and
// its owner. The remaining columns ride along as an opaque payload; their
// schemas belong to the CRUD layer, not to governance.
type OwnedRecord struct {
	ID        string          `json:"id" db:"id"`
	OwnerID   string          `json:"owner_id" db:"owner_id"`
	Name      string          `json:"name" db:"name"`
	Data      json.RawMessage `json:"data,omitempty" db:"data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// SelectOption is the minimal shape the web client uses to populate
// dropdowns; served from the selectOptions cache namespace.
type SelectOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
