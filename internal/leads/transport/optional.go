package transport

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalUUID tells an omitted field apart from an explicit null, so that
// {"userId": null} can unassign while {} is rejected.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

// UnmarshalJSON accepts null, "" (both clear) or a UUID string.
func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// MarshalJSON writes the value or null.
func (o OptionalUUID) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value.String())
}
