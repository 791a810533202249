package domain

import (
	"bytes"
	"encoding/json"
)

// ID is a backend identifier. The backend sends ids as strings or as numbers;
// both decode to their text form. Any other JSON value leaves the ID empty.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*id = ""
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*id = ID(n.String())
	}
	return nil
}

func (id ID) String() string { return string(id) }

// Ptr returns nil for an empty or missing id.
func (id *ID) Ptr() *string {
	if id == nil || *id == "" {
		return nil
	}
	s := string(*id)
	return &s
}
