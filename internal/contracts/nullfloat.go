package contracts

import (
	"bytes"
	"encoding/json"
)

// NullFloat is an indicator value that may be undefined.
// Undefined is never zero: JSON renders null, CSV an empty cell.
type NullFloat struct {
	Value float64
	Valid bool
}

// Undefined is the zero NullFloat
var Undefined = NullFloat{}

// Float wraps a defined value
func Float(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
