package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yukikurage/project-board-api/internal/utils"
)

// DateField is an optional date in a request body. Set records whether the
// key was present at all, so an update can tell "leave alone" apart from
// "clear" (null or an empty string).
type DateField struct {
	Set   bool
	Value *time.Time
}

// NewDate returns a DateField set to t.
func NewDate(t time.Time) DateField {
	return DateField{Set: true, Value: &t}
}

// ClearDate returns a DateField that clears the stored date.
func ClearDate() DateField {
	return DateField{Set: true}
}

func (d *DateField) UnmarshalJSON(data []byte) error {
	d.Set = true
	d.Value = nil

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date: expected a string")
	}
	if s == "" {
		return nil
	}

	t, err := utils.ParseDate(s)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

func (d DateField) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value.UTC().Format(time.RFC3339))
}

func (d DateField) IsZero() bool {
	return !d.Set
}
