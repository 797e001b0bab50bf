package entities

import (
	"encoding/json"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used for every parsed date
const DateLayout = "2006-01-02"

// ISODate holds a YYYY-MM-DD date or the empty string when unknown.
// Because the layout is fixed width, string comparison orders dates.
type ISODate string

// NewISODate formats t as an ISODate
func NewISODate(t time.Time) ISODate {
	return ISODate(t.Format(DateLayout))
}

// IsZero reports whether the date is unknown
func (d ISODate) IsZero() bool {
	return d == ""
}

// Time parses the date as UTC midnight
func (d ISODate) Time() (time.Time, bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// After reports whether d is strictly later than other. An unknown date is
// never after anything, and any known date is after an unknown one.
func (d ISODate) After(other ISODate) bool {
	if d.IsZero() {
		return false
	}
	if other.IsZero() {
		return true
	}
	return d > other
}

// MaxDate returns the latest known date among dates, or "" if none is known
func MaxDate(dates ...ISODate) ISODate {
	var latest ISODate
	for _, d := range dates {
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}

// MarshalJSON encodes unknown dates as null
func (d ISODate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON accepts a date string or null
func (d *ISODate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ISODate(s)
	return nil
}
