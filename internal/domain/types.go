package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeLayout is fixed width so stored timestamps sort lexically in time order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Now returns the current UTC time formatted with TimeLayout.
func Now() string { return FormatTime(time.Now()) }

func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// NewID returns a fresh 24-char hex object id.
func NewID() string { return primitive.NewObjectID().Hex() }

// IsID reports whether s is a well-formed object id.
func IsID(s string) bool { return primitive.IsValidObjectID(s) }

// StringList is a []string persisted as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

func (l *StringList) Scan(src any) error {
	out := []string{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// MarshalJSON keeps empty lists as [] rather than null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

func (d Dimensions) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	return string(b), err
}

func (d *Dimensions) Scan(src any) error { return scanJSON(src, d) }

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	County     string `json:"county,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *Address) Scan(src any) error { return scanJSON(src, a) }

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	default:
		return fmt.Errorf("domain: cannot scan %T as JSON", src)
	}
}
