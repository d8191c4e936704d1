package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// NA marks a value that could not be determined
const NA = "N/A"

// Int is an integer that may be absent
type Int struct {
	Value int
	Valid bool
}

// IntOf returns a present Int
func IntOf(v int) Int {
	return Int{Value: v, Valid: true}
}

// Cell returns the value for a flat table: the int itself or NA
func (i Int) Cell() interface{} {
	if !i.Valid {
		return NA
	}
	return i.Value
}

func (i Int) String() string {
	if !i.Valid {
		return NA
	}
	return strconv.Itoa(i.Value)
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return json.Marshal(NA)
	}
	return json.Marshal(i.Value)
}

func (i *Int) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		// Anything that is not a number is the sentinel
		*i = Int{}
		return nil
	}
	*i = IntOf(n)
	return nil
}

// Float is a floating point value that may be absent
type Float struct {
	Value float64
	Valid bool
}

// FloatOf returns a present Float. NaN is treated as absent.
func FloatOf(v float64) Float {
	if math.IsNaN(v) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

func (f Float) Cell() interface{} {
	if !f.Valid {
		return NA
	}
	return f.Value
}

func (f Float) String() string {
	if !f.Valid {
		return NA
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return json.Marshal(NA)
	}
	return json.Marshal(f.Value)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = Float{}
		return nil
	}
	*f = FloatOf(v)
	return nil
}

// URLList is an ordered list of URLs, rendered as NA when empty
type URLList []string

func (l URLList) MarshalJSON() ([]byte, error) {
	if len(l) == 0 {
		return json.Marshal(NA)
	}
	return json.Marshal([]string(l))
}

func (l *URLList) UnmarshalJSON(data []byte) error {
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		*l = nil
		return nil
	}
	*l = urls
	return nil
}

// YesNo renders a flag the way the spreadsheet columns expect
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// OrNA returns s, or NA when s is empty
func OrNA(s string) string {
	if s == "" {
		return NA
	}
	return s
}
