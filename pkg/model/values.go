// pkg/model/values.go
package model

import (
	"math"
	"time"
)

// NullFloat is a float64 that may be missing.
// Valid is false when the source field was absent or could not be parsed.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present NullFloat. NaN is treated as missing.
func Float(v float64) NullFloat {
	if math.IsNaN(v) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// MissingFloat returns the missing numeric value
func MissingFloat() NullFloat {
	return NullFloat{}
}

// Value returns the float64 or nil when missing
func (f NullFloat) Value() interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

// NullString is a categorical value that may be missing
type NullString struct {
	String string
	Valid  bool
}

// String returns a present NullString
func String(s string) NullString {
	return NullString{String: s, Valid: true}
}

// Value returns the string or nil when missing
func (s NullString) Value() interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}

// NullDate is a calendar date that may be missing
type NullDate struct {
	Time  time.Time
	Valid bool
}

// Date returns a present NullDate
func Date(t time.Time) NullDate {
	return NullDate{Time: t, Valid: true}
}

// Value returns the time.Time or nil when missing
func (d NullDate) Value() interface{} {
	if !d.Valid {
		return nil
	}
	return d.Time
}

// YearBetween reports whether the date's year lies in [min, max].
// A missing date never satisfies the range.
func (d NullDate) YearBetween(min, max int) bool {
	if !d.Valid {
		return false
	}
	year := d.Time.Year()
	return year >= min && year <= max
}
