package cleaner

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  model.NullFloat
	}{
		{name: "hours and minutes", input: "2h 15m", want: model.Float(135)},
		{name: "minutes only", input: "45m", want: model.Float(45)},
		{name: "hours only", input: "3h", want: model.Float(180)},
		{name: "no components", input: "garbage", want: model.Float(0)},
		{name: "zero", input: "0h 0m", want: model.Float(0)},
		{name: "empty string", input: "", want: model.Float(0)},
		{name: "large values pass through", input: "100h 500m", want: model.Float(6500)},
		{name: "no space", input: "1h30m", want: model.Float(90)},
		{name: "nil", input: nil, want: model.MissingFloat()},
		{name: "NaN", input: math.NaN(), want: model.MissingFloat()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input))
		})
	}
}

func TestParseDuration_ZeroIsNotMissing(t *testing.T) {
	got := ParseDuration("no runtime listed")
	assert.True(t, got.Valid)
	assert.Zero(t, got.Float64)
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  model.NullFloat
	}{
		{name: "grouped dollars", input: "$1,234,567", want: model.Float(1234567)},
		{name: "estimated", input: "$500,000 (estimated)", want: model.Float(500000)},
		{name: "decimal", input: "$12.50", want: model.Float(12.5)},
		{name: "surrounding whitespace", input: "  $42  ", want: model.Float(42)},
		{name: "already numeric", input: 1234567.0, want: model.Float(1234567)},
		{name: "integer passthrough", input: int64(99), want: model.Float(99)},
		{name: "empty", input: "", want: model.MissingFloat()},
		{name: "not available", input: "N/A", want: model.MissingFloat()},
		{name: "other currency symbol", input: "€1,000", want: model.MissingFloat()},
		{name: "capitalized estimated stays", input: "$5 (Estimated)", want: model.MissingFloat()},
		{name: "nil", input: nil, want: model.MissingFloat()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCurrency(tt.input))
		})
	}
}

func TestParseVotes(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  model.NullFloat
	}{
		{name: "thousands", input: "12K", want: model.Float(12000)},
		{name: "millions", input: "1.5M", want: model.Float(1500000)},
		{name: "plain", input: "842", want: model.Float(842)},
		{name: "whitespace", input: " 3.2K ", want: model.Float(3200)},
		{name: "space before suffix", input: "7 K", want: model.Float(7000)},
		{name: "numeric passthrough", input: 12000.0, want: model.Float(12000)},
		{name: "bad", input: "bad", want: model.MissingFloat()},
		{name: "malformed prefix", input: "abcK", want: model.MissingFloat()},
		{name: "suffix only", input: "M", want: model.MissingFloat()},
		{name: "lowercase suffix", input: "12k", want: model.MissingFloat()},
		{name: "empty", input: "", want: model.MissingFloat()},
		{name: "nil", input: nil, want: model.MissingFloat()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVotes(tt.input))
		})
	}
}

func TestExtractPrimaryGenre(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  model.NullString
	}{
		{name: "list literal", input: "['Action', 'Comedy']", want: model.String("Action")},
		{name: "double quoted list", input: `["Drama", "Romance"]`, want: model.String("Drama")},
		{name: "element kept unchanged", input: "[' Sci-Fi ', 'Drama']", want: model.String(" Sci-Fi ")},
		{name: "escaped quote", input: `['Rock \'n\' Roll']`, want: model.String("Rock 'n' Roll")},
		{name: "tuple", input: "('Horror',)", want: model.String("Horror")},
		{name: "bare tuple", input: "'Western', 'Drama'", want: model.String("Western")},
		{name: "delimited", input: "Action, Comedy", want: model.String("Action")},
		{name: "single word", input: "Thriller", want: model.String("Thriller")},
		{name: "delimited trims", input: "  Family ,Kids", want: model.String("Family")},
		{name: "unterminated list falls back", input: "['Action', 'Drama'", want: model.String("['Action'")},
		{name: "quoted string is not a list", input: "'Drama'", want: model.String("'Drama'")},
		{name: "empty list", input: "[]", want: model.NullString{}},
		{name: "empty tuple", input: "()", want: model.NullString{}},
		{name: "None element", input: "[None, 'Drama']", want: model.NullString{}},
		{name: "empty", input: "", want: model.NullString{}},
		{name: "nil", input: nil, want: model.NullString{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrimaryGenre(tt.input))
		})
	}
}

func TestDecodeListLiteral(t *testing.T) {
	elems, err := decodeListLiteral(`[ 'a' , "b", 3, -1.5e2, True, ]`)
	require.NoError(t, err)
	require.Len(t, elems, 5)
	assert.Equal(t, model.String("a"), elems[0])
	assert.Equal(t, model.String("b"), elems[1])
	assert.Equal(t, model.String("3"), elems[2])
	assert.Equal(t, model.String("-1.5e2"), elems[3])
	assert.Equal(t, model.String("True"), elems[4])

	_, err = decodeListLiteral("('Drama')")
	assert.ErrorIs(t, err, errNotAList)

	_, err = decodeListLiteral("[Action]")
	assert.ErrorIs(t, err, errMalformedLiteral)

	_, err = decodeListLiteral("['a'] extra")
	assert.ErrorIs(t, err, errMalformedLiteral)
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  time.Time
		valid bool
	}{
		{name: "iso date", input: "2010-06-15", want: time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC), valid: true},
		{name: "iso timestamp", input: "1999-12-31 23:59:59", want: time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), valid: true},
		{name: "long form", input: "June 15, 2010", want: time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC), valid: true},
		{name: "time value", input: time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), want: time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), valid: true},
		{name: "garbage", input: "not a date", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "nil", input: nil, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReleaseDate(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
			}
		})
	}
}

// Cleaned values fed back through the parsers must not change
func TestParsersStableOnCleanInput(t *testing.T) {
	for _, raw := range []string{"$1,234,567", "$500,000 (estimated)", "$0"} {
		first := ParseCurrency(raw)
		require.True(t, first.Valid)
		assert.Equal(t, first, ParseCurrency(first.Float64), raw)
	}

	for _, raw := range []string{"12K", "1.5M", "842"} {
		first := ParseVotes(raw)
		require.True(t, first.Valid)
		assert.Equal(t, first, ParseVotes(first.Float64), raw)
	}

	genre := ExtractPrimaryGenre("['Action', 'Comedy']")
	assert.Equal(t, genre, ExtractPrimaryGenre(genre.String))
}
