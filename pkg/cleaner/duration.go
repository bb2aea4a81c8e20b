// pkg/cleaner/duration.go
package cleaner

import (
	"regexp"
	"strconv"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+)h`)
	minutesPattern = regexp.MustCompile(`(\d+)m`)
)

// ParseDuration converts a duration such as "2h 15m" into total minutes.
//
// A missing value yields missing. Text without an hour or minute component
// yields 0, not missing.
func ParseDuration(value interface{}) model.NullFloat {
	if isMissing(value) {
		return model.MissingFloat()
	}

	text := toString(value)
	hours := firstInteger(hoursPattern, text)
	minutes := firstInteger(minutesPattern, text)

	return model.Float(hours*60 + minutes)
}

// hasDurationComponent reports whether text carries an hour or minute part
func hasDurationComponent(text string) bool {
	return hoursPattern.MatchString(text) || minutesPattern.MatchString(text)
}

// firstInteger returns the digits captured by the first match of pattern,
// or 0 when the pattern does not match
func firstInteger(pattern *regexp.Regexp, text string) float64 {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}

	// Digits only, so ParseFloat cannot fail; it also never overflows
	n, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return n
}
