// pkg/cleaner/votes.go
package cleaner

import (
	"strings"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// ParseVotes converts a vote count such as "12K" or "1.5M" into a number.
// Any value that cannot be read as a number yields missing.
func ParseVotes(value interface{}) model.NullFloat {
	if isMissing(value) {
		return model.MissingFloat()
	}
	if f, ok := numericValue(value); ok {
		return model.Float(f)
	}

	text := strings.TrimSpace(toString(value))

	switch {
	case strings.HasSuffix(text, "K"):
		return scale(parseDecimal(strings.TrimSuffix(text, "K")), 1_000)
	case strings.HasSuffix(text, "M"):
		return scale(parseDecimal(strings.TrimSuffix(text, "M")), 1_000_000)
	default:
		return parseDecimal(text)
	}
}

func scale(f model.NullFloat, factor float64) model.NullFloat {
	if !f.Valid {
		return f
	}
	return model.Float(f.Float64 * factor)
}
