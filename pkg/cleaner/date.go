// pkg/cleaner/date.go
package cleaner

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// releaseDateLayouts are tried before the permissive fallback parser
var releaseDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseReleaseDate parses a release date field into a calendar date.
// Missing or unparseable input yields an invalid NullDate.
func ParseReleaseDate(value interface{}) model.NullDate {
	if isMissing(value) {
		return model.NullDate{}
	}
	if t, ok := value.(time.Time); ok {
		return model.Date(t)
	}

	text := strings.TrimSpace(toString(value))
	if text == "" {
		return model.NullDate{}
	}

	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return model.Date(t)
		}
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return model.NullDate{}
	}
	return model.Date(t)
}
