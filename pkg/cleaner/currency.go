// pkg/cleaner/currency.go
package cleaner

import (
	"strings"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// currencyNoise strips the dollar sign, grouping commas and parentheses
var currencyNoise = strings.NewReplacer("$", "", ",", "", "(", "", ")", "")

// ParseCurrency converts a monetary string such as "$500,000 (estimated)"
// into its amount. No currency conversion is performed.
//
// Missing input, an empty string, or a non-numeric residual yields missing.
func ParseCurrency(value interface{}) model.NullFloat {
	if isMissing(value) {
		return model.MissingFloat()
	}
	if f, ok := numericValue(value); ok {
		return model.Float(f)
	}

	text := toString(value)
	if text == "" {
		return model.MissingFloat()
	}

	cleaned := currencyNoise.Replace(text)
	cleaned = strings.ReplaceAll(cleaned, "estimated", "")

	return parseDecimal(cleaned)
}
