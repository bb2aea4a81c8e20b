// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// isMissing reports whether a raw field value is absent
func isMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return true
	}
	if f, ok := v.(float32); ok && math.IsNaN(float64(f)) {
		return true
	}
	return false
}

// toString converts an interface to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// numericValue returns the float64 for values that already are numbers
func numericValue(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// parseDecimal parses a decimal number, returning missing on failure
func parseDecimal(s string) model.NullFloat {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return model.MissingFloat()
	}
	return model.Float(f)
}

// formatFloat renders a cleaned numeric value for audit records
func formatFloat(f model.NullFloat) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}
