package registration

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotANumber is returned when a knowledge value cannot be read as a number.
var ErrNotANumber = errors.New("expected number, received nan")

// CoerceKnowledge converts a raw knowledge value into a number. Blank strings,
// null and false are 0, true is 1, numeric strings are parsed.
func CoerceKnowledge(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return checkNumber(v)
	case float32:
		return checkNumber(float64(v))
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case json.Number:
		return parseNumber(string(v))
	case string:
		return parseNumber(v)
	}
	return 0, ErrNotANumber
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		// out of range values still carry +-Inf and fail the range check
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f, nil
		}
		return 0, ErrNotANumber
	}
	return checkNumber(f)
}

func checkNumber(f float64) (float64, error) {
	if math.IsNaN(f) {
		return 0, ErrNotANumber
	}
	return f, nil
}
