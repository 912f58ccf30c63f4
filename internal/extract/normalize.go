package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversionError reports an extracted value that could not be turned into a
// number, typically an empty string produced by an extraction edge case.
type ConversionError struct {
	Value string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("value %q is not numeric", e.Value)
}

// ParseNumeric converts an extracted value string to a float64. Reports from
// some locales print a decimal comma; every comma is replaced with a period
// before parsing.
func ParseNumeric(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, &ConversionError{Value: raw}
	}
	return f, nil
}
