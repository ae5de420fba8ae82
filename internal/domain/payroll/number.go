package payroll

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Round2 rounds half away from zero to two decimals. Negative zero comes back
// as zero so reports never print "-0.00".
func Round2(value float64) float64 {
	rounded := math.Round(value*100) / 100
	if rounded == 0 {
		return 0
	}
	return rounded
}

// SafeNumber converts a raw JSON value into a non-negative finite number.
// Numbers and numeric strings are accepted; everything else, including
// "inf"/"nan" spellings, is rejected with InvalidNumberError.
func SafeNumber(raw json.RawMessage, field string) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, &InvalidNumberError{Field: field, Value: "<empty>"}
	}

	var literal string
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &literal); err != nil {
			return 0, &InvalidNumberError{Field: field, Value: string(trimmed)}
		}
		literal = strings.TrimSpace(literal)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		literal = string(trimmed)
	default:
		return 0, &InvalidNumberError{Field: field, Value: string(trimmed)}
	}

	if !isDecimalLiteral(literal) {
		return 0, &InvalidNumberError{Field: field, Value: string(trimmed)}
	}
	num, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return 0, &InvalidNumberError{Field: field, Value: string(trimmed)}
	}
	if num < 0 {
		return 0, &NegativeValueError{Field: field, Value: num}
	}
	if num == 0 {
		return 0, nil
	}
	return num, nil
}

// isDecimalLiteral accepts [+-]digits[.digits][(e|E)[+-]digits] with at least
// one digit in the mantissa.
func isDecimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
