package payroll

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNumberAccepts(t *testing.T) {
	cases := map[string]float64{
		`0`:           0,
		`-0`:          0,
		`1500`:        1500,
		`1500.75`:     1500.75,
		`1e3`:         1000,
		`"42"`:        42,
		`" 42.5 "`:    42.5,
		`"+7"`:        7,
		`"2.5E2"`:     250,
		`".5"`:        0.5,
		`"-0.0"`:      0,
	}
	for raw, want := range cases {
		got, err := SafeNumber(json.RawMessage(raw), "base_salary")
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
		assert.False(t, math.Signbit(got), "expected positive zero for %s", raw)
	}
}

func TestSafeNumberRejectsNonNumbers(t *testing.T) {
	for _, raw := range []string{
		`"abc"`, `""`, `"  "`, `null`, `true`, `false`, `{}`, `[]`, `[1]`,
		`"inf"`, `"-Infinity"`, `"NaN"`, `"0x10"`, `"1_000"`, `"1e"`, `"1e400"`, `1e400`,
	} {
		_, err := SafeNumber(json.RawMessage(raw), "allowances.hra")
		var invalid *InvalidNumberError
		require.ErrorAs(t, err, &invalid, raw)
		assert.Equal(t, "allowances.hra", invalid.Field)
		assert.Equal(t, raw, invalid.Value)
	}
}

func TestSafeNumberRejectsNegative(t *testing.T) {
	for raw, want := range map[string]float64{`-100`: -100, `"-0.01"`: -0.01} {
		_, err := SafeNumber(json.RawMessage(raw), "overtime.hours")
		var negative *NegativeValueError
		require.ErrorAs(t, err, &negative, raw)
		assert.Equal(t, "overtime.hours", negative.Field)
		assert.Equal(t, want, negative.Value)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, -0.01, Round2(-0.005))
	assert.Equal(t, 1234.57, Round2(1234.5678))
	assert.False(t, math.Signbit(Round2(-0.001)))
}
