package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"
)

// Unit is a display unit for durations.
type Unit string

const (
	UnitAuto        Unit = "auto"
	UnitSecond      Unit = "s"
	UnitMillisecond Unit = "ms"
	UnitMicrosecond Unit = "us"
)

// PrecisionAuto asks the builder to pick the number of decimals.
const PrecisionAuto = -1

const precisionCap = 6

// ParseUnit converts a string to Unit.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitAuto:
		return UnitAuto, nil
	case UnitSecond:
		return UnitSecond, nil
	case UnitMillisecond:
		return UnitMillisecond, nil
	case UnitMicrosecond, "µs":
		return UnitMicrosecond, nil
	default:
		return "", fmt.Errorf("invalid time unit %q (expected: auto|s|ms|us)", s)
	}
}

// ParsePrecision accepts "auto" or a non-negative integer.
func ParsePrecision(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return PrecisionAuto, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid precision %q (expected: auto or an integer >= 0)", s)
	}
	return n, nil
}

// TimeFormat renders durations in one unit with a fixed number of decimals.
type TimeFormat struct {
	Unit      Unit
	Scale     float64 // multiplier from seconds
	Precision int
}

// Format renders d, e.g. "12.345ms".
func (f TimeFormat) Format(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds()*f.Scale, 'f', f.Precision, 64) + string(f.Unit)
}

// FormatVariance renders a variance given in seconds², e.g. "0.250ms²".
func (f TimeFormat) FormatVariance(v float64) string {
	return strconv.FormatFloat(v*f.Scale*f.Scale, 'f', f.Precision, 64) + string(f.Unit) + "²"
}

// InferFormat picks a unit and precision for a report whose largest total is
// worst. Explicit unit or precision values are kept as given.
func InferFormat(worst time.Duration, unit Unit, precision int) TimeFormat {
	u := inferUnit(worst, unit)
	scale := unitScale(u)
	return TimeFormat{
		Unit:      u,
		Scale:     scale,
		Precision: inferPrecision(worst, u, scale, precision),
	}
}

func inferUnit(worst time.Duration, unit Unit) Unit {
	switch unit {
	case UnitSecond, UnitMillisecond, UnitMicrosecond:
		return unit
	}
	switch {
	case worst >= time.Second:
		return UnitSecond
	case worst >= time.Millisecond:
		return UnitMillisecond
	default:
		return UnitMicrosecond
	}
}

func unitScale(u Unit) float64 {
	switch u {
	case UnitMillisecond:
		return 1e3
	case UnitMicrosecond:
		return 1e6
	default:
		return 1
	}
}

func inferPrecision(worst time.Duration, u Unit, scale float64, precision int) int {
	if precision >= 0 {
		return precision
	}
	if u == UnitMicrosecond {
		return 1
	}
	digits := numDigits(worst.Seconds() * scale)
	switch {
	case digits >= precisionCap:
		return 0
	case digits <= 0:
		return precisionCap
	default:
		return precisionCap - digits
	}
}

// numDigits counts the digits of the integer part of v; 0 for |v| < 1.
func numDigits(v float64) int {
	n, err := safecast.Truncate[int64](math.Abs(v))
	if err != nil {
		return precisionCap
	}
	if n == 0 {
		return 0
	}
	return len(strconv.FormatInt(n, 10))
}
