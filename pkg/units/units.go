// Package units parses length values with unit suffixes into design units.
//
// Planar-circuit designs mix raw numbers with unit-suffixed strings such as
// "7um" or "0.5 mm". All values normalize to millimeters, the design unit
// used throughout the renderer and modeler backends. Raw numbers are taken
// to already be in millimeters.
//
//	v, err := units.Parse("7um")   // 0.007
//	v, err := units.Parse("2.5")   // 2.5
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/qweave/metalize/pkg/errors"
)

// Millimeters per unit for each recognized suffix.
var factors = map[string]float64{
	"nm":  1e-6,
	"um":  1e-3,
	"µm":  1e-3,
	"mm":  1,
	"cm":  10,
	"m":   1000,
	"mil": 0.0254,
	"in":  25.4,
}

// Parse converts a length string into millimeters.
// Accepted forms: a plain number ("2.5", already in mm) or a number followed
// by a unit suffix with optional whitespace ("7um", "0.5 mm", "10 mil").
func Parse(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New(errors.ErrCodeInvalidUnits, "empty length value")
	}

	// Split numeric prefix from unit suffix
	split := len(trimmed)
	for i, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' && r != 'e' && r != 'E' {
			// 'e' may start an exponent or the unit; disambiguate by parse attempt below
			split = i
			break
		}
	}

	num, unit := trimmed[:split], strings.TrimSpace(trimmed[split:])

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidUnits, err, "invalid length %q", s)
	}

	if unit == "" {
		return value, nil
	}

	factor, ok := factors[unit]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidUnits, "unknown unit %q in %q", unit, s)
	}
	return value * factor, nil
}

// MustParse is like Parse but panics on error.
// Intended for constants and tests.
func MustParse(s string) float64 {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Round rounds v to the given number of decimal digits.
// Comparisons against rounded values keep floating-point order-of-operations
// noise out of geometric predicates.
func Round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
