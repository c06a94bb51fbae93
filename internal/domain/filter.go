package domain

import "strconv"

// Criteria holds the user-entered filter constraints. Every field is a raw
// string; empty means unconstrained. Numeric fields are expected to be pure
// digit strings (see SanitizeNumeric).
type Criteria struct {
	PriceMax          string `json:"priceMax"`
	Duration          string `json:"duration"`
	DaysInMakkah      string `json:"daysInMakkah"`
	DaysInMadinah     string `json:"daysInMadinah"`
	DistanceMakkahMax string `json:"distanceMakkahMax"`
	VisaIncluded      string `json:"visaIncluded"`
	Transport         string `json:"transport"`
}

// IsZero reports whether no criterion is active.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Apply returns the packages satisfying every active criterion. It is a pure
// function: the input slice is never mutated.
//
// priceMax and distanceMakkahMax are upper bounds; duration, daysInMakkah and
// daysInMadinah match exactly. The asymmetry is intentional and mirrors the
// package listing screens.
func Apply(pkgs []*Package, c Criteria) []*Package {
	if c.IsZero() {
		return pkgs
	}

	out := make([]*Package, 0, len(pkgs))
	for _, p := range pkgs {
		if matches(p, c) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p *Package, c Criteria) bool {
	if c.PriceMax != "" && p.Price > float64(digitsToInt(c.PriceMax)) {
		return false
	}
	if c.Duration != "" && p.Duration != digitsToInt(c.Duration) {
		return false
	}
	if c.DaysInMakkah != "" && p.DaysInMakkah != digitsToInt(c.DaysInMakkah) {
		return false
	}
	if c.DaysInMadinah != "" && p.DaysInMadinah != digitsToInt(c.DaysInMadinah) {
		return false
	}
	if c.DistanceMakkahMax != "" && p.DistanceMakkahMeters() > digitsToInt(c.DistanceMakkahMax) {
		return false
	}
	if c.VisaIncluded != "" && c.VisaIncluded != strconv.FormatBool(p.VisaIncluded) {
		return false
	}
	if c.Transport != "" && c.Transport != strconv.FormatBool(p.TransportIncluded) {
		return false
	}
	return true
}

// SanitizeNumeric strips every non-digit character from a criteria value, so
// stored criteria are always empty or a pure digit string.
func SanitizeNumeric(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// digitsToInt strips non-digit characters and parses the remainder. A value
// with no digits coerces to 0.
func digitsToInt(s string) int {
	n, err := strconv.Atoi(SanitizeNumeric(s))
	if err != nil {
		return 0
	}
	return n
}
