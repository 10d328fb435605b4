package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Cents is a monetary amount in integer cents. The upstream backend speaks
// plain JSON decimals (e.g. 20 or 20.5), so Cents converts to and from the
// decimal form without ever passing through a float.
type Cents int64

// ParseCents parses a decimal string with at most two fraction digits
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if s[0] == '-' || s[0] == '+' {
		negative = s[0] == '-'
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}

	for _, ch := range intPart {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	var frac int64
	if hasFrac {
		if len(fracPart) == 0 || len(fracPart) > 2 {
			return 0, fmt.Errorf("invalid amount %q: at most two fraction digits", s)
		}
		for _, ch := range fracPart {
			if ch < '0' || ch > '9' {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
		}
		for len(fracPart) < 2 {
			fracPart += "0"
		}
		frac, _ = strconv.ParseInt(fracPart, 10, 64)
	}

	total := whole*100 + frac
	if negative {
		total = -total
	}
	return Cents(total), nil
}

// Mul returns the amount multiplied by a quantity
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// String formats the amount as a decimal with two fraction digits
func (c Cents) String() string {
	n := int64(c)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

// MarshalJSON emits the decimal form the backend expects
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts both integer and decimal JSON numbers, and quoted
// decimals, without float rounding
func (c *Cents) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	parsed, err := ParseCents(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
