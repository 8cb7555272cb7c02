package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a fixed-point monetary amount with two fraction digits,
// held as an exact integer count of hundredths. It crosses every
// boundary (JSON, SQL) as decimal text, never as binary floating point.
type Cents int64

// ParseCents parses decimal text like "1.50" or "1,50" into Cents.
// At most two fraction digits are accepted; negative amounts are
// rejected since no monetary field in this domain admits them.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two fraction digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || strings.HasPrefix(whole, "-") || strings.HasPrefix(whole, "+") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	hundredths, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if units > (math.MaxInt64-hundredths)/100 {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return Cents(units*100 + hundredths), nil
}

// String renders the amount as decimal text with two fraction digits.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a JSON string to avoid any
// float precision loss in transit.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON accepts a quoted decimal string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("amount must be a decimal string: %w", err)
	}
	parsed, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan reads a NUMERIC column, which the driver delivers as text.
func (c *Cents) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = 0
		return nil
	case []byte:
		return c.scanText(string(v))
	case string:
		return c.scanText(v)
	case int64:
		*c = Cents(v * 100)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Cents", src)
	}
}

func (c *Cents) scanText(s string) error {
	neg := strings.HasPrefix(s, "-")
	parsed, err := ParseCents(strings.TrimPrefix(s, "-"))
	if err != nil {
		return err
	}
	if neg {
		parsed = -parsed
	}
	*c = parsed
	return nil
}

// Value writes the amount as decimal text for a NUMERIC column.
func (c Cents) Value() (driver.Value, error) {
	return c.String(), nil
}

// ParseID parses an exact-text identifier: decimal digits only,
// strictly positive, within int64 range.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty identifier")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("identifier %q is not a decimal integer", s)
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("identifier %q out of range", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("identifier must be positive, got %q", s)
	}
	return id, nil
}

// FormatID renders an identifier as exact decimal text.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// StripDigits drops every non-digit character, normalizing formatted
// documents like "123.456.789-01" and phone numbers at the boundary.
func StripDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
