package core

// convert.go provides conversions from user-provided CSV cells to domain and
// PostgreSQL types.
//
// These functions handle the messy reality of spreadsheet exports:
//   - Currency symbols and thousand separators in amounts
//   - Accounting negatives written as (123.45)
//   - Excel formula prefixes (="value")
//   - Stray surrounding quotes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a plain decimal after cleanup.
// Exponent notation is not accepted.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Amount bounds, matching the NUMERIC(18,4) price columns.
const (
	MaxAmountIntegerDigits = 14
	MaxAmountScale         = 4
)

// ErrInvalidNumber is returned by ParseAmount for cells that are not numbers
// or do not fit the amount bounds.
var ErrInvalidNumber = errors.New("invalid number")

// CleanAmount strips currency symbols and thousands separators from s and
// turns accounting parentheses into a leading minus sign. The result is not
// guaranteed to be numeric.
func CleanAmount(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}
	return s
}

// ParseAmount parses a monetary cell into a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := CleanAmount(s)
	if !numericRegex.MatchString(cleaned) || !amountFits(cleaned) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return d, nil
}

// amountFits checks the digit counts of a string already matched by
// numericRegex. Leading zeros of the integer part and trailing zeros of the
// fraction do not count.
func amountFits(s string) bool {
	s = strings.TrimLeft(s, "+-")
	whole, frac, _ := strings.Cut(s, ".")
	whole = strings.TrimLeft(whole, "0")
	frac = strings.TrimRight(frac, "0")
	return len(whole) <= MaxAmountIntegerDigits && len(frac) <= MaxAmountScale
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgTextPtr converts an optional string to pgtype.Text.
// A nil pointer yields NULL.
func ToPgTextPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return ToPgText(*s)
}

// ToPgNumeric converts a decimal to pgtype.Numeric.
// Returns invalid for a NULL decimal.
func ToPgNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{Valid: false}
	}
	var n pgtype.Numeric
	if err := n.Scan(d.Decimal.String()); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// FromPgNumeric converts a pgtype.Numeric back to a decimal.
func FromPgNumeric(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.Int == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromBigInt(n.Int, n.Exp))
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
