package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------------
// ParseAmount Tests
// ----------------------------------------------------------------------------

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		// Valid: plain numbers
		{name: "integer", input: "123", want: "123"},
		{name: "decimal", input: "99.99", want: "99.99"},
		{name: "leading decimal point", input: ".99", want: "0.99"},
		{name: "zero", input: "0", want: "0"},
		{name: "negative", input: "-4.5", want: "-4.5"},
		{name: "max integer digits", input: "99999999999999.9999", want: "99999999999999.9999"},
		{name: "padding zeros ignored", input: "000012.5000000", want: "12.5"},

		// Valid: spreadsheet formatting
		{name: "dollar sign", input: "$1,234.50", want: "1234.5"},
		{name: "euro sign", input: "€10", want: "10"},
		{name: "pound sign", input: "£7.25", want: "7.25"},
		{name: "accounting negative", input: "(123.45)", want: "-123.45"},
		{name: "excel formula prefix", input: `="42"`, want: "42"},
		{name: "surrounding whitespace", input: "  12  ", want: "12"},

		// Invalid
		{name: "empty", input: "", wantErr: true},
		{name: "text", input: "abc", wantErr: true},
		{name: "two points", input: "1.2.3", wantErr: true},
		{name: "currency only", input: "$", wantErr: true},
		{name: "embedded letters", input: "12abc", wantErr: true},
		{name: "scientific", input: "1e3", wantErr: true},
		{name: "huge exponent", input: "1e999999999", wantErr: true},
		{name: "too many integer digits", input: "123456789012345", wantErr: true},
		{name: "too many decimal places", input: "0.00001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNumber) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidNumber", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanAmount(t *testing.T) {
	tests := map[string]string{
		"$1,000.50": "1000.50",
		"(5)":       "-5",
		" 7 ":       "7",
		"":          "",
		"abc":       "abc",
	}
	for in, want := range tests {
		if got := CleanAmount(in); got != want {
			t.Errorf("CleanAmount(%q) = %q, want %q", in, got, want)
		}
	}
}

// ----------------------------------------------------------------------------
// pgtype conversion Tests
// ----------------------------------------------------------------------------

func TestToPgNumeric_RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "99.99", "1234.5", "0.001", "-3"} {
		d := decimal.RequireFromString(s)

		n := ToPgNumeric(decimal.NewNullDecimal(d))
		if !n.Valid {
			t.Fatalf("ToPgNumeric(%s) is invalid", s)
		}

		back := FromPgNumeric(n)
		if !back.Valid || !back.Decimal.Equal(d) {
			t.Errorf("round trip of %s = %v", s, back)
		}
	}
}

func TestToPgNumeric_Null(t *testing.T) {
	if n := ToPgNumeric(decimal.NullDecimal{}); n.Valid {
		t.Error("NULL decimal should convert to invalid numeric")
	}
	if d := FromPgNumeric(ToPgNumeric(decimal.NullDecimal{})); d.Valid {
		t.Error("invalid numeric should convert to NULL decimal")
	}
}

func TestToPgText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"hello", true, "hello"},
		{"  padded  ", true, "padded"},
		{"", false, ""},
		{"   ", false, ""},
	}

	for _, tt := range tests {
		got := ToPgText(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.want {
			t.Errorf("ToPgText(%q) = %+v, want valid=%v %q", tt.input, got, tt.wantValid, tt.want)
		}
	}
}

func TestToPgTextPtr(t *testing.T) {
	if got := ToPgTextPtr(nil); got.Valid {
		t.Error("nil pointer should be NULL")
	}
	s := "Hardware"
	if got := ToPgTextPtr(&s); !got.Valid || got.String != s {
		t.Errorf("ToPgTextPtr(&%q) = %+v", s, got)
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "value", "value"},
		{"whitespace", "  value  ", "value"},
		{"excel formula quoted", `="00123"`, "00123"},
		{"excel formula bare", "=123", "123"},
		{"double quotes", `"quoted"`, "quoted"},
		{"single quotes", "'quoted'", "quoted"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
