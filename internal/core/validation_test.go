package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

const amountMessage = "must be a non-negative number with at most 14 digits before and 4 after the decimal point"

func validateOne(t *testing.T, row ImportRow) ValidationResult {
	t.Helper()
	results := NewRowValidator().ValidateRows([]ImportRow{row}, nil, nil)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	return results[0]
}

func TestValidateRows_Errors(t *testing.T) {
	longName := strings.Repeat("x", MaxNameLength+1)

	tests := []struct {
		name string
		row  ImportRow
		want []string
	}{
		{
			name: "clean row",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10"},
			want: []string{},
		},
		{
			name: "missing name",
			row:  ImportRow{FieldSKU: "W-1", FieldBasePrice: "10"},
			want: []string{"Name is required"},
		},
		{
			name: "blank name",
			row:  ImportRow{FieldName: "   ", FieldSKU: "W-1", FieldBasePrice: "10"},
			want: []string{"Name is required"},
		},
		{
			name: "name too long",
			row:  ImportRow{FieldName: longName, FieldSKU: "W-1", FieldBasePrice: "10"},
			want: []string{"Name must be at most 255 characters"},
		},
		{
			name: "sku and unit too long",
			row: ImportRow{
				FieldName:      "Widget",
				FieldSKU:       strings.Repeat("s", MaxSKULength+1),
				FieldUnit:      strings.Repeat("u", MaxUnitLength+1),
				FieldBasePrice: "10",
			},
			want: []string{"SKU must be at most 100 characters", "Unit must be at most 50 characters"},
		},
		{
			name: "unknown type",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10", FieldType: "gizmo"},
			want: []string{"Invalid type 'GIZMO'. Must be one of: PHYSICAL, SERVICE, SUBSCRIPTION, DIGITAL, ACCESS, BUNDLE"},
		},
		{
			name: "unknown status",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10", FieldStatus: "retired"},
			want: []string{"Invalid status 'RETIRED'. Must be one of: ACTIVE, DRAFT, DISCONTINUED"},
		},
		{
			name: "negative price",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "(5.00)"},
			want: []string{"Base price " + amountMessage},
		},
		{
			name: "non numeric cost",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10", FieldCostOfGoods: "cheap"},
			want: []string{"Cost of goods " + amountMessage},
		},
		{
			name: "exponent price",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "1e999999999", FieldCostOfGoods: "1"},
			want: []string{"Base price " + amountMessage},
		},
		{
			name: "oversized amounts",
			row: ImportRow{
				FieldName:        "Widget",
				FieldSKU:         "W-1",
				FieldBasePrice:   strings.Repeat("9", 15),
				FieldCostOfGoods: "0.12345",
			},
			want: []string{"Base price " + amountMessage, "Cost of goods " + amountMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateOne(t, tt.row)
			if diff := cmp.Diff(tt.want, got.Errors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateRows_Warnings(t *testing.T) {
	tests := []struct {
		name string
		row  ImportRow
		want []string
	}{
		{
			name: "no sku",
			row:  ImportRow{FieldName: "Widget", FieldBasePrice: "10"},
			want: []string{"No SKU provided; duplicates cannot be detected"},
		},
		{
			name: "no price",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1"},
			want: []string{"No base price provided; price will default to 0"},
		},
		{
			name: "cost above price",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10", FieldCostOfGoods: "$12.00"},
			want: []string{"Cost of goods exceeds base price"},
		},
		{
			name: "unknown pricing model",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10", FieldPricingModel: "flat"},
			want: []string{"Unknown pricing model 'FLAT'; FIXED will be used"},
		},
		{
			name: "unrecognized columns sorted",
			row:  ImportRow{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10", "weight": "2kg", "color": "red"},
			want: []string{
				"Unrecognized column 'color' was ignored",
				"Unrecognized column 'weight' was ignored",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateOne(t, tt.row)
			if len(got.Errors) != 0 {
				t.Fatalf("unexpected errors %v", got.Errors)
			}
			if diff := cmp.Diff(tt.want, got.Warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateRows_NormalizesEcho(t *testing.T) {
	got := validateOne(t, ImportRow{
		FieldName:         " Widget ",
		FieldSKU:          "W-1",
		FieldType:         "service",
		FieldStatus:       "draft",
		FieldPricingModel: "per_unit",
		FieldBasePrice:    "$1,200.00",
		FieldCostOfGoods:  "abc",
		"color":           "red",
	})

	want := ImportRow{
		FieldName:         "Widget",
		FieldSKU:          "W-1",
		FieldType:         "SERVICE",
		FieldStatus:       "DRAFT",
		FieldPricingModel: "PER_UNIT",
		FieldBasePrice:    "1200.00",
		FieldCostOfGoods:  "abc",
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("echoed data mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRows_RowNumbersAndInFileDuplicates(t *testing.T) {
	rows := []ImportRow{
		{FieldName: "A", FieldSKU: "S-1", FieldBasePrice: "1"},
		{FieldName: "B", FieldSKU: "S-2", FieldBasePrice: "1"},
		{FieldName: "C", FieldSKU: "S-1", FieldBasePrice: "1"},
	}

	results := NewRowValidator().ValidateRows(rows, nil, nil)

	for i, r := range results {
		if r.Row != i+2 {
			t.Errorf("results[%d].Row = %d, want %d", i, r.Row, i+2)
		}
	}
	if len(results[0].Errors) != 0 {
		t.Errorf("first occurrence should be clean, got %v", results[0].Errors)
	}
	want := []string{"Duplicate SKU 'S-1' also appears on row 2"}
	if diff := cmp.Diff(want, results[2].Errors); diff != "" {
		t.Errorf("later occurrence errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRows_FileLineNumbers(t *testing.T) {
	rows := []ImportRow{
		{FieldName: "A", FieldSKU: "S-1"},
		{FieldName: "B", FieldSKU: "S-1"},
	}

	tests := []struct {
		name  string
		lines []int
		want  []int
		dup   string
	}{
		{"file lines", []int{4, 9}, []int{4, 9}, "Duplicate SKU 'S-1' also appears on row 4"},
		{"nil lines", nil, []int{2, 3}, "Duplicate SKU 'S-1' also appears on row 2"},
		{"mismatched lines", []int{4}, []int{2, 3}, "Duplicate SKU 'S-1' also appears on row 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := NewRowValidator().ValidateRows(rows, tt.lines, nil)
			got := []int{results[0].Row, results[1].Row}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{tt.dup}, results[1].Errors); diff != "" {
				t.Errorf("duplicate error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateRows_ExistingSKUIsOrthogonalToErrors(t *testing.T) {
	existingID := uuid.New()
	rows := []ImportRow{
		{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "10"},
		{FieldName: "Widget", FieldSKU: "W-1", FieldBasePrice: "oops"},
		{FieldName: "Other", FieldSKU: "O-1", FieldBasePrice: "10"},
	}

	results := NewRowValidator().ValidateRows(rows, nil, map[string]uuid.UUID{"W-1": existingID})

	for _, i := range []int{0, 1} {
		if !results[i].IsDuplicate || results[i].ExistingProductID != existingID.String() {
			t.Errorf("results[%d] should be a duplicate of %s, got %+v", i, existingID, results[i])
		}
	}
	if !results[1].HasErrors() {
		t.Error("results[1] should still carry its errors")
	}
	if results[2].IsDuplicate || results[2].ExistingProductID != "" {
		t.Errorf("results[2] should not be a duplicate, got %+v", results[2])
	}
}

func TestSummarize(t *testing.T) {
	results := []ValidationResult{
		{Errors: []string{}, Warnings: []string{}},
		{Errors: []string{"x"}, Warnings: []string{"w"}},
		{Errors: []string{}, Warnings: []string{"w"}, IsDuplicate: true},
		{Errors: []string{"x"}, IsDuplicate: true},
	}

	got := Summarize(results)
	want := ValidationSummary{Total: 4, Valid: 2, Invalid: 2, Duplicates: 2, HasWarnings: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	if got.Valid+got.Invalid != got.Total {
		t.Errorf("valid + invalid = %d, want total %d", got.Valid+got.Invalid, got.Total)
	}
}
