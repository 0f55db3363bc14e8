package core

// validation.go holds the product row rules. Field-level checks are declared
// as validator tags on productInput; cross-row and cross-field checks (SKU
// repeats, cost above price) are applied afterwards.

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Column size limits.
const (
	MaxNameLength = 255
	MaxSKULength  = 100
	MaxUnitLength = 50
)

// productInput is the shape a normalized row is checked against.
type productInput struct {
	Name        string `label:"Name" validate:"required,max=255"`
	SKU         string `label:"SKU" validate:"omitempty,max=100"`
	Unit        string `label:"Unit" validate:"omitempty,max=50"`
	Type        string `label:"Type" validate:"omitempty,oneof=PHYSICAL SERVICE SUBSCRIPTION DIGITAL ACCESS BUNDLE"`
	Status      string `label:"Status" validate:"omitempty,oneof=ACTIVE DRAFT DISCONTINUED"`
	BasePrice   string `label:"Base price" validate:"omitempty,amount"`
	CostOfGoods string `label:"Cost of goods" validate:"omitempty,amount"`
}

// RowValidator applies the product rules to import rows.
type RowValidator struct {
	validate *validator.Validate
}

// NewRowValidator builds a validator with the amount rule registered.
func NewRowValidator() *RowValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("label")
	})
	// Registration only fails for an empty tag name or nil func.
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := ParseAmount(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return &RowValidator{validate: v}
}

// ValidateRows checks every row and marks rows whose SKU is in existing.
// lines holds the file line of each row as returned by ParseImportFileLines.
// When it does not have one entry per row, rows are numbered by position with
// the header as line 1, so the first row is 2.
func (v *RowValidator) ValidateRows(rows []ImportRow, lines []int, existing map[string]uuid.UUID) []ValidationResult {
	results := make([]ValidationResult, len(rows))
	firstSeen := make(map[string]int, len(rows))
	if len(lines) != len(rows) {
		lines = nil
	}

	for i, raw := range rows {
		rowNum := i + 2
		if lines != nil {
			rowNum = lines[i]
		}
		data, unknown := normalizeRow(raw)

		res := ValidationResult{
			Row:      rowNum,
			Data:     data,
			Errors:   v.fieldErrors(data),
			Warnings: rowWarnings(data, unknown),
		}

		if sku := data[FieldSKU]; sku != "" {
			if prev, ok := firstSeen[sku]; ok {
				res.Errors = append(res.Errors, fmt.Sprintf("Duplicate SKU '%s' also appears on row %d", sku, prev))
			} else {
				firstSeen[sku] = rowNum
			}
			if id, ok := existing[sku]; ok {
				res.IsDuplicate = true
				res.ExistingProductID = id.String()
			}
		}

		results[i] = res
	}
	return results
}

// fieldErrors runs the tag rules and turns failures into messages.
func (v *RowValidator) fieldErrors(data ImportRow) []string {
	in := productInput{
		Name:        data[FieldName],
		SKU:         data[FieldSKU],
		Unit:        data[FieldUnit],
		Type:        data[FieldType],
		Status:      data[FieldStatus],
		BasePrice:   data[FieldBasePrice],
		CostOfGoods: data[FieldCostOfGoods],
	}

	errs := []string{}
	err := v.validate.Struct(in)
	if err == nil {
		return errs
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(errs, err.Error())
	}
	for _, fe := range verrs {
		errs = append(errs, fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid %s '%v'. Must be one of: %s",
			strings.ToLower(label), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "amount":
		return fmt.Sprintf("%s must be a non-negative number with at most %d digits before and %d after the decimal point",
			label, MaxAmountIntegerDigits, MaxAmountScale)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func rowWarnings(data ImportRow, unknown []string) []string {
	warnings := []string{}

	if data[FieldSKU] == "" {
		warnings = append(warnings, "No SKU provided; duplicates cannot be detected")
	}
	if data[FieldBasePrice] == "" {
		warnings = append(warnings, "No base price provided; price will default to 0")
	}

	price, perr := ParseAmount(data[FieldBasePrice])
	cost, cerr := ParseAmount(data[FieldCostOfGoods])
	if perr == nil && cerr == nil && cost.GreaterThan(price) {
		warnings = append(warnings, "Cost of goods exceeds base price")
	}

	if pm := data[FieldPricingModel]; pm != "" && !slices.Contains(PricingModels, pm) {
		warnings = append(warnings, fmt.Sprintf("Unknown pricing model '%s'; %s will be used", pm, DefaultPricingModel))
	}

	for _, col := range unknown {
		warnings = append(warnings, fmt.Sprintf("Unrecognized column '%s' was ignored", col))
	}
	return warnings
}

// normalizeRow trims values, upper-cases enum fields, cleans amounts and
// drops keys that are not canonical fields. The dropped keys are returned
// sorted.
func normalizeRow(raw ImportRow) (ImportRow, []string) {
	data := make(ImportRow, len(raw))
	var unknown []string

	for key, value := range raw {
		value = strings.TrimSpace(value)
		if !IsCanonicalField(key) {
			if key != "" {
				unknown = append(unknown, key)
			}
			continue
		}

		switch key {
		case FieldType, FieldStatus, FieldPricingModel:
			value = strings.ToUpper(value)
		case FieldBasePrice, FieldCostOfGoods:
			if cleaned := CleanAmount(value); numericRegex.MatchString(cleaned) {
				value = cleaned
			}
		}
		data[key] = value
	}

	sort.Strings(unknown)
	return data, unknown
}
