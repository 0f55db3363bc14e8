package core

import "strings"

// TemplateFileName is the suggested download name for the import template.
const TemplateFileName = "product-import-template.csv"

var templateHeader = []string{
	FieldName, FieldSKU, FieldType, FieldBasePrice,
	FieldUnit, FieldCategory, FieldStatus, FieldDescription,
}

var templateSample = []string{
	"Sample Product", "SKU-001", "PHYSICAL", "99.99",
	"each", "General", "ACTIVE", "A sample product description",
}

// TemplateCSV returns the downloadable import template: a header line and
// one sample row.
func TemplateCSV() string {
	return strings.Join(templateHeader, ",") + "\n" + strings.Join(templateSample, ",") + "\n"
}
