package core

import "strings"

// headerSynonyms maps cleaned header spellings to canonical field names.
var headerSynonyms = map[string]string{
	"name":         FieldName,
	"product name": FieldName,
	"productname":  FieldName,
	"title":        FieldName,

	"description": FieldDescription,
	"desc":        FieldDescription,

	"sku":         FieldSKU,
	"product sku": FieldSKU,
	"code":        FieldSKU,

	"category": FieldCategory,

	"type":         FieldType,
	"product type": FieldType,
	"producttype":  FieldType,

	"status": FieldStatus,

	"price":      FieldBasePrice,
	"baseprice":  FieldBasePrice,
	"base price": FieldBasePrice,
	"unit price": FieldBasePrice,
	"unitprice":  FieldBasePrice,

	"unit": FieldUnit,
	"uom":  FieldUnit,

	"cost":          FieldCostOfGoods,
	"costofgoods":   FieldCostOfGoods,
	"cost of goods": FieldCostOfGoods,
	"cogs":          FieldCostOfGoods,

	"pricingmodel":  FieldPricingModel,
	"pricing model": FieldPricingModel,
	"pricing":       FieldPricingModel,
}

// NormalizeHeaders maps raw header cells onto canonical field names.
//
// Each header is lower-cased, stripped of double quotes and trimmed before
// lookup. Headers with no synonym pass through in that cleaned form, so the
// output always has the same length as raw.
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// NormalizeHeader maps a single header cell. Canonical names map to themselves.
func NormalizeHeader(h string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(h), `"`, ""))
	if canonical, ok := headerSynonyms[cleaned]; ok {
		return canonical
	}
	return cleaned
}
