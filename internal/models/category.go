package models

import "strings"

// Category classifies an expense. The set is fixed.
type Category string

const (
	CategoryFoodDining     Category = "food_dining"
	CategoryTransportation Category = "transportation"
	CategoryShopping       Category = "shopping"
	CategoryEntertainment  Category = "entertainment"
	CategoryBillsUtilities Category = "bills_utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryTravel         Category = "travel"
	CategoryGroceries      Category = "groceries"
	CategoryOther          Category = "other"
)

var categoryLabels = map[Category]string{
	CategoryFoodDining:     "Food & Dining",
	CategoryTransportation: "Transportation",
	CategoryShopping:       "Shopping",
	CategoryEntertainment:  "Entertainment",
	CategoryBillsUtilities: "Bills & Utilities",
	CategoryHealthcare:     "Healthcare",
	CategoryTravel:         "Travel",
	CategoryGroceries:      "Groceries",
	CategoryOther:          "Other",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryFoodDining,
		CategoryTransportation,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBillsUtilities,
		CategoryHealthcare,
		CategoryTravel,
		CategoryGroceries,
		CategoryOther,
	}
}

// ParseCategory accepts a category key or its display label, case-insensitively.
// An empty string yields CategoryOther.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, nil
	}
	for c, label := range categoryLabels {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, label) {
			return c, nil
		}
	}
	return "", invalid("category", "unknown category "+s)
}

// Label returns the human-readable name shown in the UI.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}
