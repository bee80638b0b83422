package model

import "strings"

// ProductAnalysis is produced once per run by the analyzer and never mutated afterwards.
type ProductAnalysis struct {
	ProductName     string   `json:"product_name"`
	Category        string   `json:"category"`
	PrimaryColor    string   `json:"primary_color"`
	SecondaryColors []string `json:"secondary_colors"`
	Material        string   `json:"material"`
	SizeEstimate    string   `json:"size_estimate"`
	Style           string   `json:"style"`
	Features        []string `json:"features"`
	TargetAudience  string   `json:"target_audience"`
	AdSetting       string   `json:"ad_setting"`
	Keywords        []string `json:"keywords"`

	// E-commerce copy written alongside the technical analysis.
	CommerceTitle       string   `json:"ecommerce_title"`
	CommerceDescription string   `json:"ecommerce_description"`
	CommerceBullets     []string `json:"ecommerce_bullets"`
}

// RequiredAnalysisFields lists the JSON fields the analyzer must return non-empty.
var RequiredAnalysisFields = []string{
	"product_name", "category", "primary_color", "material", "style",
	"ecommerce_title", "ecommerce_description", "ecommerce_bullets",
}

// MissingFields returns the required fields that are blank.
func (a ProductAnalysis) MissingFields() []string {
	var missing []string
	check := map[string]bool{
		"product_name":          blank(a.ProductName),
		"category":              blank(a.Category),
		"primary_color":         blank(a.PrimaryColor),
		"material":              blank(a.Material),
		"style":                 blank(a.Style),
		"ecommerce_title":       blank(a.CommerceTitle),
		"ecommerce_description": blank(a.CommerceDescription),
		"ecommerce_bullets":     len(a.CommerceBullets) == 0,
	}
	for _, f := range RequiredAnalysisFields {
		if check[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns a deep copy so snapshots never share slices with the run.
func (a *ProductAnalysis) Clone() *ProductAnalysis {
	if a == nil {
		return nil
	}
	cp := *a
	cp.SecondaryColors = append([]string(nil), a.SecondaryColors...)
	cp.Features = append([]string(nil), a.Features...)
	cp.Keywords = append([]string(nil), a.Keywords...)
	cp.CommerceBullets = append([]string(nil), a.CommerceBullets...)
	return &cp
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
