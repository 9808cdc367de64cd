package advisor

import "errors"

// BillSummary is the slice of a bill the model needs for analysis
type BillSummary struct {
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Vendor     string  `json:"vendor"`
	Date       string  `json:"date"`
	Department string  `json:"department"`
}

// CostRecommendation is one savings opportunity returned by the model
type CostRecommendation struct {
	Category        string   `json:"category"`
	CurrentSpend    float64  `json:"currentSpend"`
	Benchmark       float64  `json:"benchmark"`
	PotentialSaving float64  `json:"potentialSaving"`
	Recommendations []string `json:"recommendations"`
	Priority        string   `json:"priority"`
}

// TaxRecommendation is one deduction opportunity returned by the model
type TaxRecommendation struct {
	Category        string  `json:"category"`
	PotentialSaving float64 `json:"potentialSaving"`
	Suggestion      string  `json:"suggestion"`
	Impact          string  `json:"impact"`
	Implementation  string  `json:"implementation"`
}

var ErrAnalysisFailed = errors.New("analysis failed")
