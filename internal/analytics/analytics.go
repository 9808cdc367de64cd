package analytics

// Summary is the dashboard roll-up over a set of bills
type Summary struct {
	TotalExpense       float64            `json:"total_expense"`
	ValidAmount        float64            `json:"valid_amount"`
	FlaggedAmount      float64            `json:"flagged_amount"`
	AverageTicket      float64            `json:"average_ticket"`
	BillCount          int                `json:"bill_count"`
	ValidCount         int                `json:"valid_count"`
	InvalidCount       int                `json:"invalid_count"`
	PendingCount       int                `json:"pending_count"`
	DepartmentSpending map[string]float64 `json:"department_spending"`
	CategorySpending   map[string]float64 `json:"category_spending"`
	MonthlyTrend       []MonthlyPoint     `json:"monthly_trend"`
}

// MonthlyPoint is one month of the spending trend, labelled "Jan 2006"
type MonthlyPoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// DepartmentRank is a department's share of total spend
type DepartmentRank struct {
	Department string  `json:"department"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// CategoryInsight compares a category against the average category spend
type CategoryInsight struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	VsAverage  float64 `json:"vs_average"`
}

// ValidationStats summarizes upstream receipt validation outcomes
type ValidationStats struct {
	ValidCount        int     `json:"valid_count"`
	InvalidCount      int     `json:"invalid_count"`
	ValidPercentage   float64 `json:"valid_percentage"`
	InvalidPercentage float64 `json:"invalid_percentage"`
}

// VendorStats is one vendor's aggregate in the top-vendor ranking
type VendorStats struct {
	Vendor        string  `json:"vendor"`
	TotalSpend    float64 `json:"total_spend"`
	ClaimCount    int     `json:"claim_count"`
	AverageTicket float64 `json:"average_ticket"`
	CategoryCount int     `json:"category_count"`
}

// MonthComparison is the month-over-month spend change
type MonthComparison struct {
	CurrentMonth  float64 `json:"current_month"`
	PreviousMonth float64 `json:"previous_month"`
	ChangePercent float64 `json:"change_percent"`
}

// Forecast projects next month from recent history
type Forecast struct {
	ProjectedSpend float64 `json:"projected_spend"`
	BasisMonths    int     `json:"basis_months"`
}

// Trends bundles the time-series views for the dashboard
type Trends struct {
	Monthly        []MonthlyPoint     `json:"monthly"`
	DayOfWeek      map[string]float64 `json:"day_of_week"`
	MonthOverMonth MonthComparison    `json:"month_over_month"`
	Forecast       Forecast           `json:"forecast"`
}
