package analytics

import (
	"sort"
	"time"

	"github.com/xtractpay/xtractpay/internal/bill"
)

// percentOf guards the zero-total case: a share of nothing is 0, never NaN
func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

func monthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Summarize folds a set of bills into the dashboard roll-up
func Summarize(bills []*bill.Bill) Summary {
	s := Summary{
		DepartmentSpending: make(map[string]float64),
		CategorySpending:   make(map[string]float64),
		MonthlyTrend:       []MonthlyPoint{},
	}

	monthAmounts := make(map[time.Time]float64)
	monthCounts := make(map[time.Time]int)

	for _, b := range bills {
		s.TotalExpense += b.Amount
		s.BillCount++

		if b.ValidationResult.BillValid {
			s.ValidAmount += b.Amount
			s.ValidCount++
		} else {
			s.FlaggedAmount += b.Amount
			s.InvalidCount++
		}

		if b.Status == bill.StatusPending {
			s.PendingCount++
		}

		s.DepartmentSpending[b.Department] += b.Amount
		s.CategorySpending[b.Category] += b.Amount

		key := monthKey(b.ExpenseDate)
		monthAmounts[key] += b.Amount
		monthCounts[key]++
	}

	if s.BillCount > 0 {
		s.AverageTicket = s.TotalExpense / float64(s.BillCount)
	}

	months := make([]time.Time, 0, len(monthAmounts))
	for m := range monthAmounts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	for _, m := range months {
		s.MonthlyTrend = append(s.MonthlyTrend, MonthlyPoint{
			Month:  m.Format("Jan 2006"),
			Amount: monthAmounts[m],
			Count:  monthCounts[m],
		})
	}

	return s
}

// DepartmentRanking orders departments by spend with their share of total
func DepartmentRanking(bills []*bill.Bill) []DepartmentRank {
	totals := make(map[string]float64)
	var grand float64
	for _, b := range bills {
		totals[b.Department] += b.Amount
		grand += b.Amount
	}

	ranking := make([]DepartmentRank, 0, len(totals))
	for dept, amount := range totals {
		ranking = append(ranking, DepartmentRank{
			Department: dept,
			Amount:     amount,
			Percentage: percentOf(amount, grand),
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Amount != ranking[j].Amount {
			return ranking[i].Amount > ranking[j].Amount
		}
		return ranking[i].Department < ranking[j].Department
	})

	return ranking
}

// CategoryInsights compares each category against the mean category spend
func CategoryInsights(bills []*bill.Bill) []CategoryInsight {
	totals := make(map[string]float64)
	var grand float64
	for _, b := range bills {
		totals[b.Category] += b.Amount
		grand += b.Amount
	}

	var average float64
	if len(totals) > 0 {
		average = grand / float64(len(totals))
	}

	insights := make([]CategoryInsight, 0, len(totals))
	for category, amount := range totals {
		insights = append(insights, CategoryInsight{
			Category:   category,
			Amount:     amount,
			Percentage: percentOf(amount, grand),
			VsAverage:  percentOf(amount-average, average),
		})
	}

	sort.Slice(insights, func(i, j int) bool {
		if insights[i].Amount != insights[j].Amount {
			return insights[i].Amount > insights[j].Amount
		}
		return insights[i].Category < insights[j].Category
	})

	return insights
}

// Validation summarizes valid vs flagged bill counts
func Validation(bills []*bill.Bill) ValidationStats {
	var stats ValidationStats
	for _, b := range bills {
		if b.ValidationResult.BillValid {
			stats.ValidCount++
		} else {
			stats.InvalidCount++
		}
	}

	total := float64(stats.ValidCount + stats.InvalidCount)
	stats.ValidPercentage = percentOf(float64(stats.ValidCount), total)
	stats.InvalidPercentage = percentOf(float64(stats.InvalidCount), total)

	return stats
}

// TopVendors ranks vendors by total spend, keeping the top n
func TopVendors(bills []*bill.Bill, n int) []VendorStats {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	categories := make(map[string]map[string]struct{})

	for _, b := range bills {
		totals[b.Vendor] += b.Amount
		counts[b.Vendor]++
		if categories[b.Vendor] == nil {
			categories[b.Vendor] = make(map[string]struct{})
		}
		categories[b.Vendor][b.Category] = struct{}{}
	}

	vendors := make([]VendorStats, 0, len(totals))
	for vendor, total := range totals {
		avg := 0.0
		if counts[vendor] > 0 {
			avg = total / float64(counts[vendor])
		}
		vendors = append(vendors, VendorStats{
			Vendor:        vendor,
			TotalSpend:    total,
			ClaimCount:    counts[vendor],
			AverageTicket: avg,
			CategoryCount: len(categories[vendor]),
		})
	}

	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].TotalSpend != vendors[j].TotalSpend {
			return vendors[i].TotalSpend > vendors[j].TotalSpend
		}
		return vendors[i].Vendor < vendors[j].Vendor
	})

	if n > 0 && len(vendors) > n {
		vendors = vendors[:n]
	}

	return vendors
}

// DayOfWeekSpending totals spend by the weekday of the expense date
func DayOfWeekSpending(bills []*bill.Bill) map[string]float64 {
	totals := make(map[string]float64)
	for _, b := range bills {
		totals[b.ExpenseDate.Weekday().String()] += b.Amount
	}
	return totals
}

// MonthOverMonth compares the latest calendar month against the one before
func MonthOverMonth(bills []*bill.Bill, now time.Time) MonthComparison {
	current := monthKey(now)
	previous := current.AddDate(0, -1, 0)

	var cmp MonthComparison
	for _, b := range bills {
		switch monthKey(b.ExpenseDate) {
		case current:
			cmp.CurrentMonth += b.Amount
		case previous:
			cmp.PreviousMonth += b.Amount
		}
	}

	cmp.ChangePercent = percentOf(cmp.CurrentMonth-cmp.PreviousMonth, cmp.PreviousMonth)

	return cmp
}

// ForecastNextMonth projects next month's spend as the mean of the three
// most recent calendar months present in the data, plus ten percent
func ForecastNextMonth(bills []*bill.Bill) Forecast {
	monthAmounts := make(map[time.Time]float64)
	for _, b := range bills {
		monthAmounts[monthKey(b.ExpenseDate)] += b.Amount
	}

	months := make([]time.Time, 0, len(monthAmounts))
	for m := range monthAmounts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	basis := len(months)
	if basis > 3 {
		basis = 3
	}
	if basis == 0 {
		return Forecast{}
	}

	var sum float64
	for _, m := range months[:basis] {
		sum += monthAmounts[m]
	}

	return Forecast{
		ProjectedSpend: sum / float64(basis) * 1.10,
		BasisMonths:    basis,
	}
}
