package admin

import (
	"time"

	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/report"
)

// Revenue goals shown on the revenue cards.
const (
	MonthlyTarget int64 = 50000
	YearlyTarget  int64 = 500000
)

// Metrics is a point-in-time snapshot of the dashboard figures. Nothing
// here is stored; every read recomputes it from the payment set.
type Metrics struct {
	TotalUsers      int     `json:"totalUsers"`
	PendingCount    int     `json:"pendingCount"`
	Revenue         int64   `json:"revenue"`
	Daily           int64   `json:"daily"`
	Monthly         int64   `json:"monthly"`
	Yearly          int64   `json:"yearly"`
	MonthlyTarget   int64   `json:"monthlyTarget"`
	YearlyTarget    int64   `json:"yearlyTarget"`
	MonthlyProgress float64 `json:"monthlyProgress"`
}

// ComputeMetrics derives the payment figures. Revenue only counts approved
// payments; the calendar buckets compare createdAt and now in loc.
func ComputeMetrics(payments []models.Payment, now time.Time, loc *time.Location) Metrics {
	m := Metrics{MonthlyTarget: MonthlyTarget, YearlyTarget: YearlyTarget}
	for _, p := range payments {
		switch p.Status {
		case models.StatusPending:
			m.PendingCount++
		case models.StatusApproved:
			m.Revenue += p.Amount
			if report.Daily.Contains(p.CreatedAt, now, loc) {
				m.Daily += p.Amount
			}
			if report.Monthly.Contains(p.CreatedAt, now, loc) {
				m.Monthly += p.Amount
			}
			if report.Yearly.Contains(p.CreatedAt, now, loc) {
				m.Yearly += p.Amount
			}
		}
	}
	m.MonthlyProgress = min(float64(m.Monthly)/float64(MonthlyTarget)*100, 100)
	return m
}
