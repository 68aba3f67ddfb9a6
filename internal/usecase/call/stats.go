package call

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/timezone"
)

// RevenuePerBooking is the flat estimate used for dashboard revenue.
const RevenuePerBooking = 150

type DashboardStats struct {
	TotalCalls      int    `json:"totalCalls"`
	MonthlyBookings int    `json:"monthlyBookings"`
	MonthlyRevenue  string `json:"monthlyRevenue"`
}

type GetDashboardStats struct {
	store storage.Storage
	tz    string
	now   func() time.Time
}

func NewGetDashboardStats(store storage.Storage, tz string) *GetDashboardStats {
	return &GetDashboardStats{store: store, tz: tz, now: time.Now}
}

func (uc *GetDashboardStats) Execute(ctx context.Context, businessID uint) (*DashboardStats, error) {
	calls, err := uc.store.ListCalls(ctx, businessID)
	if err != nil {
		return nil, err
	}
	bookings, err := uc.store.ListBookings(ctx, businessID)
	if err != nil {
		return nil, err
	}

	monthStart := timezone.StartOfMonth(uc.now().In(timezone.Location(uc.tz)))

	monthly := 0
	for _, b := range bookings {
		if !b.Date.Before(monthStart) {
			monthly++
		}
	}

	return &DashboardStats{
		TotalCalls:      len(calls),
		MonthlyBookings: monthly,
		MonthlyRevenue:  fmt.Sprintf("$%d", RevenuePerBooking*monthly),
	}, nil
}

// ======================================================
// REPORT
// ======================================================

// RequestReport sends the current stats to the report workflow.
type RequestReport struct {
	stats     *GetDashboardStats
	workflows workflow.Triggerer
}

func NewRequestReport(stats *GetDashboardStats, workflows workflow.Triggerer) *RequestReport {
	return &RequestReport{stats: stats, workflows: workflows}
}

func (uc *RequestReport) Execute(ctx context.Context, businessID, userID uint) (*DashboardStats, error) {
	stats, err := uc.stats.Execute(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if err := uc.workflows.TriggerReportWorkflow(ctx, map[string]any{
		"businessId":  businessID,
		"requestedBy": userID,
		"stats":       stats,
	}); err != nil {
		return nil, err
	}
	return stats, nil
}
