package services

import (
	"context"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	dashboardMonths  = 6
	dashboardRecents = 5
)

// MonthlyRevenue is the paid revenue of one calendar month.
type MonthlyRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// DashboardStats is the back-office overview.
type DashboardStats struct {
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	TotalOrders       int              `json:"total_orders"`
	TotalProducts     int64            `json:"total_products"`
	OrderStatusCounts map[string]int   `json:"order_status_counts"`
	MonthlyRevenue    []MonthlyRevenue `json:"monthly_revenue"`
	RecentOrders      []models.Order   `json:"recent_orders"`
}

// DashboardService aggregates order and product figures.
type DashboardService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(orders repositories.OrderRepository, products repositories.ProductRepository, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{orders: orders, products: products, now: now}
}

// Stats computes the dashboard figures.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.orders.List(ctx, models.OrderFilter{})
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalRevenue:  paidRevenue(orders),
		TotalOrders:   len(orders),
		TotalProducts: products,
		OrderStatusCounts: map[string]int{
			models.StatusPending:    0,
			models.StatusPaid:       0,
			models.StatusProcessing: 0,
			models.StatusShipped:    0,
			models.StatusDelivered:  0,
			models.StatusCancelled:  0,
		},
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(dashboardMonths - 1), 0)
	buckets := make(map[string]int, dashboardMonths)
	for i := 0; i < dashboardMonths; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		buckets[key] = i
		stats.MonthlyRevenue = append(stats.MonthlyRevenue, MonthlyRevenue{Month: key, Revenue: decimal.Zero})
	}

	for _, o := range orders {
		stats.OrderStatusCounts[o.Status()]++
		if o.PaymentStatus != models.PaymentPaid {
			continue
		}
		if i, ok := buckets[o.CreatedAt.UTC().Format("2006-01")]; ok {
			stats.MonthlyRevenue[i].Revenue = stats.MonthlyRevenue[i].Revenue.Add(o.TotalAmount)
			stats.MonthlyRevenue[i].Orders++
		}
	}

	// orders are listed newest first
	n := dashboardRecents
	if len(orders) < n {
		n = len(orders)
	}
	stats.RecentOrders = orders[:n]
	return stats, nil
}
