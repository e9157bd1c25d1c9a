package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/gorm"
)

// DriverPerformance is one driver's row in a delivery report.
type DriverPerformance struct {
	DriverID           string  `json:"driver_id"`
	DriverName         string  `json:"driver_name"`
	DeliveriesCount    int     `json:"deliveries_count"`
	OrdersCount        int     `json:"orders_count"`
	TotalEarnings      float64 `json:"total_earnings"`
	AveragePerDelivery float64 `json:"average_per_delivery"`
}

func (p *DriverPerformance) add(d models.Delivery) {
	p.DeliveriesCount++
	p.OrdersCount += len(d.OrderIDs)
	p.TotalEarnings += d.DeliveryPrice
	if p.DriverName == "" {
		p.DriverName = d.DriverName
	}
}

func (p *DriverPerformance) finish() {
	if p.DeliveriesCount > 0 {
		p.AveragePerDelivery = p.TotalEarnings / float64(p.DeliveriesCount)
	}
}

type MethodBreakdown struct {
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

// DeliveryReport is computed on demand and never stored.
type DeliveryReport struct {
	WeekStart            string              `json:"week_start"`
	WeekEnd              string              `json:"week_end"`
	TotalDeliveries      int                 `json:"total_deliveries"`
	TotalOrdersDelivered int                 `json:"total_orders_delivered"`
	Motorcycle           MethodBreakdown     `json:"motorcycle"`
	Taxi                 MethodBreakdown     `json:"taxi"`
	TotalCost            float64             `json:"total_cost"`
	DriverPerformance    []DriverPerformance `json:"driver_performance"`
}

// BuildDeliveryReport folds deliveries into a report in one pass. Only motorcycle
// deliveries with a driver contribute to the per-driver rows, which come back sorted
// by earnings descending then driver id.
func BuildDeliveryReport(weekStart, weekEnd string, deliveries []models.Delivery) DeliveryReport {
	report := DeliveryReport{
		WeekStart:         weekStart,
		WeekEnd:           weekEnd,
		DriverPerformance: []DriverPerformance{},
	}
	drivers := make(map[string]*DriverPerformance)

	for _, d := range deliveries {
		report.TotalDeliveries++
		report.TotalOrdersDelivered += len(d.OrderIDs)

		switch d.Method {
		case models.DeliveryMethodMotorcycle:
			report.Motorcycle.Count++
			report.Motorcycle.Cost += d.DeliveryPrice
			if d.DriverID == nil || *d.DriverID == "" {
				continue
			}
			perf, ok := drivers[*d.DriverID]
			if !ok {
				perf = &DriverPerformance{DriverID: *d.DriverID}
				drivers[*d.DriverID] = perf
			}
			perf.add(d)
		case models.DeliveryMethodTaxi:
			report.Taxi.Count++
			report.Taxi.Cost += d.DeliveryPrice
		}
	}

	report.TotalCost = report.Motorcycle.Cost + report.Taxi.Cost
	for _, perf := range drivers {
		perf.finish()
		report.DriverPerformance = append(report.DriverPerformance, *perf)
	}
	sort.Slice(report.DriverPerformance, func(i, j int) bool {
		a, b := report.DriverPerformance[i], report.DriverPerformance[j]
		if a.TotalEarnings != b.TotalEarnings {
			return a.TotalEarnings > b.TotalEarnings
		}
		return a.DriverID < b.DriverID
	})
	return report
}

// OrderReport mirrors the admin dashboard statistics for a date window.
type OrderReport struct {
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	TotalOrders     int            `json:"total_orders"`
	StatusCounts    map[string]int `json:"status_counts"`
	TotalRevenue    float64        `json:"total_revenue"`
	OptionQuantity  map[string]int `json:"option_quantity"`
	GuestOrders     int            `json:"guest_orders"`
	UnassignedCount int            `json:"unassigned_confirmed"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// GenerateDeliveryReport reports on deliveries dated within [weekStart, weekEnd].
func (s *ReportService) GenerateDeliveryReport(ctx context.Context, weekStart, weekEnd string) (*DeliveryReport, error) {
	if err := validateRange(weekStart, weekEnd); err != nil {
		return nil, err
	}

	var deliveries []models.Delivery
	err := s.db.WithContext(ctx).
		Where("delivery_date >= ? AND delivery_date <= ?", weekStart, weekEnd).
		Find(&deliveries).Error
	if err != nil {
		return nil, fail("generate delivery report", err, logrus.Fields{"week_start": weekStart, "week_end": weekEnd})
	}

	report := BuildDeliveryReport(weekStart, weekEnd, deliveries)
	return &report, nil
}

// GenerateOrderReport counts orders dated within [startDate, endDate].
// Cancelled orders are counted but excluded from revenue.
func (s *ReportService) GenerateOrderReport(ctx context.Context, startDate, endDate string) (*OrderReport, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("order_date >= ? AND order_date <= ?", startDate, endDate).
		Find(&orders).Error
	if err != nil {
		return nil, fail("generate order report", err, logrus.Fields{"start_date": startDate, "end_date": endDate})
	}

	report := &OrderReport{
		StartDate: startDate,
		EndDate:   endDate,
		StatusCounts: map[string]int{
			models.OrderStatusPending:   0,
			models.OrderStatusConfirmed: 0,
			models.OrderStatusDelivered: 0,
			models.OrderStatusCancelled: 0,
		},
		OptionQuantity: map[string]int{},
	}
	for _, o := range orders {
		report.TotalOrders++
		report.StatusCounts[o.Status]++
		if o.Source == models.OrderSourceGuest {
			report.GuestOrders++
		}
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		report.TotalRevenue += o.TotalPrice
		report.OptionQuantity[o.OptionName] += o.Quantity
		if o.Status == models.OrderStatusConfirmed && !o.IsAssigned() {
			report.UnassignedCount++
		}
	}
	return report, nil
}

func validateRange(start, end string) error {
	if !utils.IsISODate(start) || !utils.IsISODate(end) {
		return invalid("dates must be YYYY-MM-DD, got %q and %q", start, end)
	}
	if start > end {
		return invalid("start date %s is after end date %s", start, end)
	}
	return nil
}
