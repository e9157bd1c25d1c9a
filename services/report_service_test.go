package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yeremiapane/choprek/models"
)

func reportDelivery(method, driverID, date string, price float64, orders int) models.Delivery {
	d := models.Delivery{
		Method:        method,
		DeliveryDate:  date,
		DeliveryPrice: price,
		OrderIDs:      datatypes.JSONSlice[string]{},
	}
	if driverID != "" {
		id := driverID
		d.DriverID = &id
		d.DriverName = "Driver " + driverID
	}
	for i := 0; i < orders; i++ {
		d.OrderIDs = append(d.OrderIDs, models.NewID())
	}
	return d
}

func TestBuildDeliveryReportScenario(t *testing.T) {
	report := BuildDeliveryReport("2024-03-04", "2024-03-10", []models.Delivery{
		reportDelivery(models.DeliveryMethodMotorcycle, "d1", "2024-03-04", 50, 3),
	})

	assert.Equal(t, 1, report.TotalDeliveries)
	assert.Equal(t, 3, report.TotalOrdersDelivered)
	assert.Equal(t, MethodBreakdown{Count: 1, Cost: 50}, report.Motorcycle)
	assert.Equal(t, MethodBreakdown{}, report.Taxi)
	assert.Equal(t, 50.0, report.TotalCost)
	require.Len(t, report.DriverPerformance, 1)
	assert.Equal(t, DriverPerformance{
		DriverID:           "d1",
		DriverName:         "Driver d1",
		DeliveriesCount:    1,
		OrdersCount:        3,
		TotalEarnings:      50,
		AveragePerDelivery: 50,
	}, report.DriverPerformance[0])
}

func TestBuildDeliveryReportEmpty(t *testing.T) {
	report := BuildDeliveryReport("2024-03-04", "2024-03-10", nil)
	assert.Zero(t, report.TotalDeliveries)
	assert.NotNil(t, report.DriverPerformance)
	assert.Empty(t, report.DriverPerformance)
}

func TestBuildDeliveryReportSortsDrivers(t *testing.T) {
	report := BuildDeliveryReport("2024-03-04", "2024-03-10", []models.Delivery{
		reportDelivery(models.DeliveryMethodMotorcycle, "d2", "2024-03-04", 30, 1),
		reportDelivery(models.DeliveryMethodMotorcycle, "d1", "2024-03-05", 30, 2),
		reportDelivery(models.DeliveryMethodMotorcycle, "d3", "2024-03-05", 20, 1),
		reportDelivery(models.DeliveryMethodMotorcycle, "d3", "2024-03-06", 25, 1),
		reportDelivery(models.DeliveryMethodTaxi, "", "2024-03-06", 90, 4),
	})

	assert.Equal(t, 5, report.TotalDeliveries)
	assert.Equal(t, 9, report.TotalOrdersDelivered)
	assert.Equal(t, MethodBreakdown{Count: 4, Cost: 105}, report.Motorcycle)
	assert.Equal(t, MethodBreakdown{Count: 1, Cost: 90}, report.Taxi)
	assert.Equal(t, 195.0, report.TotalCost)

	require.Len(t, report.DriverPerformance, 3)
	order := []string{
		report.DriverPerformance[0].DriverID,
		report.DriverPerformance[1].DriverID,
		report.DriverPerformance[2].DriverID,
	}
	assert.Equal(t, []string{"d3", "d1", "d2"}, order)
	assert.Equal(t, 22.5, report.DriverPerformance[0].AveragePerDelivery)
}

func TestGenerateDeliveryReportIsAdditive(t *testing.T) {
	env := newTestEnv(t)
	seedActiveMenu(t, env.db)
	budi := seedDriver(t, env.db, "Budi")
	andi := seedDriver(t, env.db, "Andi")

	create := func(in CreateDeliveryInput) {
		_, err := env.deliveries.CreateDelivery(ctx, admin, in)
		require.NoError(t, err)
	}
	create(motorcycleInput(budi.ID, 50, "2024-03-04", seedOrders(t, env.db, 3, "2024-03-04")...))
	create(motorcycleInput(andi.ID, 35, "2024-03-06", seedOrders(t, env.db, 2, "2024-03-06")...))
	create(motorcycleInput(budi.ID, 40, "2024-03-08", seedOrders(t, env.db, 1, "2024-03-08")...))
	create(CreateDeliveryInput{
		Method:        models.DeliveryMethodTaxi,
		TaxiService:   "Grab",
		OrderIDs:      seedOrders(t, env.db, 4, "2024-03-07"),
		DeliveryDate:  "2024-03-07",
		DeliveryPrice: 90,
	})
	create(motorcycleInput(budi.ID, 99, "2024-03-15", seedOrders(t, env.db, 1, "2024-03-15")...))

	whole, err := env.reports.GenerateDeliveryReport(ctx, "2024-03-04", "2024-03-10")
	require.NoError(t, err)
	left, err := env.reports.GenerateDeliveryReport(ctx, "2024-03-04", "2024-03-06")
	require.NoError(t, err)
	right, err := env.reports.GenerateDeliveryReport(ctx, "2024-03-07", "2024-03-10")
	require.NoError(t, err)

	assert.Equal(t, 4, whole.TotalDeliveries)
	assert.Equal(t, 10, whole.TotalOrdersDelivered)
	assert.Equal(t, whole.TotalDeliveries, left.TotalDeliveries+right.TotalDeliveries)
	assert.Equal(t, whole.TotalOrdersDelivered, left.TotalOrdersDelivered+right.TotalOrdersDelivered)
	assert.Equal(t, whole.Motorcycle.Count, left.Motorcycle.Count+right.Motorcycle.Count)
	assert.InDelta(t, whole.Motorcycle.Cost, left.Motorcycle.Cost+right.Motorcycle.Cost, 0.001)
	assert.InDelta(t, whole.Taxi.Cost, left.Taxi.Cost+right.Taxi.Cost, 0.001)
	assert.InDelta(t, whole.TotalCost, left.TotalCost+right.TotalCost, 0.001)

	require.Len(t, whole.DriverPerformance, 2)
	assert.Equal(t, budi.ID, whole.DriverPerformance[0].DriverID)
	assert.Equal(t, 90.0, whole.DriverPerformance[0].TotalEarnings)
	assert.Equal(t, 45.0, whole.DriverPerformance[0].AveragePerDelivery)
}

func TestGenerateDeliveryReportRejectsBadRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reports.GenerateDeliveryReport(ctx, "2024-03-10", "2024-03-04")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = env.reports.GenerateDeliveryReport(ctx, "minggu lalu", "2024-03-04")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGenerateOrderReport(t *testing.T) {
	env := newTestEnv(t)
	seedOrders(t, env.db, 2, "2024-03-04")
	seedOrder(t, env.db, models.OrderStatusPending, "2024-03-05")
	seedOrder(t, env.db, models.OrderStatusCancelled, "2024-03-05")
	seedOrder(t, env.db, models.OrderStatusPending, "2024-04-01")

	report, err := env.reports.GenerateOrderReport(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalOrders)
	assert.Equal(t, 2, report.StatusCounts[models.OrderStatusConfirmed])
	assert.Equal(t, 1, report.StatusCounts[models.OrderStatusPending])
	assert.Equal(t, 1, report.StatusCounts[models.OrderStatusCancelled])
	assert.Equal(t, 75000.0, report.TotalRevenue)
	assert.Equal(t, 3, report.OptionQuantity["Nasi Goreng"])
	assert.Equal(t, 4, report.GuestOrders)
	assert.Equal(t, 2, report.UnassignedCount)
}
