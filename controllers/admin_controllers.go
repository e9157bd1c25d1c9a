package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

type AdminController struct {
	Reports *services.ReportService
	Audit   *services.AuditLogger
}

func NewAdminController(reports *services.ReportService, audit *services.AuditLogger) *AdminController {
	return &AdminController{Reports: reports, Audit: audit}
}

// weekBounds returns Monday and Sunday of the week containing t.
func weekBounds(t time.Time) (string, string) {
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return monday.Format(utils.DateLayout), monday.AddDate(0, 0, 6).Format(utils.DateLayout)
}

// GetDashboardStats mengambil statistik order hari ini dan delivery minggu ini
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	today := utils.Today()
	weekStart, weekEnd := weekBounds(time.Now())

	orders, err := ac.Reports.GenerateOrderReport(ctx, today, today)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	deliveries, err := ac.Reports.GenerateDeliveryReport(ctx, weekStart, weekEnd)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"today_orders":    orders,
		"week_deliveries": deliveries,
	})
}

// GetDeliveryReport -> ?week_start=&week_end=, default minggu berjalan
func (ac *AdminController) GetDeliveryReport(c *gin.Context) {
	weekStart, weekEnd := weekBounds(time.Now())
	weekStart = c.DefaultQuery("week_start", weekStart)
	weekEnd = c.DefaultQuery("week_end", weekEnd)

	report, err := ac.Reports.GenerateDeliveryReport(c.Request.Context(), weekStart, weekEnd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery report", report)
}

// GetOrderReport -> ?start_date=&end_date=, default hari ini
func (ac *AdminController) GetOrderReport(c *gin.Context) {
	today := utils.Today()
	report, err := ac.Reports.GenerateOrderReport(c.Request.Context(),
		c.DefaultQuery("start_date", today), c.DefaultQuery("end_date", today))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order report", report)
}

// GetAuditLogs -> ?entity_id=&limit= (default 100)
func (ac *AdminController) GetAuditLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidInput)
		return
	}

	logs, err := ac.Audit.GetAuditLogs(c.Request.Context(), c.Query("entity_id"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Audit logs", logs)
}
