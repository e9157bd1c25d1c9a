package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

type DriverController struct {
	Drivers *services.DriverService
}

func NewDriverController(drivers *services.DriverService) *DriverController {
	return &DriverController{Drivers: drivers}
}

// GetAllDrivers -> ?active=true hanya driver aktif
func (dc *DriverController) GetAllDrivers(c *gin.Context) {
	get := dc.Drivers.GetAllDrivers
	if c.Query("active") == "true" {
		get = dc.Drivers.GetActiveDrivers
	}
	drivers, err := get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of drivers", drivers)
}

func (dc *DriverController) GetDriverByID(c *gin.Context) {
	driver, err := dc.Drivers.GetDriverByID(c.Request.Context(), c.Param("driver_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver detail", driver)
}

func (dc *DriverController) CreateDriver(c *gin.Context) {
	var input services.DriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	driver, err := dc.Drivers.CreateDriver(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Driver created", driver)
}

func (dc *DriverController) UpdateDriver(c *gin.Context) {
	var input services.DriverUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := dc.Drivers.UpdateDriver(c.Request.Context(), c.Param("driver_id"), input); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver updated", nil)
}

func (dc *DriverController) ToggleDriverStatus(c *gin.Context) {
	var body struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := dc.Drivers.ToggleDriverStatus(c.Request.Context(), c.Param("driver_id"), *body.IsActive); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver status updated", gin.H{"is_active": *body.IsActive})
}

func (dc *DriverController) DeleteDriver(c *gin.Context) {
	if err := dc.Drivers.DeleteDriver(c.Request.Context(), c.Param("driver_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver deleted", nil)
}

// GetDriverStatistics -> ?start_date=&end_date= (boleh kosong)
func (dc *DriverController) GetDriverStatistics(c *gin.Context) {
	stats, err := dc.Drivers.GetDriverStatistics(c.Request.Context(), c.Param("driver_id"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver statistics", stats)
}

func (dc *DriverController) GetDriverPerformance(c *gin.Context) {
	perf, err := dc.Drivers.GetDriverPerformance(c.Request.Context(), c.Param("driver_id"), c.Query("week_start"), c.Query("week_end"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Driver performance", perf)
}
