package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

type DeliveryController struct {
	Deliveries *services.DeliveryService
}

func NewDeliveryController(deliveries *services.DeliveryService) *DeliveryController {
	return &DeliveryController{Deliveries: deliveries}
}

// GetAllDeliveries -> filter opsional: ?status=, ?driver_id=, ?start_date=&end_date=
func (dc *DeliveryController) GetAllDeliveries(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		deliveries interface{}
		err        error
	)
	switch {
	case c.Query("start_date") != "" || c.Query("end_date") != "":
		deliveries, err = dc.Deliveries.GetDeliveriesByDateRange(ctx, c.Query("start_date"), c.Query("end_date"))
	case c.Query("driver_id") != "":
		deliveries, err = dc.Deliveries.GetDeliveriesByDriver(ctx, c.Query("driver_id"))
	case c.Query("status") != "":
		deliveries, err = dc.Deliveries.GetDeliveriesByStatus(ctx, c.Query("status"))
	default:
		deliveries, err = dc.Deliveries.GetAllDeliveries(ctx)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of deliveries", deliveries)
}

// GetDeliveryByID -> detail delivery beserta order-nya
func (dc *DeliveryController) GetDeliveryByID(c *gin.Context) {
	delivery, err := dc.Deliveries.GetDeliveryWithOrders(c.Request.Context(), c.Param("delivery_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery detail", delivery)
}

func (dc *DeliveryController) CreateDelivery(c *gin.Context) {
	var input services.CreateDeliveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	id, err := dc.Deliveries.CreateDelivery(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Delivery created", gin.H{"delivery_id": id})
}

func (dc *DeliveryController) UpdateDelivery(c *gin.Context) {
	var input services.DeliveryUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := dc.Deliveries.UpdateDelivery(c.Request.Context(), actorFrom(c), c.Param("delivery_id"), input); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery updated", nil)
}

func (dc *DeliveryController) CompleteDelivery(c *gin.Context) {
	if err := dc.Deliveries.CompleteDelivery(c.Request.Context(), actorFrom(c), c.Param("delivery_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery completed", nil)
}

func (dc *DeliveryController) DeleteDelivery(c *gin.Context) {
	if err := dc.Deliveries.DeleteDelivery(c.Request.Context(), actorFrom(c), c.Param("delivery_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Delivery deleted", nil)
}

// GetAvailableOrders -> order confirmed yang belum masuk delivery, ?date= opsional
func (dc *DeliveryController) GetAvailableOrders(c *gin.Context) {
	orders, err := dc.Deliveries.GetConfirmedOrdersForDelivery(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders available for delivery", orders)
}
