package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/middlewares"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// GetAllOrders -> filter lewat query: status, date, source, user_id, unassigned
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var filter services.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.Orders.GetOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetMyOrders -> order milik user yang login
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := oc.Orders.GetMyOrders(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of my orders", orders)
}

// GetOrderByID -> detail 1 order; employee hanya boleh melihat order miliknya
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.GetOrderByID(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	actor := actorFrom(c)
	if !utils.HasPermission(actor.Role, utils.PermOrderManage) {
		if order.UserID == nil || *order.UserID != actor.ID {
			utils.RespondError(c, http.StatusForbidden, errors.New("you can only view your own orders"))
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.Orders.UpdateOrderStatus(c.Request.Context(), actorFrom(c), c.Param("order_id"), body.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", gin.H{"status": body.Status})
}

// ConfirmOrders -> konfirmasi semua order pending untuk satu tanggal
func (oc *OrderController) ConfirmOrders(c *gin.Context) {
	var body struct {
		Date string `json:"date" binding:"required,isodate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	n, err := oc.Orders.ConfirmOrders(c.Request.Context(), body.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders confirmed", gin.H{"confirmed": n})
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	if err := oc.Orders.DeleteOrder(c.Request.Context(), c.Param("order_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", nil)
}
