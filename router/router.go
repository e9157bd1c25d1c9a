package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/controllers"
	"github.com/yeremiapane/choprek/middlewares"
	"github.com/yeremiapane/choprek/realtime"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

// Dependencies are the long-lived services the HTTP layer routes to.
type Dependencies struct {
	Users      *services.UserService
	Menus      *services.MenuService
	Orders     *services.OrderService
	Drivers    *services.DriverService
	Deliveries *services.DeliveryService
	Reports    *services.ReportService
	Audit      *services.AuditLogger
	Hub        *realtime.Hub

	CORSOrigin string
	// RateLimit is the number of requests per second allowed for one client IP; 0 disables it.
	RateLimit int
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	if deps.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RateLimit, time.Second).RateLimit())
	}

	userCtrl := controllers.NewUserController(deps.Users)
	menuCtrl := controllers.NewMenuController(deps.Menus)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	driverCtrl := controllers.NewDriverController(deps.Drivers)
	deliveryCtrl := controllers.NewDeliveryController(deps.Deliveries)
	adminCtrl := controllers.NewAdminController(deps.Reports, deps.Audit)
	realtimeCtrl := controllers.NewRealtimeController(deps.Hub, deps.CORSOrigin)

	r.GET("/health", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "ok", nil)
	})

	// WebSocket: token lewat query string
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), realtimeCtrl.StreamChanges)

	api := r.Group("/api")
	api.Use(middlewares.CSRFMiddleware())
	api.GET("/csrf-token", userCtrl.CSRFToken)

	auth := api.Group("/auth")
	{
		strict := middlewares.NewStrictRateLimiter()
		auth.POST("/register", strict, userCtrl.Register)
		auth.POST("/login", strict, userCtrl.Login)
		auth.POST("/logout", middlewares.AuthMiddleware(), userCtrl.Logout)
	}

	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware())
	authed.GET("/profile", userCtrl.GetProfile)

	users := authed.Group("/users", middlewares.RequirePermission(utils.PermUserManage))
	{
		users.GET("", userCtrl.GetAllUsers)
		users.PUT("/:user_id/role", userCtrl.UpdateUserRole)
		users.DELETE("/:user_id", userCtrl.DeleteUser)
	}

	menuRead := middlewares.RequirePermission(utils.PermMenuRead)
	menuManage := middlewares.RequirePermission(utils.PermMenuManage)
	menus := authed.Group("/menus")
	{
		menus.GET("", menuRead, menuCtrl.GetAllMenus)
		menus.GET("/active", menuRead, menuCtrl.GetActiveMenu)
		menus.GET("/:menu_id", menuRead, menuCtrl.GetMenuByID)
		menus.POST("", menuManage, menuCtrl.CreateMenu)
		menus.PUT("/:menu_id", menuManage, menuCtrl.UpdateMenu)
		menus.DELETE("/:menu_id", menuManage, menuCtrl.DeleteMenu)
		menus.POST("/:menu_id/activate", menuManage, menuCtrl.ActivateMenu)
		menus.PUT("/:menu_id/publish", menuManage, menuCtrl.SetMenuPublished)
	}

	ownOrders := middlewares.RequirePermission(utils.PermOrderReadOwn)
	orderManage := middlewares.RequirePermission(utils.PermOrderManage)
	orders := authed.Group("/orders")
	{
		orders.POST("", middlewares.RequirePermission(utils.PermOrderCreate), orderCtrl.CreateOrder)
		orders.GET("/mine", ownOrders, orderCtrl.GetMyOrders)
		orders.GET("/:order_id", ownOrders, orderCtrl.GetOrderByID)
		orders.PUT("/:order_id/status", ownOrders, orderCtrl.UpdateOrderStatus)
		orders.GET("", orderManage, orderCtrl.GetAllOrders)
		orders.POST("/confirm", orderManage, orderCtrl.ConfirmOrders)
		orders.DELETE("/:order_id", orderManage, orderCtrl.DeleteOrder)
	}

	drivers := authed.Group("/drivers", middlewares.RequirePermission(utils.PermDriverManage))
	{
		drivers.GET("", driverCtrl.GetAllDrivers)
		drivers.POST("", driverCtrl.CreateDriver)
		drivers.GET("/:driver_id", driverCtrl.GetDriverByID)
		drivers.PUT("/:driver_id", driverCtrl.UpdateDriver)
		drivers.PUT("/:driver_id/status", driverCtrl.ToggleDriverStatus)
		drivers.DELETE("/:driver_id", driverCtrl.DeleteDriver)
		drivers.GET("/:driver_id/statistics", driverCtrl.GetDriverStatistics)
		drivers.GET("/:driver_id/performance", driverCtrl.GetDriverPerformance)
	}

	deliveries := authed.Group("/deliveries", middlewares.RequirePermission(utils.PermDeliveryManage))
	{
		deliveries.GET("", deliveryCtrl.GetAllDeliveries)
		deliveries.GET("/available-orders", deliveryCtrl.GetAvailableOrders)
		deliveries.POST("", deliveryCtrl.CreateDelivery)
		deliveries.GET("/:delivery_id", deliveryCtrl.GetDeliveryByID)
		deliveries.PUT("/:delivery_id", deliveryCtrl.UpdateDelivery)
		deliveries.POST("/:delivery_id/complete", deliveryCtrl.CompleteDelivery)
		deliveries.DELETE("/:delivery_id", deliveryCtrl.DeleteDelivery)
	}

	reports := authed.Group("/reports", middlewares.RequirePermission(utils.PermReportRead))
	{
		reports.GET("/dashboard", adminCtrl.GetDashboardStats)
		reports.GET("/deliveries", adminCtrl.GetDeliveryReport)
		reports.GET("/orders", adminCtrl.GetOrderReport)
	}

	authed.GET("/audit-logs", middlewares.RequirePermission(utils.PermAuditRead), adminCtrl.GetAuditLogs)

	return r
}
