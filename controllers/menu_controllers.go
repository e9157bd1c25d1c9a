package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

type MenuController struct {
	Menus *services.MenuService
}

func NewMenuController(menus *services.MenuService) *MenuController {
	return &MenuController{Menus: menus}
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	menus, err := mc.Menus.GetMenus(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetActiveMenu -> menu yang sedang menerima order
func (mc *MenuController) GetActiveMenu(c *gin.Context) {
	menu, err := mc.Menus.GetActiveMenu(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active menu", menu)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	menu, err := mc.Menus.GetMenuByID(c.Request.Context(), c.Param("menu_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var input services.MenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := mc.Menus.CreateMenu(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var input services.MenuUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := mc.Menus.UpdateMenu(c.Request.Context(), c.Param("menu_id"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	if err := mc.Menus.DeleteMenu(c.Request.Context(), c.Param("menu_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", nil)
}

func (mc *MenuController) ActivateMenu(c *gin.Context) {
	if err := mc.Menus.ActivateMenu(c.Request.Context(), c.Param("menu_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu activated", nil)
}

func (mc *MenuController) SetMenuPublished(c *gin.Context) {
	var body struct {
		IsPublished *bool `json:"is_published" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := mc.Menus.SetMenuPublished(c.Request.Context(), c.Param("menu_id"), *body.IsPublished); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu publication updated", gin.H{"is_published": *body.IsPublished})
}
