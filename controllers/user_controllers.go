package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/middlewares"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// Register user baru (selalu employee)
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, token, err := uc.Users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("Login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_id":   user.ID,
		"user_role": user.Role,
	})
}

// Logout memasukkan token ke blacklist sampai kadaluarsa
func (uc *UserController) Logout(c *gin.Context) {
	utils.BlacklistToken(c.GetString(middlewares.ContextToken))
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile -> memeriksa user dari JWT
func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.Users.GetUserByID(c.Request.Context(), c.GetString(middlewares.ContextUserID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Users.GetAllUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

func (uc *UserController) UpdateUserRole(c *gin.Context) {
	var body struct {
		Role string `json:"role" binding:"required,oneof=admin employee"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := uc.Users.UpdateUserRole(c.Request.Context(), c.Param("user_id"), body.Role); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User role updated", nil)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	if err := uc.Users.DeleteUser(c.Request.Context(), c.Param("user_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", nil)
}

// CSRFToken memberikan token CSRF untuk klien berbasis cookie.
func (uc *UserController) CSRFToken(c *gin.Context) {
	token := c.GetString(middlewares.CSRFCookie)
	if token == "" {
		token = middlewares.IssueCSRFToken(c)
	}
	utils.RespondJSON(c, http.StatusOK, "CSRF token", gin.H{"csrf_token": token})
}
