package handler

import (
	"ShareVault/internal/dto"
	"ShareVault/internal/service"
	"ShareVault/model"
	"ShareVault/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Register creates a user account.
func Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if service.IsEmailExist(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already exists"})
		return
	}

	user := model.User{
		UserName: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}
	if err := service.CreateUser(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "register failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "registered"})
}

// Login verifies credentials and issues a JWT.
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := service.CheckPassword(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	token, err := utils.GenerateToken(user.ID, user.UserName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// currentPrincipal rebuilds the caller identity set by the auth middleware.
func currentPrincipal(c *gin.Context) (service.Principal, bool) {
	value, ok := c.Get("user_id")
	if !ok {
		return service.Principal{}, false
	}
	userID, ok := value.(uint64)
	if !ok {
		return service.Principal{}, false
	}
	user, err := service.GetUserById(userID)
	if err != nil {
		return service.Principal{}, false
	}
	return service.PrincipalFor(user), true
}
