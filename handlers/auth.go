package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mridul249/p2p-electron/registry"
)

func (h *Handler) handleRegister(c *gin.Context) {
	type RegisterInput struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		IP       string `json:"ip" binding:"required"`
		Port     int    `json:"port" binding:"required"`
	}
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Println("Missing required fields for registration.")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields!"})
		return
	}
	log.Printf("Register attempt for user: %s", input.Username)

	err := h.svc.Register(input.Username, input.Password, input.IP, input.Port)
	if errors.Is(err, registry.ErrUsernameTaken) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists!"})
		return
	}
	if err != nil {
		log.Printf("[ERROR] Registration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB Error"})
		return
	}
	log.Printf("Registration successful for user: %s", input.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Registration successful!"})
}

func (h *Handler) handleLogin(c *gin.Context) {
	type LoginInput struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		IP       string `json:"ip"`
		Port     int    `json:"port"`
	}
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing credentials!"})
		return
	}
	log.Printf("Login attempt for user: %s", input.Username)

	username, err := h.svc.Login(input.Username, input.Password, input.IP, input.Port)
	if errors.Is(err, registry.ErrAuthFailed) {
		log.Printf("Invalid credentials for user: %s", input.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials!"})
		return
	}
	if err != nil {
		log.Printf("[ERROR] DB Error during login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB Error"})
		return
	}
	log.Printf("Login successful for user: %s", username)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "username": username})
}
