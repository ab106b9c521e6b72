package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) handleHealth(c *gin.Context) {
	clientIP := c.ClientIP()
	log.Printf("Health check from IP: %s", clientIP)
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"server_time": time.Now().UTC().Format(time.RFC3339),
		"client_ip":   clientIP,
		"server_host": h.serverHost,
		"server_port": h.serverPort,
	})
}
