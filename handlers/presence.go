package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mridul249/p2p-electron/registry"
)

func (h *Handler) handleHeartbeat(c *gin.Context) {
	type HeartbeatInput struct {
		Username string `json:"username" binding:"required"`
		IP       string `json:"ip" binding:"required"`
		Port     int    `json:"port" binding:"required"`
	}
	var input HeartbeatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Println("Missing required fields for heartbeat.")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields!"})
		return
	}

	err := h.svc.Heartbeat(input.Username, input.IP, input.Port)
	if errors.Is(err, registry.ErrPeerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown peer!"})
		return
	}
	if err != nil {
		log.Printf("[ERROR] Error processing heartbeat: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing heartbeat"})
		return
	}
	log.Printf("Heartbeat received from user: %s", input.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Heartbeat received"})
}

func (h *Handler) handleDisconnect(c *gin.Context) {
	type DisconnectInput struct {
		Username string `json:"username" binding:"required"`
	}
	var input DisconnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Println("Missing username in disconnect request.")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing username!"})
		return
	}

	if err := h.svc.Disconnect(input.Username); err != nil {
		log.Printf("[ERROR] Error processing disconnect: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing disconnect"})
		return
	}
	log.Printf("Disconnected user: %s", input.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Disconnected successfully"})
}
