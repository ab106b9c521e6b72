package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mridul249/p2p-electron/registry"
)

func (h *Handler) handleAdminLogin(c *gin.Context) {
	type AdminLoginInput struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing credentials!"})
		return
	}

	admin, err := h.svc.AuthenticateAdmin(input.Username, input.Password)
	if errors.Is(err, registry.ErrAuthFailed) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials!"})
		return
	}
	if err != nil {
		log.Printf("[ERROR] DB Error during admin login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB Error"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": admin.Username,
		"role":     admin.Role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(h.jwtKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to sign token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": signed})
}

func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return h.jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("admin", claims["username"])
		}
		c.Next()
	}
}

func (h *Handler) handleAdminPeers(c *gin.Context) {
	peers, err := h.svc.ListPeers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB Error"})
		return
	}

	type peerStatus struct {
		Username      string    `json:"username"`
		IP            string    `json:"ip"`
		Port          int       `json:"port"`
		LastSeen      time.Time `json:"last_seen"`
		LastHeartbeat time.Time `json:"last_heartbeat"`
		Live          bool      `json:"live"`
	}
	out := make([]peerStatus, 0, len(peers))
	for i := range peers {
		p := peers[i]
		out = append(out, peerStatus{
			Username:      p.Username,
			IP:            p.IP,
			Port:          p.Port,
			LastSeen:      p.LastSeen,
			LastHeartbeat: p.LastHeartbeat,
			Live:          h.svc.Live(&p),
		})
	}
	c.JSON(http.StatusOK, gin.H{"peers": out})
}

func (h *Handler) handleAdminStats(c *gin.Context) {
	stats, err := h.svc.CollectStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB Error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
