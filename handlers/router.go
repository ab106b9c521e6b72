// Package handlers exposes the registry over HTTP/JSON. Route shapes and
// response messages match the original directory server so existing peers
// keep working unchanged.
package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mridul249/p2p-electron/registry"
)

// Handler bundles the registry service with the HTTP-layer configuration.
type Handler struct {
	svc        *registry.Service
	jwtKey     []byte
	serverHost string
	serverPort int
}

// New creates the HTTP handler set over the registry service.
func New(svc *registry.Service, jwtKey []byte, serverHost string, serverPort int) *Handler {
	return &Handler{
		svc:        svc,
		jwtKey:     jwtKey,
		serverHost: serverHost,
		serverPort: serverPort,
	}
}

// NewRouter builds the Gin engine with all registry routes mounted.
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.Default()

	// Peers run on arbitrary hosts, so CORS stays wide open like the
	// original directory server.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", h.handleHealth)
	r.POST("/register", h.handleRegister)
	r.POST("/login", h.handleLogin)
	r.POST("/heartbeat", h.handleHeartbeat)
	r.POST("/disconnect", h.handleDisconnect)
	r.POST("/share_files", h.handleShareFiles)
	r.GET("/files", h.handleFiles)
	r.GET("/search_files", h.handleSearchFiles)

	r.POST("/admin/login", h.handleAdminLogin)

	authorized := r.Group("/admin")
	authorized.Use(h.authMiddleware())
	{
		authorized.GET("/peers", h.handleAdminPeers)
		authorized.GET("/stats", h.handleAdminStats)
	}

	return r
}
