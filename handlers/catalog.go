package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mridul249/p2p-electron/registry"
)

func (h *Handler) handleShareFiles(c *gin.Context) {
	type ShareInput struct {
		Username string   `json:"username" binding:"required"`
		Filename []string `json:"filename"`
		PeerIP   string   `json:"peer_ip" binding:"required"`
		PeerPort int      `json:"peer_port" binding:"required"`
	}
	var input ShareInput
	// Filename is bound without "required" so an empty list (a valid clear)
	// is distinguishable from an absent field.
	if err := c.ShouldBindJSON(&input); err != nil || input.Filename == nil {
		log.Println("Missing required fields for share_files.")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields!"})
		return
	}
	log.Printf("Share files from %s: %v", input.Username, input.Filename)

	err := h.svc.Publish(input.Username, input.Filename, input.PeerIP, input.PeerPort)
	if errors.Is(err, registry.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields!"})
		return
	}
	if err != nil {
		log.Printf("[ERROR] Error sharing files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error sharing files"})
		return
	}
	log.Printf("Files shared successfully by user: %s", input.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Files shared successfully!"})
}

// /files and /search_files are distinct paths for historical reasons; both
// return the same row shape with the same liveness filtering.
func (h *Handler) handleFiles(c *gin.Context) {
	h.queryFiles(c, "Files")
}

func (h *Handler) handleSearchFiles(c *gin.Context) {
	h.queryFiles(c, "Search files")
}

func (h *Handler) queryFiles(c *gin.Context, label string) {
	filename := c.Query("filename")
	username := c.Query("username")
	log.Printf("%s request: filename='%s', username='%s'", label, filename, username)

	files, err := h.svc.QueryFiles(filename, username)
	if err != nil {
		log.Printf("[ERROR] DB Error fetching files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB Error"})
		return
	}
	if files == nil {
		files = []registry.FileResult{}
	}
	log.Printf("%s result: %d files", label, len(files))
	c.JSON(http.StatusOK, gin.H{"files": files})
}
