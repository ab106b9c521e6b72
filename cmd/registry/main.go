package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mridul249/p2p-electron/database"
	"github.com/mridul249/p2p-electron/handlers"
	"github.com/mridul249/p2p-electron/registry"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	svc := registry.NewService(db)

	adminUser := getEnv("ADMIN_USER", "admin")
	adminPass := getEnv("ADMIN_PASSWORD", "admin")
	if err := svc.EnsureDefaultAdmin(adminUser, adminPass); err != nil {
		log.Printf("Warning: Failed to create default admin: %v", err)
	}

	sweeper := registry.NewSweeper(svc)
	sweeper.Start()
	defer sweeper.Stop()

	host := getEnv("HOST", "0.0.0.0")
	port, err := strconv.Atoi(getEnv("PORT", "5001"))
	if err != nil {
		log.Fatal("Invalid PORT: ", err)
	}

	jwtKey := []byte(getEnv("JWT_SECRET", "default-secret-key-change-in-production"))
	h := handlers.New(svc, jwtKey, host, port)
	r := h.NewRouter()

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Server running on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
