package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mridul249/p2p-electron/models"
)

// DB is the process-wide database handle, set by Connect.
var DB *gorm.DB

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Connect opens the registry database. When DB_HOST is set it connects to
// Postgres, retrying while the database comes up; otherwise it falls back to
// a local SQLite file (SQLITE_DB_PATH, default ./p2p.db).
func Connect() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[DEBUG] No .env file loaded: %v", err)
	}

	var (
		db  *gorm.DB
		err error
	)

	if host := os.Getenv("DB_HOST"); host != "" {
		dsn := "host=" + host +
			" user=" + getEnv("DB_USER", "postgres") +
			" password=" + os.Getenv("DB_PASSWORD") +
			" dbname=" + getEnv("DB_NAME", "peershare") +
			" port=" + getEnv("DB_PORT", "5432") + " sslmode=disable"

		for i := 0; i < 30; i++ {
			db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
			if err == nil {
				break
			}
			log.Printf("Attempt %d: Failed to connect to database: %v", i+1, err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database after 30 attempts: %v", err)
		}
	} else {
		path := getEnv("SQLITE_DB_PATH", "./p2p.db")
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %s: %v", path, err)
		}
	}

	DB = db
	return db, nil
}

// Migrate creates or updates the registry tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Peer{}, &models.FileEntry{}, &models.Admin{})
}
