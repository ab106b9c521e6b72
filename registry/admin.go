package registry

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mridul249/p2p-electron/models"
)

// EnsureDefaultAdmin creates the admin account if none exists. Admin
// passwords are bcrypt-hashed; peer accounts keep the legacy exact-match
// contract and are unaffected.
func (s *Service) EnsureDefaultAdmin(username, password string) error {
	var count int64
	if err := s.db.Model(&models.Admin{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.Admin{Username: username, Password: string(hash), Role: "admin"}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[INFO] Default admin user created: %s", username)
	return nil
}

// AuthenticateAdmin verifies an admin's credentials against the stored
// bcrypt hash.
func (s *Service) AuthenticateAdmin(username, password string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, ErrAuthFailed
	}
	return &admin, nil
}
