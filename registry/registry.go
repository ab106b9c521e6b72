// Package registry implements the presence and catalog services backing the
// registry HTTP API: peer identity with TTL-based liveness, and the set of
// files each peer currently advertises.
package registry

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mridul249/p2p-electron/models"
)

// DefaultTTL is how long a peer stays live after its last heartbeat.
const DefaultTTL = 60 * time.Second

// Service exposes the registry operations over a single database handle.
// All mutations run in transactions so they serialize against the sweeper.
type Service struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewService creates a Service with the default TTL and the real clock.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, ttl: DefaultTTL, now: time.Now}
}

// TTL returns the liveness window applied at query time and by the sweeper.
func (s *Service) TTL() time.Duration { return s.ttl }

// Register creates a new peer row. The username must be unused.
func (s *Service) Register(username, password, ip string, port int) error {
	if username == "" || password == "" || ip == "" || port == 0 {
		return ErrValidation
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Peer{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		now := s.now()
		peer := models.Peer{
			Username:      username,
			Password:      password,
			IP:            ip,
			Port:          port,
			LastSeen:      now,
			LastHeartbeat: now,
		}
		return tx.Create(&peer).Error
	})
}

// Authenticate looks a peer up by exact username/password match.
func (s *Service) Authenticate(username, password string) (*models.Peer, error) {
	var peer models.Peer
	err := s.db.Where("username = ? AND password = ?", username, password).First(&peer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}
	return &peer, nil
}

// Login authenticates the peer and records its current transfer address,
// refreshing both last_seen and last_heartbeat. The lookup and the update
// run in one transaction so a concurrent sweep cannot delete the peer
// between them. Returns the canonical username on success.
func (s *Service) Login(username, password, ip string, port int) (string, error) {
	if username == "" || password == "" {
		return "", ErrValidation
	}
	var canonical string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var peer models.Peer
		err := tx.Where("username = ? AND password = ?", username, password).First(&peer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthFailed
		}
		if err != nil {
			return err
		}
		canonical = peer.Username
		now := s.now()
		return tx.Model(&models.Peer{}).Where("username = ?", peer.Username).
			Updates(map[string]interface{}{
				"ip":             ip,
				"port":           port,
				"last_seen":      now,
				"last_heartbeat": now,
			}).Error
	})
	if err != nil {
		return "", err
	}
	return canonical, nil
}

// Heartbeat refreshes a peer's liveness timestamp and advertised address.
// The caller-supplied address always wins; a heartbeat for an unknown
// username is surfaced as ErrPeerNotFound and never creates a peer.
func (s *Service) Heartbeat(username, ip string, port int) error {
	if username == "" || ip == "" || port == 0 {
		return ErrValidation
	}
	res := s.db.Model(&models.Peer{}).Where("username = ?", username).
		Updates(map[string]interface{}{
			"ip":             ip,
			"port":           port,
			"last_heartbeat": s.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPeerNotFound
	}
	return nil
}

// Disconnect removes the peer and everything it advertises. Idempotent.
func (s *Service) Disconnect(username string) error {
	if username == "" {
		return ErrValidation
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).Delete(&models.FileEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("username = ?", username).Delete(&models.Peer{}).Error
	})
}

// ListPeers returns every peer row. Admin use only.
func (s *Service) ListPeers() ([]models.Peer, error) {
	var peers []models.Peer
	if err := s.db.Order("username ASC").Find(&peers).Error; err != nil {
		return nil, err
	}
	return peers, nil
}

// Live reports whether a peer's last heartbeat is within the TTL window.
func (s *Service) Live(p *models.Peer) bool {
	return s.now().Sub(p.LastHeartbeat) < s.ttl
}

// Stats summarizes the registry for the admin dashboard.
type Stats struct {
	TotalPeers int64 `json:"total_peers"`
	LivePeers  int64 `json:"live_peers"`
	TotalFiles int64 `json:"total_files"`
}

// CollectStats counts peers, live peers and advertised files.
func (s *Service) CollectStats() (*Stats, error) {
	var st Stats
	if err := s.db.Model(&models.Peer{}).Count(&st.TotalPeers).Error; err != nil {
		return nil, err
	}
	threshold := s.now().Add(-s.ttl)
	if err := s.db.Model(&models.Peer{}).Where("last_heartbeat >= ?", threshold).Count(&st.LivePeers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.FileEntry{}).Count(&st.TotalFiles).Error; err != nil {
		return nil, err
	}
	return &st, nil
}
