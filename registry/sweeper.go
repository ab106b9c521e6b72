package registry

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mridul249/p2p-electron/models"
)

// DefaultSweepInterval is how often the sweeper scans for expired peers.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically deletes peers whose last heartbeat is older than the
// TTL, cascading to their file entries. The query-time liveness filter stays
// authoritative for reads; the sweeper only reclaims storage.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper over the service with the default interval.
func NewSweeper(svc *Service) *Sweeper {
	return &Sweeper{
		svc:      svc,
		interval: DefaultSweepInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine until Stop is called.
func (sw *Sweeper) Start() {
	go func() {
		defer close(sw.done)
		ticker := time.NewTicker(sw.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := sw.svc.Sweep()
				if err != nil {
					log.Printf("[ERROR] Sweep failed: %v", err)
				} else if removed > 0 {
					log.Printf("[INFO] Sweep removed %d inactive peer(s)", removed)
				}
			case <-sw.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit.
func (sw *Sweeper) Stop() {
	close(sw.stop)
	<-sw.done
}

// Sweep removes every peer whose last heartbeat predates now-TTL, deleting
// its file entries and peer row in one transaction per peer. The staleness
// check is re-evaluated inside the transaction so a heartbeat that lands
// between the scan and the delete keeps the peer alive. Idempotent.
func (s *Service) Sweep() (int, error) {
	threshold := s.now().Add(-s.ttl)

	var stale []models.Peer
	if err := s.db.Where("last_heartbeat < ?", threshold).Find(&stale).Error; err != nil {
		return 0, err
	}

	removed := 0
	for _, peer := range stale {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("username = ? AND last_heartbeat < ?", peer.Username, threshold).
				Delete(&models.Peer{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Heartbeat won the race; keep the files too.
				return nil
			}
			if err := tx.Where("username = ?", peer.Username).Delete(&models.FileEntry{}).Error; err != nil {
				return err
			}
			removed++
			return nil
		})
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}
