package registry

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mridul249/p2p-electron/models"
)

// Publish replaces the peer's advertised file set with filenames, stamping
// each entry with the given transfer address and the current time. Replace,
// never merge: the caller always sends its complete shared-folder listing, so
// anything previously advertised but no longer listed disappears. An empty
// (non-nil) list is a valid clear; a nil list means the field was absent.
func (s *Service) Publish(username string, filenames []string, peerIP string, peerPort int) error {
	if username == "" || filenames == nil || peerIP == "" || peerPort == 0 {
		return ErrValidation
	}
	now := s.now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).Delete(&models.FileEntry{}).Error; err != nil {
			return err
		}
		if len(filenames) == 0 {
			return nil
		}
		entries := make([]models.FileEntry, 0, len(filenames))
		for _, name := range filenames {
			entries = append(entries, models.FileEntry{
				Filename:   name,
				Username:   username,
				PeerIP:     peerIP,
				PeerPort:   peerPort,
				SharedTime: now,
			})
		}
		return tx.Create(&entries).Error
	})
}

// FileResult is one catalog row as served by /files and /search_files.
type FileResult struct {
	Filename   string `json:"filename"`
	Username   string `json:"username"`
	PeerIP     string `json:"peer_ip"`
	PeerPort   int    `json:"peer_port"`
	SharedTime string `json:"shared_time"`
}

// QueryFiles returns the advertised files of live peers, optionally filtered
// by case-insensitive substring match on filename and/or username. The
// liveness filter applies regardless of whether the sweeper has run yet.
// Results are ordered by shared_time ascending.
func (s *Service) QueryFiles(filename, username string) ([]FileResult, error) {
	threshold := s.now().Add(-s.ttl)

	q := s.db.Model(&models.FileEntry{}).
		Select("file_entries.filename, file_entries.username, file_entries.peer_ip, file_entries.peer_port, file_entries.shared_time").
		Joins("JOIN peers ON peers.username = file_entries.username").
		Where("peers.last_heartbeat >= ?", threshold)

	if filename != "" {
		q = q.Where("LOWER(file_entries.filename) LIKE ?", "%"+strings.ToLower(filename)+"%")
	}
	if username != "" {
		q = q.Where("LOWER(file_entries.username) LIKE ?", "%"+strings.ToLower(username)+"%")
	}

	var rows []models.FileEntry
	if err := q.Order("file_entries.shared_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, FileResult{
			Filename:   r.Filename,
			Username:   r.Username,
			PeerIP:     r.PeerIP,
			PeerPort:   r.PeerPort,
			SharedTime: r.SharedTime.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return results, nil
}

// FilesFor returns the peer's currently advertised file set. Used by tests
// and the admin surface.
func (s *Service) FilesFor(username string) ([]models.FileEntry, error) {
	var entries []models.FileEntry
	err := s.db.Where("username = ?", username).Order("id ASC").Find(&entries).Error
	return entries, err
}
