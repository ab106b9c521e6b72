package models

import "time"

// Peer is a registered network participant. The username is the identity key;
// ip/port point at the peer's transfer listener and are overwritten on every
// login and heartbeat (last writer wins).
type Peer struct {
	Username      string    `gorm:"primaryKey" json:"username"`
	Password      string    `gorm:"not null" json:"-"`
	IP            string    `gorm:"column:ip" json:"ip"`
	Port          int       `json:"port"`
	LastSeen      time.Time `json:"last_seen"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// FileEntry is one advertised file. peer_ip/peer_port are a snapshot of the
// owner's address at publish time and may lag behind the Peer row if the
// peer's port changed since.
type FileEntry struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Filename   string    `gorm:"not null;index" json:"filename"`
	Username   string    `gorm:"not null;index" json:"username"`
	PeerIP     string    `gorm:"column:peer_ip" json:"peer_ip"`
	PeerPort   int       `json:"peer_port"`
	SharedTime time.Time `json:"shared_time"`
}

// Admin is an operator account for the registry's admin endpoints. Unlike
// peer accounts, admin passwords are stored bcrypt-hashed.
type Admin struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:'admin'" json:"role"`
}
