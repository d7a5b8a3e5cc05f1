package domain

import "time"

// RefreshToken is a server-persisted, single-use credential. Token carries
// 512 bits of entropy and is the only lookup key exposed to clients.
// FamilyID links every record descended from the same login so a replayed
// token can take its whole rotation chain down with it.
//
// Rows are never deleted as part of normal operation; revoked rows are the
// audit trail that makes replay detection possible.
type RefreshToken struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Token      string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	FamilyID   string    `gorm:"size:36;index;not null" json:"family_id"`
	ExpiresAt  time.Time `gorm:"index;not null" json:"expires_at"`
	LastSeenAt time.Time `gorm:"not null" json:"last_seen_at"`
	Revoked    bool      `gorm:"index;not null;default:false" json:"revoked"`
	CreatedAt  time.Time `json:"created_at"`
}
