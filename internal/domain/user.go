package domain

import "time"

// User is the identity record created at registration. PasswordHash never
// leaves the server; the JSON projection is what auth responses return.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	LoginName    string    `gorm:"size:64;uniqueIndex;not null" json:"loginName"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	DisplayName  string    `gorm:"size:128;not null" json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}
