package models

import "time"

// RevokedToken is the DB fallback for the access-token jti blacklist when
// Redis is not configured. Rows outlive the token's expiry and can be pruned
// by a maintenance job.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;type:char(64)" json:"id"`
	RevokedAt time.Time `json:"revoked_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
