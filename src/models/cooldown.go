package models

import (
	"inkbook/src/types"
	"time"
)

// BookingCooldown blocks a client from re-booking the same artist until
// ExpiresAt. Rows are kept; the check is on expiry, not deletion.
type BookingCooldown struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"index:idx_cooldown_pair" json:"user_id,omitempty"`
	ArtistID    uint      `gorm:"index:idx_cooldown_pair" json:"artist_id,omitempty"`
	BookingID   *uint     `json:"booking_id,omitempty"`
	CancelledAt time.Time `json:"cancelled_at,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`

	types.Timestamps
}

func (c *BookingCooldown) Active(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}
