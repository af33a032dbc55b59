package models

import (
	"inkbook/src/types"
	"time"
)

type User struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	Name             string          `json:"name,omitempty"`
	Email            string          `gorm:"uniqueIndex" json:"email,omitempty"`
	Role             types.UserRole  `gorm:"default:'client'" json:"role,omitempty"`
	UID              string          `gorm:"uniqueIndex" json:"uid,omitempty"`
	UsernameSlug     string          `gorm:"uniqueIndex" json:"username_slug,omitempty"`
	Bio              *string         `json:"bio,omitempty"`
	EmailVerified    bool            `json:"email_verified,omitempty"`
	VerifiedAt       time.Time       `json:"verified_at,omitempty"`
	LastActive       *time.Time      `json:"last_active,omitempty"`
	StripeAccountId  *string         `json:"-"`
	StripeCustomerId *string         `json:"-"`
	Metadata         *types.Metadata `gorm:"type:jsonb"`

	Bookings     []Booking       `gorm:"foreignKey:client_id" json:"bookings,omitempty"`
	Services     []ArtistService `gorm:"foreignKey:artist_id" json:"services,omitempty"`
	Availability []Availability  `gorm:"foreignKey:artist_id" json:"availability,omitempty"`

	types.Timestamps
}
