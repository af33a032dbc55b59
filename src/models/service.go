package models

import "inkbook/src/types"

// ArtistService is a bookable offering: a consultation or a tattoo
// session with a fixed duration and deposit.
type ArtistService struct {
	ID              uint                  `gorm:"primarykey" json:"id"`
	ArtistID        uint                  `gorm:"index" json:"artist_id,omitempty"`
	Name            string                `json:"name,omitempty"`
	Kind            types.AppointmentType `json:"kind,omitempty"`
	DurationMinutes uint                  `json:"duration_minutes,omitempty"`
	PriceCents      int64                 `json:"price_cents"`
	DepositCents    int64                 `json:"deposit_cents"`
	Currency        string                `gorm:"default:'usd'" json:"currency,omitempty"`
	Active          bool                  `gorm:"default:true" json:"active"`
	StripePriceId   *string               `json:"-"`

	Artist *User `gorm:"foreignKey:artist_id" json:"artist,omitempty"`

	types.Timestamps
}
