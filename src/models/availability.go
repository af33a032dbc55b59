package models

import "inkbook/src/types"

// Availability is one weekly open interval for an artist, in minutes
// from midnight. Weekday 0 is Sunday.
type Availability struct {
	ID          uint `gorm:"primarykey" json:"id"`
	ArtistID    uint `gorm:"index" json:"artist_id,omitempty"`
	Weekday     int  `json:"weekday"`
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`

	types.Timestamps
}
