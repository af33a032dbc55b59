package models

import (
	"inkbook/src/types"
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID              uint                  `gorm:"primarykey" json:"id"`
	ArtistID        uint                  `gorm:"index" json:"artist_id,omitempty"`
	ClientID        uint                  `gorm:"index" json:"client_id,omitempty"`
	ServiceID       *uint                 `json:"service_id,omitempty"`
	StartAt         time.Time             `gorm:"index" json:"start_at,omitempty"`
	EndAt           time.Time             `json:"end_at,omitempty"`
	Note            *string               `json:"note,omitempty"`
	AppointmentType types.AppointmentType `json:"appointment_type,omitempty"`
	Status          types.BookingStatus   `gorm:"default:'pending'" json:"status,omitempty"`
	TransactionID   *uuid.UUID            `gorm:"type:uuid" json:"transaction_id,omitempty"`
	Metadata        types.JSONB           `gorm:"type:jsonb" json:"-"`

	Artist      *User          `gorm:"foreignKey:artist_id" json:"artist,omitempty"`
	Client      *User          `gorm:"foreignKey:client_id" json:"client,omitempty"`
	Service     *ArtistService `gorm:"foreignKey:service_id" json:"service,omitempty"`
	IntakeForm  *IntakeForm    `gorm:"foreignKey:booking_id" json:"intake_form,omitempty"`
	Transaction *Transaction   `gorm:"foreignKey:transaction_id" json:"transaction,omitempty"`

	types.Timestamps
}

// Live reports whether the booking still occupies its slot.
func (b *Booking) Live() bool {
	return b.Status == types.BOOKING_PENDING || b.Status == types.BOOKING_BOOKED
}
