package models

import (
	"inkbook/src/types"

	"github.com/google/uuid"
)

// Transaction is one payable event tied to a booking deposit.
type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	BookingID         uint                    `gorm:"index" json:"booking_id,omitempty"`
	AmountCents       int64                   `json:"amount_cents"`
	Currency          string                  `json:"currency,omitempty"`
	Status            types.TransactionStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ReferenceID       string                  `gorm:"index" json:"reference_id,omitempty"`
	CheckoutSessionId *string                 `json:"-"`
	PaymentIntentId   *string                 `json:"-"`
	ChargeId          *string                 `json:"-"`
	RefundIds         types.JSONB             `gorm:"type:jsonb" json:"-"`
	Metadata          *types.Metadata         `gorm:"type:jsonb" json:"-"`

	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`

	types.Timestamps
}
