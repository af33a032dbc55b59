package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type Metadata map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *Metadata) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type UserRole string

const (
	ROLE_CLIENT UserRole = "client"
	ROLE_ARTIST UserRole = "artist"
)

type AppointmentType string

const (
	APPOINTMENT_CONSULTATION   AppointmentType = "consultation"
	APPOINTMENT_TATTOO_SESSION AppointmentType = "tattoo_session"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_BOOKED    BookingStatus = "booked"
	BOOKING_CANCELED  BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_EXPIRED   BookingStatus = "expired"
)

type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "pending"
	TRANSACTION_PAID     TransactionStatus = "paid"
	TRANSACTION_REFUNDED TransactionStatus = "refunded"
	TRANSACTION_FAILED   TransactionStatus = "failed"
	TRANSACTION_CANCELED TransactionStatus = "canceled"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	ArtistID        uint    `json:"artist_id" binding:"required"`
	ServiceID       *uint   `json:"service_id,omitempty"`
	StartAt         string  `json:"start_at" binding:"required,bookabledate"`
	EndAt           string  `json:"end_at" binding:"required,bookabledate,gtdate=StartAt"`
	Note            *string `json:"note,omitempty"`
	AppointmentType string  `json:"appointment_type" binding:"required,oneof=consultation tattoo_session"`
}

type SubmitIntakeFormRequestBody struct {
	HealthConditions      *string `json:"health_conditions,omitempty"`
	Medications           *string `json:"medications,omitempty"`
	Allergies             *string `json:"allergies,omitempty"`
	AgeVerification       bool    `json:"age_verification" binding:"required"`
	HealthDisclosure      bool    `json:"health_disclosure" binding:"required"`
	AftercareInstructions bool    `json:"aftercare_instructions" binding:"required"`
	DepositPolicy         bool    `json:"deposit_policy" binding:"required"`
	CancellationPolicy    bool    `json:"cancellation_policy" binding:"required"`
}

type CreateServiceRequestBody struct {
	Name            string `json:"name" binding:"required"`
	Kind            string `json:"kind" binding:"required,oneof=consultation tattoo_session"`
	DurationMinutes uint   `json:"duration_minutes" binding:"required,min=15,max=600"`
	PriceCents      int64  `json:"price_cents" binding:"min=0"`
	DepositCents    int64  `json:"deposit_cents" binding:"min=0"`
	Currency        string `json:"currency" binding:"required,len=3"`
}

type AvailabilityInterval struct {
	Weekday     int `json:"weekday" binding:"min=0,max=6"`
	StartMinute int `json:"start_minute" binding:"min=0,max=1439"`
	EndMinute   int `json:"end_minute" binding:"required,min=1,max=1440,gtfield=StartMinute"`
}

type ReplaceAvailabilityRequestBody struct {
	Intervals []AvailabilityInterval `json:"intervals" binding:"required,dive"`
}

type SyncProfileRequestBody struct {
	Name     string  `json:"name" binding:"required"`
	Username string  `json:"username" binding:"required"`
	Bio      *string `json:"bio,omitempty"`
}

type CheckoutRequestBody struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Label     string `json:"label,omitempty"`
}

type RefundRequestBody struct {
	BookingID uint    `json:"booking_id" binding:"required"`
	Reason    *string `json:"reason,omitempty"`
}

type SendMessageRequestBody struct {
	Body string `json:"body" binding:"required,max=4000"`
}

type JoinWaitlistRequestBody struct {
	Email  string  `json:"email" binding:"required,email"`
	Source *string `json:"source,omitempty"`
}

type SlotsQuery struct {
	Date            string `form:"date" binding:"required"`
	DurationMinutes int    `form:"duration_minutes" binding:"required,min=15,max=600"`
}
