package models

import "inkbook/src/types"

// IntakeForm holds the health questionnaire and consents required
// before a tattoo session. One per booking.
type IntakeForm struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	BookingID        uint    `gorm:"uniqueIndex" json:"booking_id,omitempty"`
	HealthConditions *string `json:"health_conditions,omitempty"`
	Medications      *string `json:"medications,omitempty"`
	Allergies        *string `json:"allergies,omitempty"`

	AgeVerification       bool `gorm:"not null" json:"age_verification"`
	HealthDisclosure      bool `gorm:"not null" json:"health_disclosure"`
	AftercareInstructions bool `gorm:"not null" json:"aftercare_instructions"`
	DepositPolicy         bool `gorm:"not null" json:"deposit_policy"`
	CancellationPolicy    bool `gorm:"not null" json:"cancellation_policy"`

	types.Timestamps
}

// Consented reports whether every required consent box is checked.
func (f *IntakeForm) Consented() bool {
	return f.AgeVerification &&
		f.HealthDisclosure &&
		f.AftercareInstructions &&
		f.DepositPolicy &&
		f.CancellationPolicy
}
