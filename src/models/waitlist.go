package models

import "inkbook/src/types"

type WaitlistEntry struct {
	ID     uint    `gorm:"primarykey" json:"id"`
	Email  string  `gorm:"uniqueIndex" json:"email,omitempty"`
	Source *string `json:"source,omitempty"`

	types.Timestamps
}
