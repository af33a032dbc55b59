package models

import (
	"inkbook/src/types"
	"time"
)

type Message struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	SenderID    uint       `gorm:"index:idx_msg_pair" json:"sender_id,omitempty"`
	RecipientID uint       `gorm:"index:idx_msg_pair" json:"recipient_id,omitempty"`
	Body        string     `json:"body,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`

	Sender    *User `gorm:"foreignKey:sender_id" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:recipient_id" json:"recipient,omitempty"`

	types.Timestamps
}

// DeletedConversation is a per-user soft-delete marker for a thread.
// Messages stay; the thread is hidden for UserID only.
type DeletedConversation struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_deleted_pair" json:"user_id,omitempty"`
	ParticipantID uint      `gorm:"uniqueIndex:idx_deleted_pair" json:"participant_id,omitempty"`
	DeletedAt     time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}
