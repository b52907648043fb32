package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationAnswerOnQuestion NotificationType = "ANSWER_ON_QUESTION"
	NotificationCommentOnAnswer  NotificationType = "COMMENT_ON_ANSWER"
	NotificationMention          NotificationType = "MENTION"
)

// Notification is created only as a side effect of other writes.
type Notification struct {
	ID            string           `gorm:"type:varchar(128);primaryKey" json:"id"`
	Type          NotificationType `gorm:"type:varchar(30);not null;check:chk_notifications_type,type IN ('ANSWER_ON_QUESTION','COMMENT_ON_ANSWER','MENTION')" json:"type"`
	RecipientID   string           `gorm:"type:varchar(128);not null;index" json:"recipient_id"`
	Recipient     *User            `gorm:"foreignKey:RecipientID" json:"-"`
	TriggeredByID *string          `gorm:"type:varchar(128)" json:"triggered_by_id"`
	TriggeredBy   *User            `gorm:"foreignKey:TriggeredByID;constraint:OnDelete:SET NULL" json:"-"`
	Content       string           `gorm:"type:text;not null" json:"content"`
	IsRead        bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationView is a notification joined with the triggering user.
type NotificationView struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Content     string           `json:"content"`
	IsRead      bool             `json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
	TriggeredBy *UserRef         `json:"triggeredBy"`
}
