package messages

import "time"

// Message is a direct message between a client and their assigned advisor.
type Message struct {
	ID              int64
	SenderUserID    int64
	RecipientUserID int64
	Body            string
	ReadAt          *time.Time
	CreatedAt       time.Time
}
