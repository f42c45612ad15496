package model

import "time"

// PasteEvent records one lifecycle transition of a paste. Events carry
// identifiers and timing only, never paste content.
type PasteEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	PasteID   string    `json:"paste_id" gorm:"size:64;index"`
	Kind      string    `json:"kind" gorm:"size:16;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"column:occurred_at;index"`
}

// TableName sets the table used by GORM migrations.
func (PasteEvent) TableName() string { return "paste_events" }

// Event kinds emitted by the paste service.
const (
	EventCreated   = "created"
	EventViewed    = "viewed"
	EventExpired   = "expired"
	EventExhausted = "exhausted"
)

const (
	EventStreamName     = "PASTE_EVENTS"
	EventStreamSubject  = "pastes.events"
	EventConsumerName   = "paste-event-logger"
	EventStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
