package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimelineItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;index" json:"eventId"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Description  string    `gorm:"column:description;type:text" json:"description,omitempty"`
	StartTime    time.Time `gorm:"column:start_time;not null" json:"startTime"`
	Duration     *int      `gorm:"column:duration" json:"duration,omitempty"` // minutes
	Category     string    `gorm:"column:category" json:"category,omitempty"`
	IsCompleted  bool      `gorm:"column:is_completed;not null" json:"isCompleted"`
	DisplayOrder int       `gorm:"column:display_order;not null" json:"displayOrder"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

func (TimelineItem) TableName() string { return "timeline_items" }

func (t *TimelineItem) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
