package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RSVPPending   = "pending"
	RSVPConfirmed = "confirmed"
	RSVPDeclined  = "declined"
)

type Guest struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EventID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"eventId"`
	UserID              *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	Email               string     `gorm:"column:email;not null" json:"email"`
	FirstName           string     `gorm:"column:first_name" json:"firstName"`
	LastName            string     `gorm:"column:last_name" json:"lastName"`
	RSVPStatus          string     `gorm:"column:rsvp_status;not null" json:"rsvpStatus"`
	InvitationSent      bool       `gorm:"column:invitation_sent;not null" json:"invitationSent"`
	PlusOneAllowed      bool       `gorm:"column:plus_one_allowed;not null" json:"plusOneAllowed"`
	PlusOneRSVP         *string    `gorm:"column:plus_one_rsvp" json:"plusOneRsvp,omitempty"`
	DietaryRestrictions string     `gorm:"column:dietary_restrictions;type:text" json:"dietaryRestrictions,omitempty"`
	CreatedAt           time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"not null" json:"updatedAt"`
}

func (Guest) TableName() string { return "guests" }

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.RSVPStatus == "" {
		g.RSVPStatus = RSVPPending
	}
	return nil
}

func ValidRSVP(s string) bool {
	switch s {
	case RSVPPending, RSVPConfirmed, RSVPDeclined:
		return true
	}
	return false
}
