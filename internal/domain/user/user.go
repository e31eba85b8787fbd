package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCelebrant = "celebrant"
	RoleGuest     = "guest"
	RoleVendor    = "vendor"
)

// User mirrors the identity provider's subject. Rows are upserted from token claims.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email           *string   `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	FirstName       string    `gorm:"column:first_name" json:"firstName"`
	LastName        string    `gorm:"column:last_name" json:"lastName"`
	ProfileImageURL string    `gorm:"column:profile_image_url" json:"profileImageUrl,omitempty"`
	Role            string    `gorm:"column:role;not null" json:"role"`
	CreatedAt       time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleGuest
	}
	return nil
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleCelebrant, RoleGuest, RoleVendor:
		return true
	}
	return false
}
