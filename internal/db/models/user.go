package models

import "time"

// User is the local projection of an identity.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Username is the OID of the user. At most one user exists per OID.
	Username string `gorm:"unique;size:255;not null"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:255"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:255"`
	// ExternalSource is the binding name of the source the user was provisioned from.
	// Empty for purely local users.
	ExternalSource string `gorm:"size:2000;not null;default:''"`
	// ExternalID is the source local identifier of the user.
	ExternalID string `gorm:"size:2000;not null;default:''"`
	// Attributes are the attribute rows of the user, active and disabled.
	Attributes []UserAttribute `gorm:"foreignKey:UserID"`
	// Attendances are the role assignments of a purely local user.
	Attendances []Attendance `gorm:"foreignKey:UserID"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// IsExternal reports whether the user data lives in an external source.
func (u *User) IsExternal() bool {
	return u.ExternalSource != "" && u.ExternalID != ""
}
