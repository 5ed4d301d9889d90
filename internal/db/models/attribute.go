package models

import "time"

// Attribute is the name of a user attribute, e.g. an external source binding name.
type Attribute struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Attribute model.
func (Attribute) TableName() string {
	return "attributes"
}

// UserAttribute is one attribute value of a user.
type UserAttribute struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      uint64    `gorm:"not null;index"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AttributeID uint      `gorm:"not null;index"`
	Attribute   Attribute `gorm:"foreignKey:AttributeID;constraint:OnDelete:RESTRICT"`
	Value       string    `gorm:"size:2048"`
	SourceID    uint      `gorm:"not null"`
	Source      Source    `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT"`
	// DisabledAt is set instead of deleting the row.
	DisabledAt *time.Time `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the database table name for the UserAttribute model.
func (UserAttribute) TableName() string {
	return "user_attributes"
}

// Active reports whether the attribute has not been disabled.
func (ua *UserAttribute) Active() bool {
	return ua.DisabledAt == nil
}
