package models

import "time"

// Role is a named role a user holds in a school, e.g. "teacher".
type Role struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
