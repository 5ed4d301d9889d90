package models

import "time"

// LocalSourceName tags data written by this service itself.
const LocalSourceName = "local"

// Source marks the owner of a written row.
type Source struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Source model.
func (Source) TableName() string {
	return "sources"
}
